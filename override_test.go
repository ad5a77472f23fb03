package bundle

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapSource serves override content from a map, for tests.
type mapSource map[string][]byte

func (m mapSource) Open(name string) (io.ReadCloser, error) {
	data, ok := m[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// failSource opens successfully but fails partway through the read.
type failSource struct{}

func (failSource) Open(string) (io.ReadCloser, error) {
	return io.NopCloser(&failReader{}), nil
}

type failReader struct{}

func (*failReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	data := buildBundle(t, []testEntry{
		{name: "gameplay/items.xml", idFill: 0x11, payload: bytes.Repeat([]byte{1}, 100)},
		{name: "sounds/door.wem", idFill: 0x22, payload: bytes.Repeat([]byte{2}, 5000)},
	})
	a := mustDecode(t, data)

	replacement := bytes.Repeat([]byte{9}, 250)
	n := a.ApplyOverrides(mapSource{"gameplay/items.xml": replacement})
	assert.Equal(t, 1, n)

	e, ok := a.Entry("gameplay/items.xml")
	require.True(t, ok)
	assert.Equal(t, replacement, e.Payload())
	assert.Equal(t, uint32(250), e.UncompressedSize())
	assert.Equal(t, uint32(250), e.CompressedSize())
	assert.Equal(t, CompressionNone, e.Compression())
	assert.False(t, e.Passthrough())
	id := e.ID()
	assert.Equal(t, bytes.Repeat([]byte{0x11}, IDLen), id[:], "identifier never recomputed")

	other, ok := a.Entry("sounds/door.wem")
	require.True(t, ok)
	assert.Equal(t, bytes.Repeat([]byte{2}, 5000), other.Payload(), "unmatched entry untouched")
}

func TestApplyOverridesClearsPassthrough(t *testing.T) {
	t.Parallel()

	data := buildBundle(t, []testEntry{
		{name: "packed.bin", payload: bytes.Repeat([]byte{3}, 64), comp: 1, uncompressed: 500},
	})
	a := mustDecode(t, data)
	require.True(t, a.Entries()[0].Passthrough())

	n := a.ApplyOverrides(mapSource{"packed.bin": []byte("now genuinely uncompressed")})
	require.Equal(t, 1, n)

	e := a.Entries()[0]
	assert.False(t, e.Passthrough(), "override clears the declared scheme")
	assert.Equal(t, CompressionNone, e.DeclaredCompression())
}

func TestApplyOverridesReadFailure(t *testing.T) {
	t.Parallel()

	original := bytes.Repeat([]byte{4}, 80)
	data := buildBundle(t, []testEntry{
		{name: "a.xml", payload: original},
	})
	a := mustDecode(t, data)

	n := a.ApplyOverrides(failSource{})
	assert.Zero(t, n, "failed override must not count as replaced")
	assert.Equal(t, original, a.Entries()[0].Payload(), "original payload retained")
	assert.Equal(t, uint32(80), a.Entries()[0].CompressedSize())
}

func TestDirSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "gameplay"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gameplay", "items.xml"), []byte("modded"), 0o644))

	src, err := OpenDirSource(dir)
	require.NoError(t, err)
	defer src.Close()

	t.Run("existing override", func(t *testing.T) {
		rc, err := src.Open("gameplay/items.xml")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("modded"), data)
	})

	t.Run("missing override", func(t *testing.T) {
		_, err := src.Open("gameplay/other.xml")
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("escaping name rejected", func(t *testing.T) {
		_, err := src.Open("../outside.xml")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, fs.ErrNotExist, "escape is a failure, not a silent miss")
	})
}

func TestDirSourceWithArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte("override content"), 0o644))

	data := buildBundle(t, []testEntry{
		{name: "a.xml", payload: bytes.Repeat([]byte{1}, 10)},
		{name: "b.xml", payload: bytes.Repeat([]byte{2}, 10)},
	})
	a := mustDecode(t, data)

	src, err := OpenDirSource(dir)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 1, a.ApplyOverrides(src))
	e, _ := a.Entry("a.xml")
	assert.Equal(t, []byte("override content"), e.Payload())
}
