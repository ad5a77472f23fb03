package bundle

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		offset uint32
		minPos uint32
		want   uint32
	}{
		{name: "already satisfied", offset: 8192, minPos: 100, want: 8192},
		{name: "exactly at minimum", offset: 8192, minPos: 8192, want: 8192},
		{name: "pushed past unaligned minimum", offset: 4096, minPos: 4197, want: 8192},
		{name: "aligned minimum moves to next boundary", offset: 0, minPos: 4096, want: 8192},
		{name: "zero minimum keeps zero offset", offset: 0, minPos: 0, want: 0},
		{name: "just past boundary", offset: 4096, minPos: 8193, want: 12288},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := &Archive{}
			e := &Entry{offset: tt.offset}
			assert.Equal(t, tt.want, a.resolve(e, tt.minPos))
			assert.Equal(t, tt.want, e.Offset(), "offset stored on the entry")
		})
	}
}

func TestResolveOffsetIdempotent(t *testing.T) {
	t.Parallel()

	a := &Archive{}
	e := &Entry{offset: 4096}

	first := a.resolve(e, 9000)
	assert.Equal(t, uint32(12288), first)

	// Same minimum again observes the fixed offset.
	assert.Equal(t, first, a.resolve(e, 9000))

	// A smaller minimum never moves a resolved offset backward.
	assert.Equal(t, first, a.resolve(e, 100))

	// A larger minimum the offset already satisfies keeps it unchanged.
	assert.Equal(t, first, a.resolve(e, 12288))
}

func TestExpand(t *testing.T) {
	t.Parallel()

	t.Run("stored entry returns payload", func(t *testing.T) {
		t.Parallel()
		e := &Entry{payload: []byte("plain"), comp: CompressionNone}
		got, err := e.Expand()
		require.NoError(t, err)
		assert.Equal(t, []byte("plain"), got)
	})

	t.Run("zlib passthrough inflates", func(t *testing.T) {
		t.Parallel()
		original := bytes.Repeat([]byte("quest dialogue line "), 512)
		var compressed bytes.Buffer
		zw := zlib.NewWriter(&compressed)
		_, err := zw.Write(original)
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		e := &Entry{
			name:        "scripts/quest.ws",
			payload:     compressed.Bytes(),
			comp:        CompressionNone,
			declared:    CompressionZlib,
			passthrough: true,
		}
		got, err := e.Expand()
		require.NoError(t, err)
		assert.Equal(t, original, got)
	})

	t.Run("undecodable passthrough fails without mutating", func(t *testing.T) {
		t.Parallel()
		raw := []byte{0xDE, 0xAD, 0xBE, 0xEF}
		e := &Entry{
			name:        "garbage.bin",
			payload:     raw,
			comp:        CompressionNone,
			declared:    CompressionZlib,
			passthrough: true,
		}
		_, err := e.Expand()
		require.Error(t, err)
		assert.Equal(t, raw, e.Payload(), "payload bytes untouched by a failed decode")
	})

	t.Run("unknown scheme passthrough returns raw bytes", func(t *testing.T) {
		t.Parallel()
		raw := []byte{1, 2, 3}
		e := &Entry{payload: raw, comp: CompressionNone, declared: Compression(9), passthrough: true}
		got, err := e.Expand()
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	})

	t.Run("unloaded entry", func(t *testing.T) {
		t.Parallel()
		e := &Entry{}
		_, err := e.Expand()
		assert.ErrorIs(t, err, ErrNoPayload)
	})
}

func TestCompressionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", CompressionNone.String())
	assert.Equal(t, "zlib", CompressionZlib.String())
	assert.Equal(t, "unknown(9)", Compression(9).String())
}
