package bundle

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// maxOverrideSize caps override content at what the format's signed
// 32-bit size fields can express.
const maxOverrideSize = 1<<31 - 1

// Source provides replacement payload content keyed by entry name.
//
// Open returns fs.ErrNotExist when no override is present for the name.
// Any other error is treated as a failed read: logged, non-fatal, and the
// entry's original payload is kept.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

// ApplyOverrides replaces entry payloads with content from src, visiting
// entries in directory order. It returns the number of entries replaced.
//
// A replaced entry's uncompressed and stored sizes both become the new
// content length and its compression identifier drops to scheme 0; the
// opaque identifier field is deliberately left as read. Failures reading
// an individual override are logged and skipped.
func (a *Archive) ApplyOverrides(src Source) int {
	replaced := 0
	for i, e := range a.entries {
		rc, err := src.Open(e.name)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				a.log().Error("failed to open override, keeping original payload",
					"name", e.name, "error", err)
			}
			continue
		}

		data, err := readOverride(rc)
		rc.Close()
		if err != nil {
			a.log().Error("failed to read override, keeping original payload",
				"name", e.name, "error", err)
			continue
		}

		a.log().Info("overriding entry payload",
			"name", e.name, "oldSize", e.compressedSize, "newSize", len(data))
		e.replacePayload(data)
		replaced++
		a.emitProgress(StageOverriding, e.name, i+1, len(a.entries))
	}
	return replaced
}

// readOverride reads rc fully, rejecting content the format cannot size.
func readOverride(rc io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rc, maxOverrideSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxOverrideSize {
		return nil, ErrOverrideTooLarge
	}
	return data, nil
}

// DirSource looks up override content in a directory tree whose layout
// mirrors archive-relative entry names.
//
// Lookups are confined to the root directory: an entry name that would
// escape it fails the lookup rather than reading outside the tree.
type DirSource struct {
	root *os.Root
}

// OpenDirSource opens dir as an override source.
func OpenDirSource(dir string) (*DirSource, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("bundle: open override root: %w", err)
	}
	return &DirSource{root: root}, nil
}

// Open implements Source.
func (s *DirSource) Open(name string) (io.ReadCloser, error) {
	f, err := s.root.Open(filepath.FromSlash(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fs.ErrNotExist
		}
		return nil, err
	}
	return f, nil
}

// Close releases the underlying directory handle.
func (s *DirSource) Close() error {
	return s.root.Close()
}
