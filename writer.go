package bundle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/velesmod/bundle/internal/binio"
)

// layout runs the size pass: it recomputes the directory size and the
// final offset of every payload, returning the total archive size.
//
// The resolver is idempotent, so running layout again (or running the
// emission pass after it) observes the same offsets.
func (a *Archive) layout() uint32 {
	dirSize := uint32(len(a.entries)) * RecordSize //nolint:gosec // entry counts are far below 32-bit range
	if dirSize != a.header.DataOffset {
		// Entries are never added or removed, so this should be
		// impossible unless the source directory was malformed.
		a.log().Warn("directory size changed",
			"parsed", a.header.DataOffset, "computed", dirSize)
	}
	a.header.DataOffset = dirSize

	pos := HeaderSize + dirSize
	for _, e := range a.sorted {
		off := a.resolve(e, pos)
		pos = off + uint32(len(e.payload)) //nolint:gosec // payload length fits the format's 32-bit sizes
	}

	if a.footerPad {
		if pad := footerAlign - pos%footerAlign; pad < footerAlign {
			pos += pad
		}
	}

	a.header.TotalSize = pos
	return pos
}

// WriteTo emits the archive: header, directory records in directory
// order, then payload bytes in ascending-offset order with zero padding
// up to each entry's resolved offset. It implements io.WriterTo.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	a.layout()

	bw := binio.NewWriter(w, a.logger)
	a.encodeHeader(bw)

	for i, e := range a.entries {
		encodeRecord(bw, e)
		a.emitProgress(StageWriting, e.name, i+1, len(a.entries))
	}

	pos := HeaderSize + a.header.DataOffset
	for _, e := range a.sorted {
		off := a.resolve(e, pos)
		bw.Zeros(uint64(off - pos))
		bw.Bytes(e.payload)
		pos = off + uint32(len(e.payload)) //nolint:gosec // payload length fits the format's 32-bit sizes
	}

	if a.footerPad {
		if pad := footerAlign - pos%footerAlign; pad < footerAlign {
			bw.Bytes([]byte(footerPadText[:pad]))
		}
	}

	n := int64(bw.Count()) //nolint:gosec // archive sizes fit the format's 32-bit fields
	if err := bw.Err(); err != nil {
		return n, fmt.Errorf("bundle: write: %w", err)
	}
	return n, nil
}

// WriteFile writes the archive to path atomically: the bytes go to a
// temp file in the destination directory which is renamed into place
// only after a fully successful write. A failed write leaves no partial
// archive behind.
func (a *Archive) WriteFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".bundle-")
	if err != nil {
		return fmt.Errorf("bundle: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := a.WriteTo(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("bundle: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("bundle: rename to destination: %w", err)
	}

	success = true
	return nil
}
