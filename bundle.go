package bundle

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/velesmod/bundle/internal/binio"
)

// Archive is a fully loaded bundle: header, directory, and every entry's
// payload bytes.
//
// All payloads are held in memory between decode and write because final
// offsets depend on the post-override size of every entry. Memory use is
// therefore proportional to the archive size.
//
// An Archive is not safe for concurrent use; the pipeline is strictly
// sequential by design.
type Archive struct {
	header Header

	// entries is the directory order as read, authoritative for writing
	// records. sorted is the same set ordered by ascending payload
	// offset, governing payload layout. Both alias the same Entry
	// values.
	entries []*Entry
	sorted  []*Entry

	logger    *slog.Logger
	footerPad bool
	progress  ProgressFunc
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Decode reads a complete bundle from r: header, directory records, and
// all payload bytes.
//
// Short reads are tolerated (missing bytes decode as zero, with a logged
// diagnostic); only genuine I/O errors fail the decode.
func Decode(r io.Reader, opts ...Option) (*Archive, error) {
	a := &Archive{}
	for _, opt := range opts {
		opt(a)
	}

	br := binio.NewReader(r, a.logger)
	a.decodeHeader(br)
	a.decodeDirectory(br)

	// Payload layout order can differ from directory order. Offsets are
	// stable here (the resolver only runs during the write passes), so
	// sorting on the plain field is safe.
	a.sorted = make([]*Entry, len(a.entries))
	copy(a.sorted, a.entries)
	sort.SliceStable(a.sorted, func(i, j int) bool {
		return a.sorted[i].offset < a.sorted[j].offset
	})

	a.loadPayloads(br)

	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("bundle: decode: %w", err)
	}
	return a, nil
}

// Open decodes the bundle file at path.
func Open(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: open archive: %w", err)
	}
	defer f.Close()
	return Decode(f, opts...)
}

// Header returns the archive header as read, with sizes and offsets
// updated by the most recent write.
func (a *Archive) Header() Header {
	return a.header
}

// Len returns the number of entries in the archive.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Entries returns the archive's entries in directory order. The slice is
// shared with the archive and must not be modified.
func (a *Archive) Entries() []*Entry {
	return a.entries
}

// Entry returns the first entry with the given name.
func (a *Archive) Entry(name string) (*Entry, bool) {
	for _, e := range a.entries {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}
