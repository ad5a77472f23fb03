package bundle

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Compression identifies the declared compression scheme of a payload.
//
// Only CompressionNone payloads are ever produced by this codec. Scheme 1
// cannot be reliably decoded and any other value is unknown; such entries
// are carried through as raw bytes with the original identifier preserved
// in the written record (see Entry.Passthrough).
type Compression uint32

const (
	CompressionNone Compression = 0
	CompressionZlib Compression = 1
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(c))
	}
}

// Entry is one file packaged inside the archive.
//
// Entries are created during directory parsing and live for the whole
// run; they are never added or removed. Payload bytes are attached by the
// load pass and may be replaced at most once by an override.
type Entry struct {
	name             string
	id               [IDLen]byte
	uncompressedSize uint32
	compressedSize   uint32
	offset           uint32
	modTimeRaw       uint64
	unknown          uint32

	// comp is the live compression identifier governing how the payload
	// bytes are treated. After loading it is always CompressionNone.
	comp Compression

	// declared is the original identifier for passthrough entries. It is
	// what gets written to the record so the archive round-trips
	// honestly even though the payload was never decoded.
	declared    Compression
	passthrough bool

	payload []byte
}

// Name returns the entry's archive-relative name.
func (e *Entry) Name() string {
	return e.name
}

// ID returns a copy of the opaque 16-byte identifier.
//
// The field is probably a content checksum, but the algorithm is unknown
// and the consuming application does not validate it, so it is never
// recomputed — not even when the payload is replaced.
func (e *Entry) ID() [IDLen]byte {
	return e.id
}

// UncompressedSize returns the declared uncompressed payload size.
func (e *Entry) UncompressedSize() uint32 {
	return e.uncompressedSize
}

// CompressedSize returns the declared stored payload size.
func (e *Entry) CompressedSize() uint32 {
	return e.compressedSize
}

// Offset returns the entry's current absolute payload offset.
func (e *Entry) Offset() uint32 {
	return e.offset
}

// ModTimeRaw returns the raw 64-bit modify-time field. Its epoch and
// encoding are unknown; it is preserved verbatim.
func (e *Entry) ModTimeRaw() uint64 {
	return e.modTimeRaw
}

// Unknown returns the record's unknown 32-bit field, preserved verbatim.
func (e *Entry) Unknown() uint32 {
	return e.unknown
}

// Compression returns the live compression identifier.
func (e *Entry) Compression() Compression {
	return e.comp
}

// Passthrough reports whether the payload is an undecoded carry-through
// of a compression scheme this codec does not handle.
func (e *Entry) Passthrough() bool {
	return e.passthrough
}

// DeclaredCompression returns the identifier written to the output
// record: the original scheme for passthrough entries, otherwise the
// live identifier.
func (e *Entry) DeclaredCompression() Compression {
	if e.passthrough {
		return e.declared
	}
	return e.comp
}

// Payload returns the entry's payload bytes as stored. The slice is the
// entry's backing store and must not be modified.
func (e *Entry) Payload() []byte {
	return e.payload
}

// Aligned reports whether the current offset satisfies the format's
// alignment invariant.
func (e *Entry) Aligned() bool {
	return e.offset%AlignmentTarget == 0
}

// Expand returns the entry's content for extraction or inspection,
// attempting zlib inflation for passthrough entries that declared
// scheme 1. The attempt is best-effort: bundles in the wild carry
// scheme-1 payloads that no standard inflater accepts. Expand never
// affects what the writer emits.
func (e *Entry) Expand() ([]byte, error) {
	if e.payload == nil {
		return nil, ErrNoPayload
	}
	if !e.passthrough || e.declared != CompressionZlib {
		return e.payload, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(e.payload))
	if err != nil {
		return nil, fmt.Errorf("bundle: open zlib stream for %s: %w", e.name, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("bundle: inflate %s: %w", e.name, err)
	}
	return out, nil
}

// replacePayload installs override content, updating the dependent size
// fields. The data is genuinely uncompressed, so any pending passthrough
// state is cleared. The identifier field is left untouched.
func (e *Entry) replacePayload(data []byte) {
	e.payload = data
	e.uncompressedSize = uint32(len(data)) //nolint:gosec // override length is capped below 2 GiB
	e.compressedSize = uint32(len(data))   //nolint:gosec // override length is capped below 2 GiB
	e.comp = CompressionNone
	e.declared = CompressionNone
	e.passthrough = false
}

// resolve returns the entry's payload offset, moving it forward to the
// next aligned boundary when it no longer satisfies minPos.
//
// Resolution is idempotent: an offset that already satisfies minPos is
// returned unchanged, so the emission pass always observes the value
// fixed by the size pass. When the offset does move, it lands on the
// smallest multiple of AlignmentTarget strictly greater than minPos,
// which keeps a grown predecessor from overlapping this payload.
func (a *Archive) resolve(e *Entry, minPos uint32) uint32 {
	if e.offset >= minPos {
		return e.offset
	}
	next := (minPos/AlignmentTarget + 1) * AlignmentTarget
	a.log().Debug("entry payload relocated",
		"name", e.name, "oldOffset", e.offset, "newOffset", next)
	e.offset = next
	return e.offset
}
