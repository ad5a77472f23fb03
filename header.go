package bundle

import (
	"github.com/velesmod/bundle/internal/binio"
)

// Fixed layout parameters of the bundle format.
const (
	// HeaderSize is the on-disk size of the archive header.
	HeaderSize = 32

	// RecordSize is the on-disk size of one directory record.
	RecordSize = 320

	// NameLen is the capacity of a record's zero-terminated name field.
	NameLen = 256

	// IDLen is the size of a record's opaque identifier field.
	IDLen = 16

	// AlignmentTarget is the boundary every payload must start on.
	AlignmentTarget = 4096
)

// magicTag is the expected 8-byte header magic.
const magicTag = "POTATO70"

// footerAlign and footerPadText describe the optional trailing pad: when
// enabled, the archive is padded to a 16-byte boundary with this text.
const (
	footerAlign   = 16
	footerPadText = "AlignmentUnused"
)

// Header is the 32-byte archive header.
//
// SecondarySize and the reserved block have unknown semantics. They are
// never interpreted and are written back exactly as read.
type Header struct {
	// TotalSize is the declared size of the whole archive file.
	TotalSize uint32

	// SecondarySize is an opaque size-like field, preserved verbatim.
	SecondarySize uint32

	// DataOffset is the total size of the directory section; payloads
	// begin after HeaderSize+DataOffset bytes.
	DataOffset uint32

	// reserved is preserved byte-for-byte across a rewrite.
	reserved [12]byte
}

// decodeHeader reads the archive header, warning when the magic does not
// match the expected literal. The canonical literal is always written on
// emit regardless.
func (a *Archive) decodeHeader(r *binio.Reader) {
	m := r.Bytes(8)
	if string(m) != magicTag {
		a.log().Warn("unexpected magic tag", "magic", string(m), "want", magicTag)
	}
	a.header.TotalSize = r.U32()
	a.header.SecondarySize = r.U32()
	a.header.DataOffset = r.U32()
	copy(a.header.reserved[:], r.Bytes(len(a.header.reserved)))
}

// encodeHeader writes the header with the current (already recomputed)
// total size and data offset.
func (a *Archive) encodeHeader(w *binio.Writer) {
	w.Bytes([]byte(magicTag))
	w.U32(a.header.TotalSize)
	w.U32(a.header.SecondarySize)
	w.U32(a.header.DataOffset)
	w.Bytes(a.header.reserved[:])
}
