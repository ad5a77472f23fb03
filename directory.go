package bundle

import (
	"github.com/velesmod/bundle/internal/binio"
)

// decodeDirectory parses 320-byte records until the consumed byte count
// reaches the end of the directory section (DataOffset + HeaderSize).
func (a *Archive) decodeDirectory(r *binio.Reader) {
	end := uint64(a.header.DataOffset) + HeaderSize
	for r.Count() < end && r.Err() == nil {
		e := decodeRecord(r)
		a.entries = append(a.entries, e)
		a.log().Debug("read entry record",
			"name", e.name, "size", e.uncompressedSize, "storedSize", e.compressedSize,
			"compression", e.comp, "offset", e.offset, "aligned", e.Aligned())
		a.emitProgress(StageParsing, e.name, len(a.entries), 0)
	}
}

// decodeRecord reads one directory record. The field order is fixed by
// the format; the two reserved runs are discarded.
func decodeRecord(r *binio.Reader) *Entry {
	e := &Entry{}
	e.name = r.String(NameLen)
	copy(e.id[:], r.Bytes(IDLen))
	r.Discard(4)
	e.uncompressedSize = r.U32()
	e.compressedSize = r.U32()
	e.offset = r.U32()
	e.modTimeRaw = r.U64()
	r.Discard(16)
	e.unknown = r.U32()
	e.comp = Compression(r.U32())
	return e
}

// encodeRecord writes one directory record using the entry's current
// field values. Reserved runs are written as zero; the compression field
// carries the declared identifier so passthrough entries round-trip the
// scheme they were read with.
func encodeRecord(w *binio.Writer, e *Entry) {
	w.String(e.name, NameLen)
	w.Bytes(e.id[:])
	w.U32(0)
	w.U32(e.uncompressedSize)
	w.U32(e.compressedSize)
	w.U32(e.offset)
	w.U64(e.modTimeRaw)
	w.Zeros(16)
	w.U32(e.unknown)
	w.U32(uint32(e.DeclaredCompression()))
}
