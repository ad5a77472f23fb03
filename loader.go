package bundle

import (
	"github.com/velesmod/bundle/internal/binio"
)

// loadPayloads reads every entry's raw payload in ascending-offset order.
// Gap bytes between the stream position and an entry's offset are
// alignment padding and are discarded.
//
// The declared compression identifier is classified here. Scheme 0
// payloads are used as-is. Scheme 1 cannot be reliably decoded, and any
// other value is unknown; both fall back to keeping the raw bytes as the
// payload, with the original identifier recorded so the written record
// still declares it truthfully. The live identifier drops to scheme 0 so
// the rest of the pipeline treats the bytes as already stored.
func (a *Archive) loadPayloads(r *binio.Reader) {
	for i, e := range a.sorted {
		if pos := r.Count(); uint64(e.offset) > pos {
			r.Discard(uint64(e.offset) - pos)
		} else if uint64(e.offset) < pos {
			// A well-formed bundle never overlaps payloads. Read in
			// place and let the fields speak for themselves.
			a.log().Warn("entry offset behind stream position",
				"name", e.name, "offset", e.offset, "position", pos)
		}

		raw := r.Bytes(int(e.compressedSize))

		switch e.comp {
		case CompressionNone:
			e.payload = raw
		default:
			if e.comp != CompressionZlib {
				a.log().Warn("unsupported compression identifier, storing raw bytes",
					"name", e.name, "compression", uint32(e.comp))
			}
			e.declared = e.comp
			e.passthrough = true
			e.comp = CompressionNone
			e.payload = raw
		}

		a.emitProgress(StageLoading, e.name, i+1, len(a.sorted))
	}
}
