// Package binio implements the primitive wire codec for bundle archives:
// little-endian fixed-width integers and fixed-capacity zero-terminated
// strings over byte streams.
//
// Reads are deliberately forgiving. Running out of bytes mid-field
// zero-fills the remainder and records a diagnostic instead of failing,
// so a truncated archive still decodes as far as it can. Genuine I/O
// errors are sticky; callers must check Err before trusting decoded
// values.
package binio

import (
	"bytes"
	"encoding/binary"
	"io"
	"log/slog"
)

// zeroChunkSize bounds the scratch buffer used for writing padding runs.
const zeroChunkSize = 4096

// Reader decodes fixed-layout fields from an underlying stream.
//
// Reader keeps a running count of consumed bytes. The count includes
// zero-filled shortfall bytes that were never actually read, so it always
// reflects the logical stream position.
type Reader struct {
	r      io.Reader
	n      uint64
	err    error
	logger *slog.Logger
}

// NewReader creates a Reader over r. A nil logger discards diagnostics.
func NewReader(r io.Reader, logger *slog.Logger) *Reader {
	return &Reader{r: r, logger: logger}
}

func (r *Reader) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Count returns the number of bytes consumed so far.
func (r *Reader) Count() uint64 {
	return r.n
}

// Err returns the first I/O error encountered, if any. Exhausting the
// stream is not an error; short reads only produce diagnostics.
func (r *Reader) Err() error {
	return r.err
}

// Bytes reads exactly n bytes. If the stream runs out early the remainder
// of the result is zero and a diagnostic is logged; the returned slice
// always has length n.
func (r *Reader) Bytes(n int) []byte {
	buf := make([]byte, n)
	if r.err != nil {
		return buf
	}
	nr, err := io.ReadFull(r.r, buf)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		r.log().Warn("short read, zero-filling remainder",
			"requested", n, "read", nr, "position", r.n)
	default:
		r.err = err
	}
	r.n += uint64(n)
	return buf
}

// Discard consumes and throws away n bytes.
func (r *Reader) Discard(n uint64) {
	if r.err != nil || n == 0 {
		return
	}
	nr, err := io.CopyN(io.Discard, r.r, int64(n)) //nolint:gosec // padding runs never approach int64 range
	if err != nil && err != io.EOF {
		r.err = err
	}
	if uint64(nr) < n && r.err == nil {
		r.log().Warn("short discard", "requested", n, "discarded", nr, "position", r.n)
	}
	r.n += n
}

// U32 reads a little-endian unsigned 32-bit integer.
func (r *Reader) U32() uint32 {
	return binary.LittleEndian.Uint32(r.Bytes(4))
}

// U64 reads a little-endian unsigned 64-bit integer.
func (r *Reader) U64() uint64 {
	return binary.LittleEndian.Uint64(r.Bytes(8))
}

// String reads a fixed-capacity text field of the given byte capacity.
// The value ends at the first zero byte; anything after it is ignored.
// A field with no terminator yields all capacity bytes as text.
func (r *Reader) String(capacity int) string {
	buf := r.Bytes(capacity)
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf)
}

// Writer encodes fixed-layout fields to an underlying stream.
//
// Errors are sticky: after the first write failure all further calls are
// no-ops and Err reports the failure.
type Writer struct {
	w      io.Writer
	n      uint64
	err    error
	logger *slog.Logger
}

// NewWriter creates a Writer over w. A nil logger discards diagnostics.
func NewWriter(w io.Writer, logger *slog.Logger) *Writer {
	return &Writer{w: w, logger: logger}
}

func (w *Writer) log() *slog.Logger {
	if w.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.logger
}

// Count returns the number of bytes written so far.
func (w *Writer) Count() uint64 {
	return w.n
}

// Err returns the first write error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

// Bytes writes p verbatim.
func (w *Writer) Bytes(p []byte) {
	if w.err != nil {
		return
	}
	nw, err := w.w.Write(p)
	w.n += uint64(nw) //nolint:gosec // nw is non-negative per io.Writer contract
	if err != nil {
		w.err = err
	}
}

// Zeros writes n zero bytes.
func (w *Writer) Zeros(n uint64) {
	var chunk [zeroChunkSize]byte
	for n > 0 && w.err == nil {
		step := n
		if step > zeroChunkSize {
			step = zeroChunkSize
		}
		w.Bytes(chunk[:step])
		n -= step
	}
}

// U32 writes a little-endian unsigned 32-bit integer.
func (w *Writer) U32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.Bytes(buf[:])
}

// U64 writes a little-endian unsigned 64-bit integer.
func (w *Writer) U64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.Bytes(buf[:])
}

// String writes s as a fixed-capacity zero-padded text field. A value
// that does not fit is truncated to capacity-1 bytes, keeping the final
// terminator, and a diagnostic is logged.
func (w *Writer) String(s string, capacity int) {
	buf := make([]byte, capacity)
	if len(s) >= capacity {
		w.log().Warn("string exceeds fixed field capacity, truncating",
			"value", s, "capacity", capacity)
		s = s[:capacity-1]
	}
	copy(buf, s)
	w.Bytes(buf)
}
