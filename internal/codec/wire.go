// Package codec maps runtime types to the encode/decode strategies that carry
// them across the cache boundary, and defines the binary wire format values
// are written in.
package codec

import (
	"encoding/binary"
	"math"

	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/zerr"
)

// Kind tags every value in the payload stream.
type Kind uint8

const (
	// KindNull is a nil value.
	KindNull Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindInt is a signed integer (all Go int widths collapse to int64).
	KindInt
	// KindFloat is a 64-bit float.
	KindFloat
	// KindString is a UTF-8 string.
	KindString
	// KindList is an ordered sequence of values.
	KindList
	// KindMap is a string-keyed map, written in sorted key order.
	KindMap
	// KindDef introduces an identity: reference id followed by the value.
	KindDef
	// KindRef is a back-reference to an already-defined identity.
	KindRef
	// KindUnit is a work unit node.
	KindUnit
	// KindProvider is a lazily-computed value, persisted as its result.
	KindProvider
	// KindFileCollection is an ordered file list.
	KindFileCollection
	// KindClasspath is the derived identity of dynamically loaded code.
	KindClasspath
	// KindStruct is a structurally-encoded value class.
	KindStruct
	// KindTombstone stands in for a value that could not be encoded.
	KindTombstone
)

// wireWriter builds the payload stream. Append-only; a failed node encode is
// rolled back by truncating to a mark taken before the attempt.
type wireWriter struct {
	buf []byte
}

func (w *wireWriter) bytes() []byte { return w.buf }

func (w *wireWriter) mark() int { return len(w.buf) }

func (w *wireWriter) truncate(mark int) { w.buf = w.buf[:mark] }

func (w *wireWriter) writeKind(k Kind) {
	w.buf = append(w.buf, byte(k))
}

func (w *wireWriter) writeBool(b bool) {
	if b {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *wireWriter) writeCount(v uint64) {
	w.buf = binary.AppendUvarint(w.buf, v)
}

func (w *wireWriter) writeInt(v int64) {
	w.buf = binary.AppendVarint(w.buf, v)
}

func (w *wireWriter) writeFloat(v float64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *wireWriter) writeString(s string) {
	w.writeCount(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// wireReader consumes a payload stream. Every read is bounds-checked: a short
// or malformed buffer surfaces as ErrCorruptEntry, never a panic, because
// corrupt payloads must degrade to a recoverable miss.
type wireReader struct {
	buf []byte
	off int
}

func newWireReader(buf []byte) *wireReader {
	return &wireReader{buf: buf}
}

func (r *wireReader) remaining() int { return len(r.buf) - r.off }

func (r *wireReader) readKind() (Kind, error) {
	if r.remaining() < 1 {
		return KindNull, zerr.Wrap(domain.ErrCorruptEntry, "truncated kind tag")
	}
	k := Kind(r.buf[r.off])
	r.off++
	return k, nil
}

func (r *wireReader) readBool() (bool, error) {
	if r.remaining() < 1 {
		return false, zerr.Wrap(domain.ErrCorruptEntry, "truncated bool")
	}
	b := r.buf[r.off] != 0
	r.off++
	return b, nil
}

func (r *wireReader) readCount() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.off:])
	if n <= 0 {
		return 0, zerr.Wrap(domain.ErrCorruptEntry, "truncated count")
	}
	r.off += n
	return v, nil
}

func (r *wireReader) readInt() (int64, error) {
	v, n := binary.Varint(r.buf[r.off:])
	if n <= 0 {
		return 0, zerr.Wrap(domain.ErrCorruptEntry, "truncated int")
	}
	r.off += n
	return v, nil
}

func (r *wireReader) readFloat() (float64, error) {
	if r.remaining() < 8 {
		return 0, zerr.Wrap(domain.ErrCorruptEntry, "truncated float")
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(r.buf[r.off:]))
	r.off += 8
	return v, nil
}

func (r *wireReader) readString() (string, error) {
	n, err := r.readCount()
	if err != nil {
		return "", err
	}
	if uint64(r.remaining()) < n {
		return "", zerr.Wrap(domain.ErrCorruptEntry, "truncated string")
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}
