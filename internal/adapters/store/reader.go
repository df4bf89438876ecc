package store

import (
	"encoding/binary"
	"time"

	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/zerr"
)

// entryReader is a bounds-checked cursor over an entry file. Short reads mean
// a truncated or corrupt file and surface as ErrCorruptEntry.
type entryReader struct {
	data []byte
	off  int
}

func (r *entryReader) remaining() int { return len(r.data) - r.off }

func (r *entryReader) read(dst []byte) error {
	if r.remaining() < len(dst) {
		return zerr.Wrap(domain.ErrCorruptEntry, "truncated entry file")
	}
	copy(dst, r.data[r.off:])
	r.off += len(dst)
	return nil
}

func (r *entryReader) take(n uint64) ([]byte, error) {
	if uint64(r.remaining()) < n {
		return nil, zerr.Wrap(domain.ErrCorruptEntry, "truncated entry file")
	}
	b := r.data[r.off : r.off+int(n)]
	r.off += int(n)
	return b, nil
}

func (r *entryReader) byte() (byte, error) {
	if r.remaining() < 1 {
		return 0, zerr.Wrap(domain.ErrCorruptEntry, "truncated entry file")
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *entryReader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		return 0, zerr.Wrap(domain.ErrCorruptEntry, "truncated entry file")
	}
	r.off += n
	return v, nil
}

func (r *entryReader) varint() (int64, error) {
	v, n := binary.Varint(r.data[r.off:])
	if n <= 0 {
		return 0, zerr.Wrap(domain.ErrCorruptEntry, "truncated entry file")
	}
	r.off += n
	return v, nil
}

func (r *entryReader) uint64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, zerr.Wrap(domain.ErrCorruptEntry, "truncated entry file")
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

func (r *entryReader) str() (string, error) {
	n, err := r.uvarint()
	if err != nil {
		return "", err
	}
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func timeFromNanos(nanos int64) time.Time {
	return time.Unix(0, nanos)
}
