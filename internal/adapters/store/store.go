// Package store persists cache entries as a single versioned file per build
// root, published atomically.
package store

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/snappy"
	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/recall/internal/core/ports"
	"go.trai.ch/zerr"
)

const entryFileName = "entry.cache"

// magic marks a recall cache entry file.
var magic = [4]byte{'r', 'c', 'c', 'e'}

var _ ports.EntryStore = (*Store)(nil)

// Store implements ports.EntryStore on a directory holding one entry file.
type Store struct {
	dir string
}

// New creates a store rooted at the given cache directory. The directory is
// created on first publish, not here.
func New(dir string) *Store {
	return &Store{dir: filepath.Clean(dir)}
}

func (s *Store) entryPath() string {
	return filepath.Join(s.dir, entryFileName)
}

// Load reads and verifies the stored entry. A missing file is nil, nil. An
// entry written under a different format version comes back with only its
// FormatVersion set, because the rest of its layout cannot be trusted.
func (s *Store) Load() (*domain.CacheEntry, error) {
	//nolint:gosec // Path is derived from the configured cache directory
	data, err := os.ReadFile(s.entryPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, "failed to read cache entry")
	}
	return decodeEntry(data)
}

// Publish writes the entry to a temporary file in the cache directory and
// renames it into place. Interrupting a publish leaves any prior entry
// intact; the half-written temporary is never loadable as a hit.
func (s *Store) Publish(entry *domain.CacheEntry) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create cache directory")
	}

	tmp, err := os.CreateTemp(s.dir, entryFileName+".*.tmp")
	if err != nil {
		return zerr.Wrap(err, "failed to create temporary entry file")
	}
	tmpName := tmp.Name()
	defer func() {
		// Best effort; gone already when the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(encodeEntry(entry)); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, "failed to write entry payload")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, "failed to sync entry file")
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, "failed to close entry file")
	}

	if err := os.Rename(tmpName, s.entryPath()); err != nil {
		return zerr.Wrap(err, "failed to publish entry file")
	}
	return nil
}

// Discard removes the stored entry, if any.
func (s *Store) Discard() error {
	if err := os.Remove(s.entryPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.Wrap(err, "failed to discard cache entry")
	}
	return nil
}

// On-disk layout: magic, format version, entry id, creation time, the
// fingerprint sequence, identity table size, problem summary, then the
// snappy-compressed payload with an xxhash64 checksum of the uncompressed
// bytes. The checksum is what turns silent corruption into a diagnosed miss.

func encodeEntry(entry *domain.CacheEntry) []byte {
	buf := make([]byte, 0, len(entry.Payload)/2+256)
	buf = append(buf, magic[:]...)
	buf = binary.AppendUvarint(buf, entry.FormatVersion)
	buf = append(buf, entry.EntryID[:]...)
	buf = binary.AppendVarint(buf, entry.CreatedAt.UnixNano())

	buf = binary.AppendUvarint(buf, uint64(len(entry.Fingerprint.Entries)))
	for _, e := range entry.Fingerprint.Entries {
		buf = append(buf, byte(e.Kind))
		buf = binary.AppendUvarint(buf, uint64(len(e.Key)))
		buf = append(buf, e.Key...)
		buf = binary.LittleEndian.AppendUint64(buf, e.Hash)
	}

	buf = binary.AppendUvarint(buf, entry.TableSize)
	buf = binary.AppendUvarint(buf, uint64(entry.Problems.Warnings))
	buf = binary.AppendUvarint(buf, uint64(entry.Problems.Errors))

	compressed := snappy.Encode(nil, entry.Payload)
	buf = binary.AppendUvarint(buf, uint64(len(compressed)))
	buf = append(buf, compressed...)
	buf = binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(entry.Payload))
	return buf
}

func decodeEntry(data []byte) (*domain.CacheEntry, error) {
	r := &entryReader{data: data}

	var m [4]byte
	if err := r.read(m[:]); err != nil || m != magic {
		return nil, zerr.Wrap(domain.ErrCorruptEntry, "bad magic")
	}

	entry := &domain.CacheEntry{}
	var err error
	if entry.FormatVersion, err = r.uvarint(); err != nil {
		return nil, err
	}
	if entry.FormatVersion != domain.FormatVersion {
		// Layout under another version is unknowable; the checker turns this
		// into an unconditional miss.
		return entry, nil
	}

	if err := r.read(entry.EntryID[:]); err != nil {
		return nil, err
	}
	nanos, err := r.varint()
	if err != nil {
		return nil, err
	}
	entry.CreatedAt = timeFromNanos(nanos)

	count, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	entry.Fingerprint.Entries = make([]domain.FingerprintEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		var e domain.FingerprintEntry
		kind, err := r.byte()
		if err != nil {
			return nil, err
		}
		e.Kind = domain.SourceKind(kind)
		if e.Key, err = r.str(); err != nil {
			return nil, err
		}
		if e.Hash, err = r.uint64(); err != nil {
			return nil, err
		}
		entry.Fingerprint.Entries = append(entry.Fingerprint.Entries, e)
	}

	if entry.TableSize, err = r.uvarint(); err != nil {
		return nil, err
	}
	warns, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	errs, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	entry.Problems = domain.ProblemSummary{Warnings: int(warns), Errors: int(errs)}

	compLen, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	compressed, err := r.take(compLen)
	if err != nil {
		return nil, err
	}
	payload, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrCorruptEntry, "payload decompression failed")
	}
	sum, err := r.uint64()
	if err != nil {
		return nil, err
	}
	if xxhash.Sum64(payload) != sum {
		return nil, zerr.Wrap(domain.ErrCorruptEntry, "payload checksum mismatch")
	}
	entry.Payload = payload
	return entry, nil
}
