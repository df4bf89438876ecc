package domain

import "go.trai.ch/zerr"

var (
	// ErrDuplicateCodec is returned when two codecs are registered for the same exact type.
	ErrDuplicateCodec = zerr.New("codec already registered for type")

	// ErrUnknownKind is returned when a payload carries a kind tag no codec decodes.
	ErrUnknownKind = zerr.New("unknown value kind in payload")

	// ErrCorruptEntry is returned when a stored cache entry is structurally unreadable.
	ErrCorruptEntry = zerr.New("cache entry is corrupt")

	// ErrVersionMismatch is returned when a stored cache entry was written with a different format version.
	ErrVersionMismatch = zerr.New("cache entry format version mismatch")

	// ErrProblemsReported is returned when a pass fails under the fail-on-problems policy.
	ErrProblemsReported = zerr.New("problems were reported during the cache pass")

	// ErrPassAbandoned is returned when a cache pass is cancelled before it completes.
	ErrPassAbandoned = zerr.New("cache pass abandoned")

	// ErrUnknownWorkUnit is returned when a model references a work unit that was never declared.
	ErrUnknownWorkUnit = zerr.New("unknown work unit")

	// ErrUnknownStructType is returned when decoding a structurally-encoded value whose type was never registered.
	ErrUnknownStructType = zerr.New("struct type not registered for decode")
)
