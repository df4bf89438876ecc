package domain

import (
	"time"

	"github.com/google/uuid"
)

// FormatVersion is the current on-disk cache entry format version. A bump
// invalidates every stored entry unconditionally; entries are never migrated.
const FormatVersion uint64 = 3

// CacheEntry is the persisted unit of the configuration-state cache: the
// serialized build model graph plus everything needed to decide whether it
// may be restored.
type CacheEntry struct {
	FormatVersion uint64
	// EntryID identifies the entry in corruption diagnostics.
	EntryID   uuid.UUID
	CreatedAt time.Time

	Fingerprint Fingerprint
	// TableSize is the number of identities interned while writing Payload.
	TableSize uint64
	// Payload is the identity-table-ordered graph stream.
	Payload []byte
	// Problems summarizes the diagnostics raised while the entry was written.
	Problems ProblemSummary
}
