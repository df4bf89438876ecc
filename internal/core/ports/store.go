package ports

import "go.trai.ch/recall/internal/core/domain"

// EntryStore persists cache entries for one build root. The store is
// process-local; no cross-process coordination happens here.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type EntryStore interface {
	// Load reads the current cache entry.
	// Returns nil, nil if no entry has ever been published.
	Load() (*domain.CacheEntry, error)

	// Publish atomically replaces the current entry with the given one.
	// A prior valid entry stays intact and loadable if publishing fails
	// part-way through.
	Publish(entry *domain.CacheEntry) error

	// Discard removes any stored entry.
	Discard() error
}
