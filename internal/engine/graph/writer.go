package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/recall/internal/codec"
	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/zerr"
)

// Writer walks the root set of cacheable state and produces a cache entry.
// Output is deterministic: the same graph yields byte-identical payloads
// across runs, which is what corruption diagnostics leans on.
type Writer struct {
	reg      *codec.Registry
	problems codec.ProblemSink
}

// NewWriter creates a writer using the given registry and problem sink.
func NewWriter(reg *codec.Registry, problems codec.ProblemSink) *Writer {
	return &Writer{reg: reg, problems: problems}
}

// Write encodes the ordered root sequence together with the pass fingerprint
// into a publishable cache entry. One bad branch tombstones; it never aborts
// the walk. An interrupted context abandons the walk instead.
func (w *Writer) Write(ctx context.Context, roots []*domain.WorkUnit, fp domain.Fingerprint) (*domain.CacheEntry, error) {
	table := NewIdentityTable()
	enc := codec.NewEncoder(w.reg, table, w.problems)

	enc.WriteRootCount(uint64(len(roots)))
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, zerr.Wrap(domain.ErrPassAbandoned, "graph write interrupted")
		}
		if err := enc.EncodeValue(root); err != nil {
			return nil, zerr.Wrap(err, "failed to encode root")
		}
	}

	return &domain.CacheEntry{
		FormatVersion: domain.FormatVersion,
		EntryID:       uuid.New(),
		CreatedAt:     time.Now(),
		Fingerprint:   fp,
		TableSize:     table.Size(),
		Payload:       enc.Bytes(),
	}, nil
}
