package graph

import (
	"context"

	"go.trai.ch/recall/internal/codec"
	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/zerr"
)

// Reader reconstructs the root sequence from a stored cache entry, replaying
// the identity table positionally. Each node comes back fully materialized or
// as a broken-reference placeholder; nothing partially constructed escapes.
type Reader struct {
	reg      *codec.Registry
	problems codec.ProblemSink
}

// NewReader creates a reader using the given registry and problem sink.
func NewReader(reg *codec.Registry, problems codec.ProblemSink) *Reader {
	return &Reader{reg: reg, problems: problems}
}

// Read decodes the ordered root sequence of the entry. A structurally
// unreadable payload returns an error wrapping domain.ErrCorruptEntry; the
// caller treats that as a full fallback, never a crash.
func (r *Reader) Read(ctx context.Context, entry *domain.CacheEntry) ([]*domain.WorkUnit, error) {
	// A payload written under another format version cannot be replayed
	// against the current codecs.
	if entry.FormatVersion != domain.FormatVersion {
		return nil, zerr.With(zerr.Wrap(domain.ErrVersionMismatch, "refusing to decode payload"), "version", int(entry.FormatVersion))
	}

	table := NewIdentityTable()
	dec := codec.NewDecoder(entry.Payload, r.reg, table, r.problems)

	rootCount, err := dec.ReadRootCount()
	if err != nil {
		return nil, err
	}
	roots := make([]*domain.WorkUnit, 0, rootCount)
	for i := uint64(0); i < rootCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, zerr.Wrap(domain.ErrPassAbandoned, "graph read interrupted")
		}
		v, err := dec.DecodeValue()
		if err != nil {
			return nil, err
		}
		switch node := v.(type) {
		case *domain.WorkUnit:
			roots = append(roots, node)
		case *domain.BrokenReference:
			roots = append(roots, &domain.WorkUnit{Broken: node})
		default:
			return nil, zerr.With(zerr.Wrap(domain.ErrCorruptEntry, "root decoded to unexpected value"), "root_index", int(i))
		}
	}

	if entry.TableSize != table.DecodedSize() {
		r.problems.Report(domain.Problem{
			Severity: domain.SeverityWarn,
			Message:  "identity table size diverged from the stored entry",
		})
	}
	return roots, nil
}
