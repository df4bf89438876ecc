package fingerprint

import (
	"context"
	"fmt"

	"go.trai.ch/recall/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// Checker compares a stored fingerprint against fresh observations and
// decides cache hit versus miss. A miss is never a fault; it only means
// "reconfigure and recapture".
type Checker struct {
	sources     *Sources
	parallelism int
}

// NewChecker creates a checker re-observing through the given sources.
func NewChecker(sources *Sources, parallelism int) *Checker {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Checker{sources: sources, parallelism: parallelism}
}

// Check returns a hit verdict only when the entry exists, its format version
// matches, and every stored entry reproduces an identical hash when freshly
// observed. Entries are re-observed concurrently, but the reported reason is
// always the first differing key in stored order, to keep diagnostics short
// and stable.
func (c *Checker) Check(ctx context.Context, entry *domain.CacheEntry) domain.Verdict {
	if entry == nil {
		return domain.Verdict{Reason: "no entry"}
	}
	if entry.FormatVersion != domain.FormatVersion {
		return domain.Verdict{Reason: fmt.Sprintf("format version changed (%d -> %d)", entry.FormatVersion, domain.FormatVersion)}
	}

	stored := entry.Fingerprint.Entries
	mismatch := make([]bool, len(stored))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for i, e := range stored {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mismatch[i] = c.observe(e) != e.Hash
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Verdict{Reason: "check interrupted"}
	}

	for i, bad := range mismatch {
		if bad {
			return domain.Verdict{Reason: fmt.Sprintf("%s '%s' has changed", stored[i].Kind, stored[i].Key)}
		}
	}
	return domain.Verdict{Hit: true}
}

// observe recomputes the hash for one stored entry using fresh reads.
func (c *Checker) observe(e domain.FingerprintEntry) uint64 {
	switch e.Kind {
	case domain.SourceEnv:
		v, ok := c.sources.Env(e.Key)
		return presenceHash(e.Kind, e.Key, v, ok)
	case domain.SourceProperty:
		v, ok := c.sources.Property(e.Key)
		return presenceHash(e.Kind, e.Key, v, ok)
	case domain.SourceFile:
		data, err := c.sources.ReadFile(e.Key)
		if err != nil {
			return hashValue(e.Kind, e.Key, absentMarker)
		}
		return hashBytes(e.Kind, e.Key, data)
	case domain.SourceDir:
		names, err := c.sources.ListDir(e.Key)
		if err != nil {
			return hashValue(e.Kind, e.Key, absentMarker)
		}
		return hashList(e.Kind, e.Key, names)
	case domain.SourceCLI:
		v, ok := c.sources.CLIValues[e.Key]
		return presenceHash(e.Kind, e.Key, v, ok)
	case domain.SourceClasspath:
		if c.sources.ClasspathFiles == nil {
			return hashValue(e.Kind, e.Key, absentMarker)
		}
		files, ok := c.sources.ClasspathFiles(e.Key)
		if !ok {
			return hashValue(e.Kind, e.Key, absentMarker)
		}
		return hashList(e.Kind, e.Key, files)
	default:
		// An unknown kind means the entry was written by something newer;
		// treat it as changed.
		return 0
	}
}
