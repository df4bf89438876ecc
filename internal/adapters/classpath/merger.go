// Package classpath derives the order-preserving identity of dynamically
// loaded code units. Loaded code itself is never cached; only this identity is.
package classpath

import (
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/recall/internal/core/domain"
)

// ForSpec derives a unit's effective classpath from its declared artifact
// list, substituting instrumented artifacts for their originals.
func ForSpec(spec domain.UnitSpec) *domain.Classpath {
	originals := make([]domain.ClasspathArtifact, 0, len(spec.Classpath))
	for _, f := range spec.Classpath {
		originals = append(originals, domain.ClasspathArtifact{
			File:             f,
			OriginalFileName: filepath.Base(f),
			ComponentID:      spec.Name,
		})
	}
	transformed := make([]domain.ClasspathArtifact, 0, len(spec.Instrumented))
	for origin, file := range spec.Instrumented {
		transformed = append(transformed, domain.ClasspathArtifact{
			File:             file,
			OriginalFileName: origin,
			ComponentID:      spec.Name,
		})
	}
	return &domain.Classpath{ID: spec.Name, Artifacts: Merge(originals, transformed)}
}

// Merge substitutes transformed artifacts into the original classpath,
// keeping the original order. Artifacts match by origin identity (original
// file name plus originating component), never by the transformed file's own
// properties: sorting by transformed identity would make two semantically
// equal classpaths hash differently.
func Merge(original, transformed []domain.ClasspathArtifact) []domain.ClasspathArtifact {
	replacements := make(map[domain.ArtifactOrigin]domain.ClasspathArtifact, len(transformed))
	for _, t := range transformed {
		// First transform wins; a duplicate origin means the same input was
		// transformed twice and either result is equivalent.
		if _, dup := replacements[t.Origin()]; !dup {
			replacements[t.Origin()] = t
		}
	}

	merged := make([]domain.ClasspathArtifact, 0, len(original))
	for _, o := range original {
		if t, ok := replacements[o.Origin()]; ok {
			merged = append(merged, t)
		} else {
			merged = append(merged, o)
		}
	}
	return merged
}

// Fingerprint hashes the ordered file list of a classpath. Order matters:
// the same files in another order are a different classpath.
func Fingerprint(cp *domain.Classpath) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(cp.ID)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(strings.Join(cp.Files(), "\x00"))
	return h.Sum64()
}
