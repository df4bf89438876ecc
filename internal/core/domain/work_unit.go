// Package domain contains the core value types of the configuration-state cache.
package domain

import "sync"

// WorkUnit is a node of the configured build model: a declaratively-configured
// piece of buildable work together with the objects reachable from its inputs.
// Units reference each other through DependsOn, so the same *WorkUnit may be
// reachable from several roots and must keep its identity across a cache
// round-trip.
type WorkUnit struct {
	Name       InternedString
	Properties map[string]any
	DependsOn  []*WorkUnit

	// Broken is set on a restored unit whose payload could not be decoded.
	// The unit is a placeholder; everything else about it is zero.
	Broken *BrokenReference
}

// BrokenReference is the decode-time placeholder standing in for a node that
// could not be faithfully encoded or decoded. It carries enough context for a
// restored build to report what failed.
type BrokenReference struct {
	Path    string
	Message string
}

func (b *BrokenReference) String() string {
	return "<broken: " + b.Path + ": " + b.Message + ">"
}

// Provider is a lazily-computed value attached to a work unit property.
// The computation runs at most once; a cached graph stores the computed
// result, never the computation itself.
type Provider struct {
	mu      sync.Mutex
	compute func() (any, error)
	done    bool
	value   any
	err     error
}

// NewProvider creates a Provider backed by the given computation.
func NewProvider(compute func() (any, error)) *Provider {
	return &Provider{compute: compute}
}

// FixedProvider creates a Provider holding an already-computed value.
// Restored graphs only ever contain fixed providers.
func FixedProvider(v any) *Provider {
	return &Provider{done: true, value: v}
}

// Get returns the provider's value, computing it on first call.
func (p *Provider) Get() (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.done {
		p.value, p.err = p.compute()
		p.done = true
		p.compute = nil
	}
	return p.value, p.err
}

// FileCollectionLike is the polymorphic capability matched by the codec
// registry for anything that resolves to an ordered list of files.
type FileCollectionLike interface {
	Files() []string
}

// FileList is the plain FileCollectionLike carried by the domain model.
type FileList struct {
	Paths []string
}

// Files returns the ordered file paths of the collection.
func (f *FileList) Files() []string {
	return f.Paths
}
