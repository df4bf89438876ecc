// Package graph walks the configured build model through codecs, producing
// and restoring the cached payload.
package graph

import (
	"reflect"
	"sync"
	"sync/atomic"
)

const stripeCount = 32

// IdentityTable is the bijection between object identity and dense reference
// ids. Encoding the same identity twice yields the same id and serializes the
// payload only once; decoding an id already materialized returns the same
// instance, never a copy. Intern operations are striped by identity hash so
// concurrent interns for different identities proceed without contention.
type IdentityTable struct {
	next    atomic.Uint64
	decoded atomic.Uint64

	encode [stripeCount]encodeStripe
	decode [stripeCount]decodeStripe
}

type encodeStripe struct {
	mu  sync.Mutex
	ids map[any]uint64
}

type decodeStripe struct {
	mu        sync.Mutex
	instances map[uint64]any
}

// NewIdentityTable creates an empty table.
func NewIdentityTable() *IdentityTable {
	t := &IdentityTable{}
	for i := range t.encode {
		t.encode[i].ids = make(map[any]uint64)
	}
	for i := range t.decode {
		t.decode[i].instances = make(map[uint64]any)
	}
	return t
}

// Size returns the number of identities interned while encoding.
func (t *IdentityTable) Size() uint64 {
	return t.next.Load()
}

// DecodedSize returns the number of identities materialized while decoding.
func (t *IdentityTable) DecodedSize() uint64 {
	return t.decoded.Load()
}

// InternEncode returns the reference id for v, assigning the next dense id on
// first sight. The second return is true exactly once per identity; that call
// is the one that must emit the payload.
func (t *IdentityTable) InternEncode(v any) (uint64, bool) {
	s := &t.encode[t.stripe(v)]
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.ids[v]; ok {
		return id, false
	}
	id := t.next.Add(1) - 1
	s.ids[v] = id
	return id, true
}

// InternDecode materializes the identity for id via supply on first
// resolution and returns the cached instance on every later one. Callers must
// tolerate supply going unused.
func (t *IdentityTable) InternDecode(id uint64, supply func() (any, error)) (any, error) {
	if inst, ok := t.Lookup(id); ok {
		return inst, nil
	}
	inst, err := supply()
	if err != nil {
		return nil, err
	}
	t.Claim(id, inst)
	return inst, nil
}

// Claim registers an instance under id before its contents are decoded, so a
// cycle back into id resolves to the same instance.
func (t *IdentityTable) Claim(id uint64, v any) {
	s := &t.decode[id%stripeCount]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.instances[id]; taken {
		return
	}
	s.instances[id] = v
	t.decoded.Add(1)
}

// Lookup returns the instance already materialized for id, if any.
func (t *IdentityTable) Lookup(id uint64) (any, bool) {
	s := &t.decode[id%stripeCount]
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[id]
	return inst, ok
}

// stripe picks a lock stripe from the value's pointer identity. The low bits
// are dropped because allocations are alignment-biased.
func (t *IdentityTable) stripe(v any) uintptr {
	return (reflect.ValueOf(v).Pointer() >> 4) % stripeCount
}
