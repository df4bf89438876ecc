package codec

import (
	"reflect"
	"strings"

	"go.trai.ch/recall/internal/core/domain"
)

// RefInterner assigns stable reference ids to identities during encode.
// Implemented by the graph identity table.
type RefInterner interface {
	// InternEncode returns the reference id for the identity and whether this
	// is the first time it was seen. Only the first call emits a payload.
	InternEncode(v any) (id uint64, first bool)
}

// RefResolver resolves reference ids back to shared instances during decode.
type RefResolver interface {
	// InternDecode materializes the identity via supply on first resolution
	// and returns the cached instance afterwards; supply may go unused.
	InternDecode(id uint64, supply func() (any, error)) (any, error)
	// Claim registers a partially-built instance under an id before its
	// contents are decoded, so cycles resolve to the same instance.
	Claim(id uint64, v any)
	// Lookup returns the instance already materialized for id, if any.
	Lookup(id uint64) (any, bool)
}

// ProblemSink receives diagnostics raised while a codec runs.
type ProblemSink interface {
	Report(p domain.Problem)
}

// Encoder drives codecs over one graph region and owns the region's portion
// of the payload stream.
type Encoder struct {
	w        wireWriter
	reg      *Registry
	refs     RefInterner
	problems ProblemSink
	path     []string
}

// NewEncoder creates an encoder writing a fresh stream.
func NewEncoder(reg *Registry, refs RefInterner, problems ProblemSink) *Encoder {
	return &Encoder{reg: reg, refs: refs, problems: problems}
}

// Bytes returns the encoded stream.
func (e *Encoder) Bytes() []byte { return e.w.bytes() }

// WriteRootCount prefixes the stream with the number of roots that follow.
func (e *Encoder) WriteRootCount(n uint64) { e.w.writeCount(n) }

// PushPath extends the dotted path from the nearest root, for diagnostics.
func (e *Encoder) PushPath(seg string) { e.path = append(e.path, seg) }

// PopPath removes the innermost path segment.
func (e *Encoder) PopPath() { e.path = e.path[:len(e.path)-1] }

// Path returns the dotted path from the nearest root to the current node.
func (e *Encoder) Path() string { return strings.Join(e.path, ".") }

// EncodeValue writes one value. Pointer values carry identity: the first
// occurrence defines a reference id and emits the payload, every later
// occurrence emits only a back-reference. A codec failure rolls the stream
// back to the node boundary and substitutes a tombstone, so one bad branch
// never prevents caching the rest of the graph.
func (e *Encoder) EncodeValue(v any) error {
	if v == nil {
		e.w.writeKind(KindNull)
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			e.w.writeKind(KindNull)
			return nil
		}
		id, first := e.refs.InternEncode(v)
		if !first {
			e.w.writeKind(KindRef)
			e.w.writeCount(id)
			return nil
		}
		e.w.writeKind(KindDef)
		e.w.writeCount(id)
	}
	return e.encodeBody(v, rv.Type())
}

func (e *Encoder) encodeBody(v any, t reflect.Type) error {
	c := e.reg.Resolve(t)
	mark := e.w.mark()
	e.w.writeKind(c.WireKind())
	if err := c.Encode(e, v); err != nil {
		e.w.truncate(mark)
		e.tombstone(err.Error(), err)
	}
	return nil
}

// tombstone records a problem at the current path and writes a placeholder
// in the value's place.
func (e *Encoder) tombstone(msg string, cause error) {
	path := e.Path()
	e.problems.Report(domain.Problem{
		Severity: domain.SeverityError,
		Message:  msg,
		Path:     path,
		Cause:    cause,
	})
	e.w.writeKind(KindTombstone)
	e.w.writeString(path)
	e.w.writeString(msg)
}

// Decoder replays a payload stream through codec decode halves.
type Decoder struct {
	r        *wireReader
	reg      *Registry
	refs     RefResolver
	problems ProblemSink
	path     []string

	// pending is the reference id of the KindDef currently being decoded,
	// available for codecs to claim before decoding their contents.
	pending   uint64
	hasPend   bool
	claimUsed bool
}

// NewDecoder creates a decoder over the given payload bytes.
func NewDecoder(payload []byte, reg *Registry, refs RefResolver, problems ProblemSink) *Decoder {
	return &Decoder{r: newWireReader(payload), reg: reg, refs: refs, problems: problems}
}

// ReadRootCount consumes the root-count prefix of the stream.
func (d *Decoder) ReadRootCount() (uint64, error) { return d.r.readCount() }

// PushPath extends the dotted diagnostic path.
func (d *Decoder) PushPath(seg string) { d.path = append(d.path, seg) }

// PopPath removes the innermost path segment.
func (d *Decoder) PopPath() { d.path = d.path[:len(d.path)-1] }

// Path returns the dotted path from the nearest root to the current node.
func (d *Decoder) Path() string { return strings.Join(d.path, ".") }

// ClaimPending registers inst under the reference id being defined, before
// its contents decode. Codecs for identity-carrying values call this right
// after allocation so cyclic back-references resolve to inst.
func (d *Decoder) ClaimPending(inst any) {
	if d.hasPend {
		d.refs.Claim(d.pending, inst)
		d.claimUsed = true
	}
}

// DecodeValue reads one value. A value is either fully materialized or a
// *domain.BrokenReference placeholder; nothing partially constructed escapes.
func (d *Decoder) DecodeValue() (any, error) {
	k, err := d.r.readKind()
	if err != nil {
		return nil, err
	}
	switch k {
	case KindNull:
		return nil, nil
	case KindRef:
		id, err := d.r.readCount()
		if err != nil {
			return nil, err
		}
		inst, ok := d.refs.Lookup(id)
		if !ok {
			// The definition was tombstoned away or lost; degrade to a
			// placeholder instead of failing the whole pass.
			return d.broken("unresolved reference"), nil
		}
		return inst, nil
	case KindDef:
		id, err := d.r.readCount()
		if err != nil {
			return nil, err
		}
		return d.refs.InternDecode(id, func() (any, error) {
			return d.decodeDefined(id)
		})
	default:
		return d.dispatch(k)
	}
}

// decodeDefined decodes the body of a KindDef, making the pending id
// claimable by the body's codec.
func (d *Decoder) decodeDefined(id uint64) (any, error) {
	prevID, prevHas, prevUsed := d.pending, d.hasPend, d.claimUsed
	d.pending, d.hasPend, d.claimUsed = id, true, false
	defer func() { d.pending, d.hasPend, d.claimUsed = prevID, prevHas, prevUsed }()

	k, err := d.r.readKind()
	if err != nil {
		return nil, err
	}
	return d.dispatch(k)
}

func (d *Decoder) dispatch(k Kind) (any, error) {
	c, err := d.reg.forKind(k)
	if err != nil {
		return nil, err
	}
	return c.Decode(d)
}

func (d *Decoder) broken(msg string) *domain.BrokenReference {
	b := &domain.BrokenReference{Path: d.Path(), Message: msg}
	d.problems.Report(domain.Problem{
		Severity: domain.SeverityError,
		Message:  msg,
		Path:     b.Path,
	})
	return b
}
