package codec

import (
	"reflect"
	"sort"

	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/zerr"
)

// Codec is the encode/decode strategy for one class of runtime values.
// Codecs are stateless and reentrant: the same codec may run concurrently
// from independent graph regions.
type Codec interface {
	// WireKind is the tag the codec writes, and the tag decode dispatches on.
	WireKind() Kind
	// Encode writes v to the encoder's stream. The surrounding dispatch has
	// already written the kind tag and handled identity.
	Encode(e *Encoder, v any) error
	// Decode reads one value. The kind tag has already been consumed.
	Decode(d *Decoder) (any, error)
}

// Matcher reports whether a codec handles the given type by declared
// polymorphic capability rather than exact identity.
type Matcher func(t reflect.Type) bool

type matcherEntry struct {
	name  string
	match Matcher
	codec Codec
}

// Registry resolves a runtime type to the codec responsible for it.
// Resolution is total and deterministic: exact type, then declared
// polymorphic capability in registration order, then the structural fallback
// for value classes, then the unsupported codec.
type Registry struct {
	exact       map[reflect.Type]Codec
	matchers    []matcherEntry
	structTypes map[string]reflect.Type
	byKind      map[Kind]Codec
	structural  Codec
	unsupported Codec
}

// NewRegistry creates a registry with the built-in codec kinds installed.
func NewRegistry() *Registry {
	r := &Registry{
		exact:       make(map[reflect.Type]Codec),
		structTypes: make(map[string]reflect.Type),
		byKind:      make(map[Kind]Codec),
	}
	r.structural = structuralCodec{}
	r.unsupported = unsupportedCodec{}

	mustRegister := func(t reflect.Type, c Codec) {
		if err := r.Register(t, c); err != nil {
			panic(err) // built-ins are registered once, at construction
		}
	}

	mustRegister(reflect.TypeOf(false), boolCodec{})
	mustRegister(reflect.TypeOf(""), stringCodec{})
	for _, t := range []any{int(0), int8(0), int16(0), int32(0), int64(0), uint(0), uint8(0), uint16(0), uint32(0), uint64(0)} {
		mustRegister(reflect.TypeOf(t), intCodec{})
	}
	mustRegister(reflect.TypeOf(float64(0)), floatCodec{})
	mustRegister(reflect.TypeOf(float32(0)), floatCodec{})
	mustRegister(reflect.TypeOf(&domain.WorkUnit{}), unitCodec{})
	mustRegister(reflect.TypeOf(&domain.Provider{}), providerCodec{})
	mustRegister(reflect.TypeOf(&domain.Classpath{}), classpathCodec{})
	// Re-encoding a restored graph writes placeholders back as tombstones.
	mustRegister(reflect.TypeOf(&domain.BrokenReference{}), tombstoneCodec{})

	r.RegisterMatcher("file-collection-like", func(t reflect.Type) bool {
		return t.Implements(reflect.TypeOf((*domain.FileCollectionLike)(nil)).Elem())
	}, fileCollectionCodec{})
	r.RegisterMatcher("list", func(t reflect.Type) bool {
		return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
	}, listCodec{})
	r.RegisterMatcher("string-keyed-map", func(t reflect.Type) bool {
		return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
	}, mapCodec{})

	for _, c := range []Codec{tombstoneCodec{}, listCodec{}, mapCodec{}, fileCollectionCodec{}, r.structural} {
		r.byKind[c.WireKind()] = c
	}
	return r
}

// Register installs a codec for an exact type. Registering two codecs for the
// same type is a configuration error, not a runtime race.
func (r *Registry) Register(t reflect.Type, c Codec) error {
	if _, dup := r.exact[t]; dup {
		return zerr.With(zerr.Wrap(domain.ErrDuplicateCodec, "failed to register codec"), "type", t.String())
	}
	r.exact[t] = c
	r.byKind[c.WireKind()] = c
	return nil
}

// RegisterMatcher installs a codec matched by polymorphic capability.
// Matchers are consulted in registration order, after exact matches.
func (r *Registry) RegisterMatcher(name string, m Matcher, c Codec) {
	r.matchers = append(r.matchers, matcherEntry{name: name, match: m, codec: c})
	r.byKind[c.WireKind()] = c
}

// RegisterStructType makes a value class decodable by the structural
// fallback. Encoding never needs this; decode does, because a struct payload
// names its type and the name must resolve to something instantiable.
func (r *Registry) RegisterStructType(t reflect.Type) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.structTypes[structTypeName(t)] = t
}

// Resolve returns the codec for the given type. Resolution is total: a type
// nothing else claims resolves to the structural fallback when it is a value
// class, and to the unsupported codec otherwise.
func (r *Registry) Resolve(t reflect.Type) Codec {
	if c, ok := r.exact[t]; ok {
		return c
	}
	for _, m := range r.matchers {
		if m.match(t) {
			return m.codec
		}
	}
	if isValueClass(t) {
		return r.structural
	}
	return r.unsupported
}

// forKind returns the codec that decodes the given wire kind.
func (r *Registry) forKind(k Kind) (Codec, error) {
	c, ok := r.byKind[k]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownKind, "no codec decodes this kind"), "kind", int(k))
	}
	return c, nil
}

func (r *Registry) structType(name string) (reflect.Type, bool) {
	t, ok := r.structTypes[name]
	return t, ok
}

// isValueClass reports whether a type is a plain data carrier the structural
// fallback may enumerate: a struct, or pointer to one, with only exported
// fields participating.
func isValueClass(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func structTypeName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// exportedFields returns the exported field indexes of a struct type in a
// stable order (declaration order is stable in Go; sorting by name guards
// against field reordering changing the payload between writer versions).
func exportedFields(t reflect.Type) []reflect.StructField {
	fields := make([]reflect.StructField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() {
			fields = append(fields, f)
		}
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}
