package codec

import (
	"fmt"
	"reflect"
	"sort"

	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/zerr"
)

type boolCodec struct{}

func (boolCodec) WireKind() Kind { return KindBool }

func (boolCodec) Encode(e *Encoder, v any) error {
	e.w.writeBool(reflect.ValueOf(v).Bool())
	return nil
}

func (boolCodec) Decode(d *Decoder) (any, error) {
	return d.r.readBool()
}

// intCodec collapses every integer width to int64; a round trip normalizes
// integer properties to int64.
type intCodec struct{}

func (intCodec) WireKind() Kind { return KindInt }

func (intCodec) Encode(e *Encoder, v any) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		e.w.writeInt(int64(rv.Uint()))
	default:
		e.w.writeInt(rv.Int())
	}
	return nil
}

func (intCodec) Decode(d *Decoder) (any, error) {
	return d.r.readInt()
}

type floatCodec struct{}

func (floatCodec) WireKind() Kind { return KindFloat }

func (floatCodec) Encode(e *Encoder, v any) error {
	e.w.writeFloat(reflect.ValueOf(v).Float())
	return nil
}

func (floatCodec) Decode(d *Decoder) (any, error) {
	return d.r.readFloat()
}

type stringCodec struct{}

func (stringCodec) WireKind() Kind { return KindString }

func (stringCodec) Encode(e *Encoder, v any) error {
	e.w.writeString(reflect.ValueOf(v).String())
	return nil
}

func (stringCodec) Decode(d *Decoder) (any, error) {
	return d.r.readString()
}

// listCodec carries any slice or array; elements decode as []any.
type listCodec struct{}

func (listCodec) WireKind() Kind { return KindList }

func (listCodec) Encode(e *Encoder, v any) error {
	rv := reflect.ValueOf(v)
	e.w.writeCount(uint64(rv.Len()))
	for i := 0; i < rv.Len(); i++ {
		e.PushPath(fmt.Sprintf("[%d]", i))
		err := e.EncodeValue(rv.Index(i).Interface())
		e.PopPath()
		if err != nil {
			return err
		}
	}
	return nil
}

func (listCodec) Decode(d *Decoder) (any, error) {
	n, err := d.r.readCount()
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, n)
	for i := uint64(0); i < n; i++ {
		d.PushPath(fmt.Sprintf("[%d]", i))
		v, err := d.DecodeValue()
		d.PopPath()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// mapCodec carries string-keyed maps, written in sorted key order so the
// payload stays byte-identical across runs.
type mapCodec struct{}

func (mapCodec) WireKind() Kind { return KindMap }

func (mapCodec) Encode(e *Encoder, v any) error {
	rv := reflect.ValueOf(v)
	keys := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key().String())
	}
	sort.Strings(keys)
	e.w.writeCount(uint64(len(keys)))
	for _, k := range keys {
		e.w.writeString(k)
		e.PushPath(k)
		err := e.EncodeValue(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
		e.PopPath()
		if err != nil {
			return err
		}
	}
	return nil
}

func (mapCodec) Decode(d *Decoder) (any, error) {
	n, err := d.r.readCount()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, n)
	for i := uint64(0); i < n; i++ {
		k, err := d.r.readString()
		if err != nil {
			return nil, err
		}
		d.PushPath(k)
		v, err := d.DecodeValue()
		d.PopPath()
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// unitCodec carries *domain.WorkUnit nodes. Units claim their reference id
// before decoding contents, so dependency cycles resolve to one instance.
type unitCodec struct{}

func (unitCodec) WireKind() Kind { return KindUnit }

func (unitCodec) Encode(e *Encoder, v any) error {
	u := v.(*domain.WorkUnit)
	e.PushPath(u.Name.String())
	defer e.PopPath()

	e.w.writeString(u.Name.String())

	keys := make([]string, 0, len(u.Properties))
	for k := range u.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	e.w.writeCount(uint64(len(keys)))
	for _, k := range keys {
		e.w.writeString(k)
		e.PushPath(k)
		err := e.EncodeValue(u.Properties[k])
		e.PopPath()
		if err != nil {
			return err
		}
	}

	e.w.writeCount(uint64(len(u.DependsOn)))
	for _, dep := range u.DependsOn {
		if err := e.EncodeValue(dep); err != nil {
			return err
		}
	}
	return nil
}

func (unitCodec) Decode(d *Decoder) (any, error) {
	u := &domain.WorkUnit{}
	d.ClaimPending(u)

	name, err := d.r.readString()
	if err != nil {
		return nil, err
	}
	u.Name = domain.NewInternedString(name)
	d.PushPath(name)
	defer d.PopPath()

	propCount, err := d.r.readCount()
	if err != nil {
		return nil, err
	}
	if propCount > 0 {
		u.Properties = make(map[string]any, propCount)
	}
	for i := uint64(0); i < propCount; i++ {
		k, err := d.r.readString()
		if err != nil {
			return nil, err
		}
		d.PushPath(k)
		v, err := d.DecodeValue()
		d.PopPath()
		if err != nil {
			return nil, err
		}
		u.Properties[k] = v
	}

	depCount, err := d.r.readCount()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < depCount; i++ {
		v, err := d.DecodeValue()
		if err != nil {
			return nil, err
		}
		switch dep := v.(type) {
		case *domain.WorkUnit:
			u.DependsOn = append(u.DependsOn, dep)
		case *domain.BrokenReference:
			u.DependsOn = append(u.DependsOn, &domain.WorkUnit{Broken: dep})
		default:
			u.DependsOn = append(u.DependsOn, &domain.WorkUnit{Broken: d.broken("dependency decoded to unexpected value")})
		}
	}
	return u, nil
}

// providerCodec persists a lazily-computed value as its computed result.
// A computation failure tombstones the node instead of aborting the walk.
type providerCodec struct{}

func (providerCodec) WireKind() Kind { return KindProvider }

func (providerCodec) Encode(e *Encoder, v any) error {
	p := v.(*domain.Provider)
	val, err := p.Get()
	if err != nil {
		return zerr.Wrap(err, "provider computation failed")
	}
	return e.EncodeValue(val)
}

func (providerCodec) Decode(d *Decoder) (any, error) {
	v, err := d.DecodeValue()
	if err != nil {
		return nil, err
	}
	return domain.FixedProvider(v), nil
}

// fileCollectionCodec carries anything file-collection-like as its ordered
// file list; the collection's own implementation is not persisted.
type fileCollectionCodec struct{}

func (fileCollectionCodec) WireKind() Kind { return KindFileCollection }

func (fileCollectionCodec) Encode(e *Encoder, v any) error {
	files := v.(domain.FileCollectionLike).Files()
	e.w.writeCount(uint64(len(files)))
	for _, f := range files {
		e.w.writeString(f)
	}
	return nil
}

func (fileCollectionCodec) Decode(d *Decoder) (any, error) {
	n, err := d.r.readCount()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		f, err := d.r.readString()
		if err != nil {
			return nil, err
		}
		paths = append(paths, f)
	}
	return &domain.FileList{Paths: paths}, nil
}

// classpathCodec carries the derived classpath identity of dynamically loaded
// code: the ordered artifact list, never the loaded code itself.
type classpathCodec struct{}

func (classpathCodec) WireKind() Kind { return KindClasspath }

func (classpathCodec) Encode(e *Encoder, v any) error {
	cp := v.(*domain.Classpath)
	e.w.writeString(cp.ID)
	e.w.writeCount(uint64(len(cp.Artifacts)))
	for _, a := range cp.Artifacts {
		e.w.writeString(a.File)
		e.w.writeString(a.OriginalFileName)
		e.w.writeString(a.ComponentID)
	}
	return nil
}

func (classpathCodec) Decode(d *Decoder) (any, error) {
	cp := &domain.Classpath{}
	d.ClaimPending(cp)
	id, err := d.r.readString()
	if err != nil {
		return nil, err
	}
	cp.ID = id
	n, err := d.r.readCount()
	if err != nil {
		return nil, err
	}
	cp.Artifacts = make([]domain.ClasspathArtifact, 0, n)
	for i := uint64(0); i < n; i++ {
		var a domain.ClasspathArtifact
		if a.File, err = d.r.readString(); err != nil {
			return nil, err
		}
		if a.OriginalFileName, err = d.r.readString(); err != nil {
			return nil, err
		}
		if a.ComponentID, err = d.r.readString(); err != nil {
			return nil, err
		}
		cp.Artifacts = append(cp.Artifacts, a)
	}
	return cp, nil
}

// tombstoneCodec decodes the placeholder left where a value could not be
// encoded, re-raising the problem so a restored build can still report it.
type tombstoneCodec struct{}

func (tombstoneCodec) WireKind() Kind { return KindTombstone }

func (tombstoneCodec) Encode(e *Encoder, v any) error {
	b := v.(*domain.BrokenReference)
	e.w.writeString(b.Path)
	e.w.writeString(b.Message)
	return nil
}

func (tombstoneCodec) Decode(d *Decoder) (any, error) {
	path, err := d.r.readString()
	if err != nil {
		return nil, err
	}
	msg, err := d.r.readString()
	if err != nil {
		return nil, err
	}
	d.problems.Report(domain.Problem{
		Severity: domain.SeverityError,
		Message:  msg,
		Path:     path,
	})
	return &domain.BrokenReference{Path: path, Message: msg}, nil
}

// unsupportedCodec is the total-resolution backstop: encoding records a
// problem and leaves a tombstone instead of raising a fatal fault.
type unsupportedCodec struct{}

func (unsupportedCodec) WireKind() Kind { return KindTombstone }

func (unsupportedCodec) Encode(e *Encoder, v any) error {
	msg := "unsupported type: " + reflect.TypeOf(v).String()
	path := e.Path()
	e.problems.Report(domain.Problem{
		Severity: domain.SeverityError,
		Message:  msg,
		Path:     path,
	})
	e.w.writeString(path)
	e.w.writeString(msg)
	return nil
}

func (unsupportedCodec) Decode(d *Decoder) (any, error) {
	// Unsupported values are written as tombstones; decode goes through
	// tombstoneCodec.
	return nil, zerr.Wrap(domain.ErrUnknownKind, "unsupported codec cannot decode")
}
