package codec

import (
	"reflect"

	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/zerr"
)

// structuralCodec is the reflective fallback for otherwise-unknown value
// classes. Encoding enumerates exported fields; decoding requires the type to
// have been registered via RegisterStructType, and degrades to a broken
// reference when it was not.
type structuralCodec struct{}

func (structuralCodec) WireKind() Kind { return KindStruct }

func (structuralCodec) Encode(e *Encoder, v any) error {
	rv := reflect.ValueOf(v)
	isPtr := rv.Kind() == reflect.Pointer
	if isPtr {
		rv = rv.Elem()
	}
	t := rv.Type()

	e.w.writeString(structTypeName(t))
	e.w.writeBool(isPtr)
	fields := exportedFields(t)
	e.w.writeCount(uint64(len(fields)))
	for _, f := range fields {
		e.w.writeString(f.Name)
		e.PushPath(f.Name)
		err := e.EncodeValue(rv.FieldByIndex(f.Index).Interface())
		e.PopPath()
		if err != nil {
			return err
		}
	}
	return nil
}

func (structuralCodec) Decode(d *Decoder) (any, error) {
	name, err := d.r.readString()
	if err != nil {
		return nil, err
	}
	isPtr, err := d.r.readBool()
	if err != nil {
		return nil, err
	}
	n, err := d.r.readCount()
	if err != nil {
		return nil, err
	}

	t, known := d.reg.structType(name)
	if !known {
		// The field payloads still have to be consumed to keep the stream
		// positional for everything after this node.
		for i := uint64(0); i < n; i++ {
			if _, err := d.r.readString(); err != nil {
				return nil, err
			}
			if _, err := d.DecodeValue(); err != nil {
				return nil, err
			}
		}
		msg := "struct type not registered: " + name
		d.problems.Report(domain.Problem{
			Severity: domain.SeverityError,
			Message:  msg,
			Path:     d.Path(),
			Cause:    zerr.With(zerr.Wrap(domain.ErrUnknownStructType, "cannot reconstruct value"), "type", name),
		})
		return &domain.BrokenReference{Path: d.Path(), Message: msg}, nil
	}

	pv := reflect.New(t)
	if isPtr {
		d.ClaimPending(pv.Interface())
	}
	elem := pv.Elem()
	for i := uint64(0); i < n; i++ {
		fname, err := d.r.readString()
		if err != nil {
			return nil, err
		}
		d.PushPath(fname)
		val, err := d.DecodeValue()
		d.PopPath()
		if err != nil {
			return nil, err
		}
		assignField(d, elem, fname, val)
	}
	if isPtr {
		return pv.Interface(), nil
	}
	return elem.Interface(), nil
}

// assignField sets a decoded value on a struct field, converting between the
// normalized wire representation and the field's declared type where the
// conversion is lossless enough. A field that cannot take the value is left
// zero and reported.
func assignField(d *Decoder, structVal reflect.Value, name string, val any) {
	f := structVal.FieldByName(name)
	if !f.IsValid() || !f.CanSet() {
		d.problems.Report(domain.Problem{
			Severity: domain.SeverityWarn,
			Message:  "decoded field has no settable counterpart: " + name,
			Path:     d.Path(),
		})
		return
	}
	if val == nil {
		return
	}
	rv := reflect.ValueOf(val)
	switch {
	case rv.Type().AssignableTo(f.Type()):
		f.Set(rv)
	case rv.Type().ConvertibleTo(f.Type()) && convertSafely(rv.Type(), f.Type()):
		f.Set(rv.Convert(f.Type()))
	default:
		d.problems.Report(domain.Problem{
			Severity: domain.SeverityWarn,
			Message:  "decoded value does not fit field " + name,
			Path:     d.Path(),
		})
	}
}

// convertSafely limits reflect conversions to numeric and string widenings;
// it notably rules out string<->int conversions reflect would allow.
func convertSafely(from, to reflect.Type) bool {
	fk, tk := from.Kind(), to.Kind()
	numeric := func(k reflect.Kind) bool {
		return k >= reflect.Int && k <= reflect.Float64
	}
	if numeric(fk) && numeric(tk) {
		return true
	}
	return fk == reflect.String && tk == reflect.String
}
