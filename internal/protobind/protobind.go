// Package protobind supplies an alternate descriptor.Source for resolver
// targets that are generated protobuf Go types: instead of scanning Go
// struct tags, field writes go through protoreflect.Message /
// protoregistry, which already know a proto.Message's field names and
// types authoritatively. This is the "reflection substitute" of spec.md §9
// specialized for generated protobuf structs — narrower than the teacher's
// internal/protoreg, which synthesizes descriptors for types that don't
// exist as compiled Go code yet (see DESIGN.md for why that half doesn't
// carry over).
package protobind

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/openbindings/graphresolve/internal/descriptor"
)

// Source implements descriptor.Source for any reflect.Type whose pointer
// implements proto.Message.
type Source struct{}

// Describe builds a descriptor.Descriptor for t from its protoreflect
// message descriptor, keyed by each field's JSON name so it lines up with
// the wire field names a resolved node carries (spec §6).
func (Source) Describe(t reflect.Type) (*descriptor.Descriptor, bool) {
	zero := reflect.New(t).Interface()
	msg, ok := zero.(proto.Message)
	if !ok {
		return nil, false
	}
	md := msg.ProtoReflect().Descriptor()
	fields := make(map[string]*descriptor.Field, md.Fields().Len())
	for i := 0; i < md.Fields().Len(); i++ {
		fd := md.Fields().Get(i)
		fields[fd.JSONName()] = &descriptor.Field{
			Name: fd.JSONName(),
			Type: goTypeOf(fd),
			Set:  setterFor(fd),
			Get:  getterFor(fd),
		}
	}
	return &descriptor.Descriptor{Type: t, Fields: fields}, true
}

func setterFor(fd protoreflect.FieldDescriptor) func(target, value any) error {
	return func(target any, value any) error {
		msg, ok := protoMessageOf(target)
		if !ok {
			return fmt.Errorf("protobind: target %T is not a proto.Message", target)
		}
		if value == nil {
			msg.Clear(fd)
			return nil
		}
		pv, err := toProtoValue(fd, value)
		if err != nil {
			return err
		}
		msg.Set(fd, pv)
		return nil
	}
}

func getterFor(fd protoreflect.FieldDescriptor) func(target any) (any, bool) {
	return func(target any) (any, bool) {
		msg, ok := protoMessageOf(target)
		if !ok {
			return nil, false
		}
		return fromProtoValue(fd, msg.Get(fd)), true
	}
}

func protoMessageOf(target any) (protoreflect.Message, bool) {
	m, ok := target.(proto.Message)
	if !ok {
		return nil, false
	}
	return m.ProtoReflect(), true
}

// goTypeOf reports a best-effort Go type for a scalar field, used only for
// diagnostic/coercion hints; message/enum fields report nil and are left to
// the protoreflect round trip.
func goTypeOf(fd protoreflect.FieldDescriptor) reflect.Type {
	switch fd.Kind() {
	case protoreflect.StringKind:
		return reflect.TypeOf("")
	case protoreflect.BoolKind:
		return reflect.TypeOf(false)
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return reflect.TypeOf(int32(0))
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return reflect.TypeOf(int64(0))
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return reflect.TypeOf(uint32(0))
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return reflect.TypeOf(uint64(0))
	case protoreflect.FloatKind:
		return reflect.TypeOf(float32(0))
	case protoreflect.DoubleKind:
		return reflect.TypeOf(float64(0))
	case protoreflect.BytesKind:
		return reflect.TypeOf([]byte(nil))
	default:
		return nil
	}
}

func toProtoValue(fd protoreflect.FieldDescriptor, value any) (protoreflect.Value, error) {
	switch fd.Kind() {
	case protoreflect.StringKind:
		s, err := asString(value)
		return protoreflect.ValueOfString(s), err
	case protoreflect.BoolKind:
		b, ok := value.(bool)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("protobind: field %s wants bool, got %T", fd.Name(), value)
		}
		return protoreflect.ValueOfBool(b), nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		i, err := asInt64(value)
		return protoreflect.ValueOfInt32(int32(i)), err
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		i, err := asInt64(value)
		return protoreflect.ValueOfInt64(i), err
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		i, err := asInt64(value)
		return protoreflect.ValueOfUint32(uint32(i)), err
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		i, err := asInt64(value)
		return protoreflect.ValueOfUint64(uint64(i)), err
	case protoreflect.FloatKind:
		f, err := asFloat64(value)
		return protoreflect.ValueOfFloat32(float32(f)), err
	case protoreflect.DoubleKind:
		f, err := asFloat64(value)
		return protoreflect.ValueOfFloat64(f), err
	default:
		return protoreflect.Value{}, fmt.Errorf("protobind: unsupported field kind %s for %s", fd.Kind(), fd.Name())
	}
}

func fromProtoValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.StringKind:
		return v.String()
	case protoreflect.BoolKind:
		return v.Bool()
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return int32(v.Int())
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return v.Int()
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return uint32(v.Uint())
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return v.Uint()
	case protoreflect.FloatKind:
		return float32(v.Float())
	case protoreflect.DoubleKind:
		return v.Float()
	default:
		return v.Interface()
	}
}

func asString(value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("protobind: want string, got %T", value)
	}
	return s, nil
}

func asInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("protobind: want integer, got %T", value)
	}
}

func asFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("protobind: want number, got %T", value)
	}
}
