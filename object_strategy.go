package resolver

import (
	"fmt"
	"reflect"

	"github.com/openbindings/graphresolve/internal/convert"
	"github.com/openbindings/graphresolve/internal/descriptor"
	"github.com/openbindings/graphresolve/internal/node"
	"github.com/openbindings/graphresolve/internal/typeresolve"
)

// objectStrategy builds typed Go instances via descriptor.For, the default
// mode (spec §4.5 "returningJavaObjects").
type objectStrategy struct {
	converter convert.Converter
}

func (objectStrategy) Name() string { return "object" }

func (s *objectStrategy) NewRecordTarget(n *node.Node, resolved typeresolve.Resolved) (any, error) {
	if resolved.Type == nil {
		return nil, fmt.Errorf("resolver: node %q has no resolved Go type", n.EffectiveType())
	}
	t := resolved.Type
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("resolver: resolved type %s is not a struct", t)
	}
	return reflect.New(t).Interface(), nil
}

func (s *objectStrategy) FieldType(resolved typeresolve.Resolved, name string) (reflect.Type, bool) {
	if resolved.Type == nil {
		return nil, false
	}
	d, err := descriptor.For(resolved.Type)
	if err != nil {
		return nil, false
	}
	f, ok := d.Fields[name]
	if !ok {
		return nil, false
	}
	return f.Type, true
}

func (s *objectStrategy) SetField(target any, name string, value any) error {
	d, err := descriptor.For(reflect.TypeOf(target))
	if err != nil {
		return err
	}
	f, ok := d.Fields[name]
	if !ok {
		return fmt.Errorf("resolver: field %q not found on %T", name, target)
	}
	if value != nil && f.Type != nil {
		vt := reflect.TypeOf(value)
		if !vt.AssignableTo(f.Type) && s.converter.CanConvert(value, f.Type) {
			if cv, cerr := s.converter.Convert(value, f.Type); cerr == nil {
				value = cv
			}
		}
	}
	return f.Set(target, value)
}
