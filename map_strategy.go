package resolver

import (
	"fmt"
	"reflect"

	"github.com/openbindings/graphresolve/internal/convert"
	"github.com/openbindings/graphresolve/internal/descriptor"
	"github.com/openbindings/graphresolve/internal/node"
	"github.com/openbindings/graphresolve/internal/typeresolve"
)

// JSONObject is the generic object-shape target ModeJSONObjects produces: an
// insertion-ordered string-keyed map, so a round trip back to JSON reproduces
// the source field order (spec §4.5).
type JSONObject struct {
	order  []string
	values map[string]any
}

// NewJSONObject returns an empty, ready-to-use JSONObject.
func NewJSONObject() *JSONObject {
	return &JSONObject{values: make(map[string]any)}
}

// Set inserts or overwrites the value at name, tracking first-seen order.
func (o *JSONObject) Set(name string, value any) {
	if _, exists := o.values[name]; !exists {
		o.order = append(o.order, name)
	}
	o.values[name] = value
}

// Get returns the value at name, if any.
func (o *JSONObject) Get(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Keys returns field names in first-seen order.
func (o *JSONObject) Keys() []string { return o.order }

// mapStrategy keeps every object-shape node as a generic *JSONObject, but
// still coerces a scalar leaf whose key names a declared field on a known
// @type, so typed numerics survive the round trip (spec §4.5).
type mapStrategy struct {
	converter convert.Converter
}

func (mapStrategy) Name() string { return "map" }

func (mapStrategy) NewRecordTarget(n *node.Node, resolved typeresolve.Resolved) (any, error) {
	return NewJSONObject(), nil
}

func (s *mapStrategy) FieldType(resolved typeresolve.Resolved, name string) (reflect.Type, bool) {
	if resolved.Type == nil {
		return nil, true
	}
	d, err := descriptor.For(resolved.Type)
	if err != nil {
		return nil, true
	}
	if f, ok := d.Fields[name]; ok {
		return f.Type, true
	}
	return nil, true
}

func (s *mapStrategy) SetField(target any, name string, value any) error {
	obj, ok := target.(*JSONObject)
	if !ok {
		return fmt.Errorf("resolver: map strategy target is %T, not *JSONObject", target)
	}
	obj.Set(name, value)
	return nil
}
