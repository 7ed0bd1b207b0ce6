package resolver

import (
	"reflect"

	"github.com/openbindings/graphresolve/internal/node"
	"github.com/openbindings/graphresolve/internal/typeresolve"
)

// newArrayShell allocates the target for an array/collection-shape node
// (spec §4.1 array shape): a plain Go slice for a random-access declared
// type (or, with no declared type, []any), or a Go map for a declared Set
// type — Go maps are real hash tables, so a Set target still needs the
// rehash pass once every element's identity is stable (spec §4.6).
func (r *Resolver) newArrayShell(n *node.Node, resolved typeresolve.Resolved) any {
	if resolved.Type != nil && resolved.Type.Kind() == reflect.Map {
		return reflect.MakeMap(resolved.Type).Interface()
	}
	sliceType := anySliceType
	if resolved.Type != nil && resolved.Type.Kind() == reflect.Slice {
		sliceType = resolved.Type
	}
	return reflect.MakeSlice(sliceType, len(n.Items), len(n.Items)).Interface()
}

// newMapShellTarget allocates the real target map immediately, before any
// key/item is resolved (spec §4.6): since a Go map is a reference type, any
// field that stores a reference to this node's target while traversal is
// still underway keeps a handle on the exact same map the rehash pass later
// clears and refills in place.
func newMapShellTarget(resolved typeresolve.Resolved) any {
	mapType := anyMapType
	if resolved.Type != nil && resolved.Type.Kind() == reflect.Map {
		mapType = resolved.Type
	}
	return reflect.MakeMap(mapType).Interface()
}

// newEnumSetShell allocates the target for an enum-set node (spec §4.1 step
// 2, supplemented as a first-class rehash-eligible container): the enum's
// declared SetType if one is registered, else a plain map keyed by the enum
// value.
func newEnumSetShell(resolved typeresolve.Resolved) any {
	t := resolved.Enum.SetType
	if t == nil || t.Kind() != reflect.Map {
		t = anySetType
	}
	return reflect.MakeMap(t).Interface()
}

func sequenceElemType(resolved typeresolve.Resolved) reflect.Type {
	if resolved.Type != nil && resolved.Type.Kind() == reflect.Slice {
		return resolved.Type.Elem()
	}
	return nil
}

var (
	anySliceType = reflect.TypeOf([]any{})
	anyMapType   = reflect.TypeOf(map[any]any{})
	anySetType   = reflect.TypeOf(map[any]struct{}{})
)
