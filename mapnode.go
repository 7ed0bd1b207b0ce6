package resolver

import (
	"reflect"

	"github.com/openbindings/graphresolve/internal/diag"
	"github.com/openbindings/graphresolve/internal/node"
	"github.com/openbindings/graphresolve/internal/typeresolve"
)

// populateMapShape fills two parallel scratch slices (keys, values) by
// index — Keys[i] pairs with Items[i] — and registers a MapRehashEntry that
// rebuilds the real target map from them once every key's identity (and
// thus hash code) is stable (spec §4.6). The target map itself was already
// allocated and assigned to n.Target during instantiate, so any field that
// captured a reference to it while traversal was still underway keeps
// pointing at the exact map the rehash pass clears and refills in place.
func (r *Resolver) populateMapShape(n *node.Node, resolved typeresolve.Resolved) error {
	if len(n.Keys) != len(n.Items) {
		return diag.ResolveError{diag.CorruptNode("map node has mismatched @keys/@items length")}
	}
	target := reflect.ValueOf(n.Target)
	keyType := target.Type().Key()
	valType := target.Type().Elem()

	keys := make([]any, len(n.Keys))
	values := make([]any, len(n.Items))
	for i, k := range n.Keys {
		idx := i
		if err := r.placeChild(k, keyType, func(v any) error { keys[idx] = v; return nil }, node.PatchIndexed); err != nil {
			return err
		}
	}
	for i, it := range n.Items {
		idx := i
		if err := r.placeChild(it, valType, func(v any) error { values[idx] = v; return nil }, node.PatchIndexed); err != nil {
			return err
		}
	}

	n.Finished = true
	r.rehash = append(r.rehash, &node.MapRehashEntry{
		Node: n,
		Rehash: func() error {
			return rebuildMap(target, keyType, valType, keys, values)
		},
	})
	return nil
}

func toElemValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	vv := reflect.ValueOf(v)
	if vv.Type().AssignableTo(t) {
		return vv, nil
	}
	if vv.Type().ConvertibleTo(t) {
		return vv.Convert(t), nil
	}
	return reflect.Value{}, errConvertElem(vv.Type(), t)
}

// rebuildMap clears target in place and refills it from keys/values — since
// a Go map is a reference type, every prior holder of target observes the
// rebuilt contents (spec §4.6).
func rebuildMap(target reflect.Value, keyType, valType reflect.Type, keys, values []any) error {
	target.Clear()
	for i := range keys {
		kv, err := toElemValue(keys[i], keyType)
		if err != nil {
			return err
		}
		vv, err := toElemValue(values[i], valType)
		if err != nil {
			return err
		}
		target.SetMapIndex(kv, vv)
	}
	return nil
}

// rebuildSet is rebuildMap specialized for a Set represented as
// map[ElemType]struct{}.
func rebuildSet(target reflect.Value, elemType reflect.Type, items []any) error {
	target.Clear()
	sentinel := reflect.ValueOf(struct{}{})
	for _, v := range items {
		kv, err := toElemValue(v, elemType)
		if err != nil {
			return err
		}
		target.SetMapIndex(kv, sentinel)
	}
	return nil
}
