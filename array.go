package resolver

import (
	"reflect"

	"github.com/openbindings/graphresolve/internal/diag"
	"github.com/openbindings/graphresolve/internal/node"
	"github.com/openbindings/graphresolve/internal/typeresolve"
)

// populateArrayLike dispatches an Items-only (no Keys) node to the sequence,
// hash-set, or enum-set population routine, keyed off what instantiate
// already allocated for it (spec §4.1 array shape, supplemented with
// first-class enum-set handling).
func (r *Resolver) populateArrayLike(n *node.Node, resolved typeresolve.Resolved) error {
	if resolved.Enum != nil && resolved.IsEnumSet {
		return r.populateEnumSet(n, resolved)
	}
	target := reflect.ValueOf(n.Target)
	if target.Kind() == reflect.Map {
		return r.populateHashSet(n, resolved, target)
	}
	return r.populateSequence(n, resolved, target)
}

// populateSequence fills a random-access slice target in place, by index —
// random-access is always available on a Go slice, so forward @refs patch
// directly into the backing array via a closure over (target, index)
// (spec §4.1 array shape, §4.2).
func (r *Resolver) populateSequence(n *node.Node, resolved typeresolve.Resolved, target reflect.Value) error {
	elemType := sequenceElemType(resolved)
	for i, item := range n.Items {
		idx := i
		err := r.placeChild(item, elemType, func(v any) error {
			if err := setIndex(target, idx, v); err != nil {
				return diag.ResolveError{diag.ArrayElementMismatch(idx, typeName(elemType), err)}
			}
			return nil
		}, node.PatchIndexed)
		if err != nil {
			return err
		}
	}
	n.Finished = true
	return nil
}

// populateHashSet fills a scratch slice (order doesn't matter for a set) and
// registers a MapRehashEntry that builds the real target map from it once
// every element's identity is stable (spec §4.6). Forward @refs use
// PatchAppended: no placeholder is reserved, so patching simply appends once
// the real value is known.
func (r *Resolver) populateHashSet(n *node.Node, resolved typeresolve.Resolved, target reflect.Value) error {
	if elem := target.Type().Elem(); elem.Kind() != reflect.Struct || elem.NumField() != 0 {
		return diag.ResolveError{diag.InstantiationFailure(resolved.TypeName, errNotASetType(target.Type()))}
	}
	elemType := target.Type().Key()
	scratch := &valueScratch{}
	for _, item := range n.Items {
		err := r.placeChild(item, elemType, func(v any) error {
			scratch.items = append(scratch.items, v)
			return nil
		}, node.PatchAppended)
		if err != nil {
			return err
		}
	}
	n.Finished = true
	r.rehash = append(r.rehash, &node.MapRehashEntry{
		Node: n,
		Rehash: func() error {
			return rebuildSet(target, elemType, scratch.items)
		},
	})
	return nil
}

// populateEnumSet parses each wire item name through the enum descriptor and
// defers to the same scratch+rehash machinery as a regular hash set, so an
// enum-set forward-referencing one of its own not-yet-parsed siblings is
// unnecessary (enum constants have no identity to wait on) but still
// benefits from a uniform rehash pass.
func (r *Resolver) populateEnumSet(n *node.Node, resolved typeresolve.Resolved) error {
	target := reflect.ValueOf(n.Target)
	scratch := &valueScratch{}
	for _, item := range n.Items {
		name, _ := item.Value.(string)
		v, ok := resolved.Enum.Parse(name)
		if !ok {
			return diag.ResolveError{diag.InstantiationFailure(resolved.TypeName, errUnknownEnumConstant(name))}
		}
		scratch.items = append(scratch.items, v)
	}
	n.Finished = true
	elemType := target.Type().Key()
	r.rehash = append(r.rehash, &node.MapRehashEntry{
		Node: n,
		Rehash: func() error {
			return rebuildSet(target, elemType, scratch.items)
		},
	})
	return nil
}

type valueScratch struct {
	items []any
}

func setIndex(target reflect.Value, i int, v any) error {
	return assignInto(target.Index(i), v)
}

func assignInto(slot reflect.Value, v any) error {
	if v == nil {
		slot.Set(reflect.Zero(slot.Type()))
		return nil
	}
	vv := reflect.ValueOf(v)
	if vv.Type().AssignableTo(slot.Type()) {
		slot.Set(vv)
		return nil
	}
	if vv.Type().ConvertibleTo(slot.Type()) {
		slot.Set(vv.Convert(slot.Type()))
		return nil
	}
	return errAssign(vv.Type(), slot.Type())
}
