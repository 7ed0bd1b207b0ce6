package resolver

import (
	"reflect"

	"github.com/openbindings/graphresolve/internal/node"
)

// placeChild is the single shape-agnostic primitive array, map, and record
// population share for writing one child node's value into a slot (array
// index, map scratch position, or struct field). set is called once with the
// final value, either immediately (scalar, already-finished node, or a
// backward @ref) or later from the patch pass (a forward @ref) — see
// node.UnresolvedReference. kind records *how* a deferred value must be
// reapplied at patch time (spec §4.2).
//
// For an inline (non-@ref) object/array/map/record child, placeChild
// eagerly instantiates — but does not populate — its shell before storing
// it and pushing the child for later population. This is what lets two
// sibling nodes that reference each other resolve to the same pointer
// without any deferred patch at all (spec §8 property 2).
func (r *Resolver) placeChild(child *node.Node, hint reflect.Type, set func(any) error, kind node.PatchKind) error {
	if child == nil {
		return set(nil)
	}

	switch child.Kind() {
	case node.KindRef:
		return r.placeRef(child, hint, set, kind)
	case node.KindScalar:
		v, err := r.coerceScalar(child.Value, hint)
		if err != nil {
			v = child.Value
		}
		return set(v)
	default:
		if child.HintType == "" {
			child.HintType = typeName(hint)
		}
		if err := r.instantiate(child); err != nil {
			return err
		}
		if err := set(child.Target); err != nil {
			return err
		}
		if !child.Finished && !r.visited[child] {
			r.push(child)
		}
		return nil
	}
}

// placeRef implements the @ref half of spec §4.1's array/record bullets:
// "target known" means the referenced node already has a Target (it has
// been instantiated, whether finished or not) — in which case the pointer
// is shared directly. Otherwise the write is deferred to the patch pass
// (spec §4.2). An Appended-kind slot reserves no placeholder: appending a
// zero value now and the real value later would duplicate the element.
func (r *Resolver) placeRef(child *node.Node, hint reflect.Type, set func(any) error, kind node.PatchKind) error {
	id := *child.RefID
	target, ok := r.refs.Resolve(id)
	if ok && target.Target != nil {
		return set(target.Target)
	}
	if kind != node.PatchAppended {
		if err := set(zeroValue(hint)); err != nil {
			return err
		}
	}
	r.unresolved = append(r.unresolved, &node.UnresolvedReference{Kind: kind, RefID: id, Apply: set})
	return nil
}
