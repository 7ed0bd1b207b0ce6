package resolver

import (
	"fmt"
	"reflect"
	"time"

	"github.com/openbindings/graphresolve/internal/diag"
	"github.com/openbindings/graphresolve/internal/node"
	"github.com/openbindings/graphresolve/internal/typeresolve"
)

// instantiate implements spec §4.1's instantiation order for n, allocating
// (but never populating children of) its target. Idempotent: a node that
// already has a target is left untouched, so placeChild may call this
// eagerly to obtain a stable shell reference before the node's own field
// walk runs (spec §8 property 2: cycles resolve through shared identity).
func (r *Resolver) instantiate(n *node.Node) error {
	if n.Target != nil {
		return nil
	}

	resolved, err := r.typeResolver.Resolve(n)
	if err != nil {
		return diag.ResolveError{diag.InstantiationFailure(n.EffectiveType(), err)}
	}
	r.resolvedCache[n] = resolved

	if resolved.Enum != nil {
		return r.instantiateEnum(n, resolved)
	}

	switch n.Kind() {
	case node.KindArray:
		n.Target = r.newArrayShell(n, resolved)
		return nil
	case node.KindMap:
		n.Target = newMapShellTarget(resolved)
		return nil
	case node.KindRecord:
		return r.instantiateRecord(n, resolved)
	default:
		v, err := r.coerceScalar(n.Value, resolved.Type)
		if err != nil {
			return diag.ResolveError{diag.ArrayElementMismatch(-1, typeName(resolved.Type), err)}
		}
		n.Target = v
		n.Finished = true
		return nil
	}
}

// instantiateEnum implements spec §4.1 step 2: a node whose resolved type is
// an enum either carries @items (enum-set: shell only, items parsed during
// population) or is a single constant (fully resolved here). The constant's
// name arrives either as the node's own scalar value (the common bare-string
// wire form) or, when an explicit @type accompanies it, boxed in a lone
// "value" field — the same two shapes tryConvertRecord probes for scalars.
func (r *Resolver) instantiateEnum(n *node.Node, resolved typeresolve.Resolved) error {
	if resolved.IsEnumSet {
		n.Target = newEnumSetShell(resolved)
		return nil
	}
	raw, _ := scalarPayload(n)
	name, _ := raw.(string)
	v, ok := resolved.Enum.Parse(name)
	if !ok {
		return diag.ResolveError{diag.InstantiationFailure(resolved.TypeName, fmt.Errorf("unknown enum constant %q", name))}
	}
	n.Target = v
	n.Finished = true
	return nil
}

// instantiateRecord implements spec §4.1 steps 3-6: factory, then scalar
// conversion, then the strategy's default allocation.
func (r *Resolver) instantiateRecord(n *node.Node, resolved typeresolve.Resolved) error {
	if resolved.Type != nil {
		if f, ok := r.opts.Factories.For(resolved.Type); ok {
			target, err := f.Instantiate(resolved.Type, n, r.resolveChildForFactory)
			if err != nil {
				return diag.ResolveError{diag.InstantiationFailure(resolved.TypeName, err)}
			}
			n.Target = target
			if f.ObjectFinal {
				n.Finished = true
			}
			return nil
		}
	}

	converted, err := r.tryConvertRecord(n, resolved)
	if err != nil {
		return err
	}
	if converted {
		return nil
	}

	target, err := r.strategy.NewRecordTarget(n, resolved)
	if err != nil {
		return diag.ResolveError{diag.InstantiationFailure(resolved.TypeName, err)}
	}
	n.Target = target
	return nil
}

// tryConvertRecord implements spec §4.1 step 4: when the declared target is
// scalar-like and the node carries (or wraps, via a lone "value" field) a
// scalar payload, attempt the external Converter before falling back to
// default struct allocation. A failed Convert after a true CanConvert probe
// is a diagnostic event, not a fault (spec §9 open question 1) — the
// resolver simply falls through to the next instantiation attempt.
func (r *Resolver) tryConvertRecord(n *node.Node, resolved typeresolve.Resolved) (bool, error) {
	if resolved.Type == nil || !isScalarLikeType(resolved.Type) {
		return false, nil
	}
	raw, ok := scalarPayload(n)
	if !ok {
		return false, nil
	}
	if !r.opts.Converter.CanConvert(raw, resolved.Type) {
		return false, nil
	}
	v, err := r.opts.Converter.Convert(raw, resolved.Type)
	if err != nil {
		r.publishScalarProbeFailed(resolved.TypeName, err)
		return false, nil
	}
	n.Target = v
	n.Finished = true
	return true, nil
}

func scalarPayload(n *node.Node) (any, bool) {
	if n.Value != nil {
		return n.Value, true
	}
	if n.Fields != nil && n.Fields.Len() == 1 {
		if child, ok := n.Fields.Get("value"); ok && child != nil && child.Kind() == node.KindScalar {
			return child.Value, true
		}
	}
	return nil, false
}

func isScalarLikeType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return t == timeType
}

// coerceScalar converts raw toward hint using the configured Converter,
// falling back to a plain reflect conversion, and finally leaving raw
// untouched so the caller's slot-specific setter can raise the precise fault
// (ArrayElementMismatch / FieldAccessFailure) instead of this shared helper
// guessing which one applies.
func (r *Resolver) coerceScalar(raw any, hint reflect.Type) (any, error) {
	if hint == nil || raw == nil {
		return raw, nil
	}
	rt := reflect.TypeOf(raw)
	if rt.AssignableTo(hint) {
		return raw, nil
	}
	if r.opts.Converter != nil && r.opts.Converter.CanConvert(raw, hint) {
		v, err := r.opts.Converter.Convert(raw, hint)
		if err == nil {
			return v, nil
		}
	}
	if rt.ConvertibleTo(hint) {
		return reflect.ValueOf(raw).Convert(hint).Interface(), nil
	}
	return raw, nil
}

var timeType = reflect.TypeOf(time.Time{})
