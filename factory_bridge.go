package resolver

import (
	"reflect"

	"github.com/openbindings/graphresolve/internal/diag"
	"github.com/openbindings/graphresolve/internal/eventbus"
	"github.com/openbindings/graphresolve/internal/events"
	"github.com/openbindings/graphresolve/internal/node"
)

// resolveChildForFactory is the resolveChild callback handed to a factory
// (spec §4.3): unlike placeChild, it instantiates and populates child itself
// synchronously instead of pushing it onto the work stack. Population of the
// child goes through the ordinary traversal, so the child's own nested
// object children are pushed onto the work stack and any forward @ref inside
// it is deferred to the patch pass; the returned value may therefore still
// be missing those parts when the factory receives it.
func (r *Resolver) resolveChildForFactory(child *node.Node, hint reflect.Type) (any, error) {
	if child == nil {
		return nil, nil
	}
	switch child.Kind() {
	case node.KindRef:
		target, ok := r.refs.Resolve(*child.RefID)
		if !ok {
			return nil, diag.ResolveError{diag.UnknownReference(*child.RefID)}
		}
		if err := r.resolveFully(target, hint); err != nil {
			return nil, err
		}
		return target.Target, nil
	case node.KindScalar:
		return r.coerceScalar(child.Value, hint)
	default:
		if err := r.resolveFully(child, hint); err != nil {
			return nil, err
		}
		return child.Target, nil
	}
}

// resolveFully ensures n is instantiated and, if it hasn't already been
// dispatched from the work stack, populated — used where a caller (a
// factory, or the root-level entry point) needs a complete value rather than
// a to-be-populated shell.
func (r *Resolver) resolveFully(n *node.Node, hint reflect.Type) error {
	if n.Finished {
		return nil
	}
	if n.HintType == "" {
		n.HintType = typeName(hint)
	}
	if err := r.instantiate(n); err != nil {
		return err
	}
	if n.Finished {
		return nil
	}
	if r.visited[n] {
		return nil
	}
	r.visited[n] = true
	return r.dispatchPopulate(n)
}

func (r *Resolver) publishScalarProbeFailed(targetType string, err error) {
	eventbus.Publish(r.ctx, events.ScalarProbeFailed{TargetType: targetType, Err: err})
}
