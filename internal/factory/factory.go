// Package factory is the user-registered instantiator registry of spec §4.3:
// a type-keyed factory with an "object-final" flag signaling the factory
// fully populated the instance, so the resolver can skip field walking
// entirely. Grounded on the teacher's directive-dispatch registration
// pattern in internal/ir/buildfieldresolution.go (handleLoadDirective /
// handleResolveDirective register typed definitions keyed by a derived ID),
// generalized here to type-keyed factory registration.
package factory

import (
	"reflect"
	"sync"

	"github.com/openbindings/graphresolve/internal/node"
)

// Instantiate builds (and may fully populate) the target for n. resolveChild
// lets a factory recursively resolve a child node — e.g. to feed a
// non-default constructor — without reaching back into the resolver's
// private traversal state.
type Instantiate func(t reflect.Type, n *node.Node, resolveChild func(*node.Node, reflect.Type) (any, error)) (any, error)

// Factory is one registered instantiator. ObjectFinal signals the returned
// value is fully populated; the resolver marks the node finished and skips
// field walking entirely (spec §4.3, testable property 7).
type Factory struct {
	Instantiate Instantiate
	ObjectFinal bool
}

// Registry is a type-keyed factory table, consulted once per record-shape
// instantiation (spec §4.1 step 3). Read-only during resolution (spec §5),
// so a single Registry may be shared across concurrent Resolver instances.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[reflect.Type]*Factory)}
}

// Register installs f for t, replacing any previously registered factory.
func (r *Registry) Register(t reflect.Type, f *Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[t] = f
}

// For returns the registered factory for t, if any.
func (r *Registry) For(t reflect.Type) (*Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byType[t]
	return f, ok
}

// GatherRemainingValues is the constructor-feeding helper of spec §4.3: for
// each field on n not in excluded and not carrying a null scalar value, it
// recursively resolves the child via resolveChild and appends the result to
// out, in the node's field order.
func GatherRemainingValues(n *node.Node, excluded map[string]bool, resolveChild func(*node.Node) (any, error)) ([]any, error) {
	var out []any
	if n.Fields == nil {
		return out, nil
	}
	for _, name := range n.Fields.Names() {
		if excluded[name] {
			continue
		}
		child, ok := n.Fields.Get(name)
		if !ok || child == nil {
			continue
		}
		if child.Kind() == node.KindScalar && child.Value == nil {
			continue
		}
		v, err := resolveChild(child)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
