// Package typeresolve maps a Node's declared/hinted type name through a
// user-configurable coercion table, detects enum and enum-set shape, and
// persists the resolved name back onto the node so the patch pass and the
// strategy agree on it later (spec §4.4).
//
// Go has no Class.forName equivalent, so "type" here is a string name
// registered explicitly (RegisterType / RegisterEnum) against a reflect.Type
// or an EnumDescriptor; a name nobody registered is not looked up any other
// way — grounded on the
// teacher's internal/ir builder-held lookup tables (b.Definitions,
// b.Directives) and schema/builder.go's switch-on-kind dispatch.
package typeresolve

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/openbindings/graphresolve/internal/node"
)

// EnumDescriptor describes a registered enum type: how to parse a wire name
// into the enum's Go value, and (when the node carries @items) what Go type
// backs the resolved enum-set.
type EnumDescriptor struct {
	Type  reflect.Type
	Parse func(name string) (any, bool)
	// SetType is the Go type constructed for an enum-set shape (spec §4.1
	// step 2); defaults to map[any]struct{} when nil.
	SetType reflect.Type
}

// Registry is the process-wide (or per-Resolver) name -> reflect.Type table
// a real class loader would otherwise provide.
type Registry struct {
	types map[string]reflect.Type
	enums map[string]*EnumDescriptor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]reflect.Type), enums: make(map[string]*EnumDescriptor)}
}

// RegisterType associates name with t. Subsequent nodes whose declared or
// hinted @type resolves to name will instantiate t.
func (r *Registry) RegisterType(name string, t reflect.Type) {
	r.types[name] = t
}

// RegisterEnum associates name with an enum descriptor.
func (r *Registry) RegisterEnum(name string, d *EnumDescriptor) {
	r.enums[name] = d
}

// Lookup returns the registered type for name, if any.
func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Enum returns the registered enum descriptor for name, if any.
func (r *Registry) Enum(name string) (*EnumDescriptor, bool) {
	d, ok := r.enums[name]
	return d, ok
}

// insertionOrderedFallback is the generic-map-mode substitution table for
// ordered-collection type names the map strategy can't preserve structurally
// (spec §4.4 "special fallback"): a sorted container degrades to its
// insertion-ordered equivalent rather than failing outright.
var insertionOrderedFallback = map[string]string{
	"SortedSet": "InsertionOrderedSet",
	"SortedMap": "InsertionOrderedMap",
}

// Options configures type resolution (spec §6).
type Options struct {
	// UnknownTypeClass substitutes for a record whose type cannot be
	// inferred. Ignored when GenericMapMode is true and this is nil.
	UnknownTypeClass reflect.Type
	// GenericMapMode mirrors "returningJsonObjects": when true and no type
	// can be inferred, the node is left as its own generic-map target
	// instead of erroring.
	GenericMapMode bool
	// CoercedClasses maps a declared type name to a substitute type name,
	// applied before lookup (spec §6 coercedClasses).
	CoercedClasses map[string]string
}

// Resolved is the outcome of resolving one node's effective type.
type Resolved struct {
	TypeName string
	Type     reflect.Type // zero Value (nil) when GenericMapMode leaves the node untyped
	Enum     *EnumDescriptor
	IsEnumSet bool
	Unknown  bool // true when no type could be inferred and GenericMapMode applies
}

// TypeResolver resolves a Node's effective target type through the coercion
// table and enum detection (spec §4.4).
type TypeResolver struct {
	registry *Registry
	opts     Options
}

// New returns a TypeResolver backed by registry and configured by opts.
func New(registry *Registry, opts Options) *TypeResolver {
	return &TypeResolver{registry: registry, opts: opts}
}

// Resolve implements spec §4.4 steps 1-4: take the node's declared @type or
// caller hint, pass it through the coercion table, detect enum/enum-set
// shape, and persist the result back onto n.
func (r *TypeResolver) Resolve(n *node.Node) (Resolved, error) {
	name := n.EffectiveType()

	if sub, ok := r.opts.CoercedClasses[name]; ok {
		name = sub
	}

	if name == "" {
		if r.opts.UnknownTypeClass != nil {
			return Resolved{Type: r.opts.UnknownTypeClass}, nil
		}
		if r.opts.GenericMapMode {
			return Resolved{Unknown: true}, nil
		}
		return Resolved{}, fmt.Errorf("typeresolve: node has no declared or hinted type")
	}

	if r.opts.GenericMapMode {
		if alt, ok := insertionOrderedFallback[unqualify(name)]; ok {
			name = alt
		}
	}

	if enum, ok := r.registry.Enum(name); ok {
		resolved := Resolved{TypeName: name, Enum: enum, IsEnumSet: n.Items != nil}
		n.Type = name
		return resolved, nil
	}

	t, ok := r.registry.Lookup(name)
	if !ok {
		if r.opts.GenericMapMode {
			return Resolved{TypeName: name, Unknown: true}, nil
		}
		return Resolved{}, fmt.Errorf("typeresolve: unregistered type %q", name)
	}
	n.Type = name
	return Resolved{TypeName: name, Type: t}, nil
}

// unqualify strips a package-style prefix ("pkg.SortedSet" -> "SortedSet")
// so the fallback table matches regardless of how callers name their types.
func unqualify(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
