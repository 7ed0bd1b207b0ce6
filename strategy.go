package resolver

import (
	"reflect"

	"github.com/openbindings/graphresolve/internal/node"
	"github.com/openbindings/graphresolve/internal/typeresolve"
)

// Strategy is the per-mode instantiation/field-access policy dispatched from
// a record-shape node (spec §4.5): ObjectStrategy builds typed Go instances,
// MapStrategy keeps every object shape as a generic *JSONObject.
type Strategy interface {
	Name() string

	// NewRecordTarget allocates (without populating) the shell for a
	// record-shape node whose type resolved to resolved.
	NewRecordTarget(n *node.Node, resolved typeresolve.Resolved) (any, error)

	// FieldType reports the Go type to coerce field name's value into, and
	// whether the field exists on the target at all. ObjectStrategy answers
	// false for an undeclared field (spec's MissingField); MapStrategy always
	// answers true (a generic map has nowhere a field *can't* go) but still
	// reports a declared type's field type when one is known, so typed
	// numerics survive the round trip (spec §4.5).
	FieldType(resolved typeresolve.Resolved, name string) (reflect.Type, bool)

	// SetField writes value into target's field name.
	SetField(target any, name string, value any) error
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()
