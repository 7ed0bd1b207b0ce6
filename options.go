// Package resolver is the deserialization graph resolver of spec.md §4.1,
// §4.2, §4.5, §4.6: given a parsed Node tree using @id/@ref/@type markers,
// it reconstructs a typed, possibly cyclic, object graph. Grounded on the
// teacher's internal/ir/build.go (a private builder struct driving a strict
// ordered multi-pass pipeline over a generic parsed tree, populating
// cross-references between definitions discovered before and after the
// referencing site) and internal/executor/executor.go's depth-batched
// two-phase traverse-then-complete loop — the same "walk first, patch
// second" shape this package's Resolver needs for forward @ref handling.
package resolver

import (
	"reflect"

	"github.com/openbindings/graphresolve/internal/convert"
	"github.com/openbindings/graphresolve/internal/factory"
	"github.com/openbindings/graphresolve/internal/typeresolve"
)

// Mode selects MapStrategy vs ObjectStrategy output (spec §6:
// returningJsonObjects / returningJavaObjects).
type Mode int

const (
	// ModeGoObjects builds typed Go instances via registered types (ObjectStrategy).
	ModeGoObjects Mode = iota
	// ModeJSONObjects keeps every object-shape node as a generic *JSONObject,
	// coercing only scalar leaves whose field is declared on a known type (MapStrategy).
	ModeJSONObjects
)

// MissingFieldHandler is invoked once per MissingField, after the patch and
// rehash passes complete (spec §8 property 6).
type MissingFieldHandler func(target any, field string, value any)

// Options configures a Resolver (spec §6's recognized configuration options).
type Options struct {
	Mode Mode

	// UnknownTypeClass substitutes for a record whose type cannot be inferred.
	UnknownTypeClass reflect.Type
	// CoercedClasses maps a declared type name to a substitute type name,
	// applied before type lookup.
	CoercedClasses map[string]string
	// MissingFieldHandler receives each missing field once, after cleanup.
	MissingFieldHandler MissingFieldHandler

	// Converter performs the scalar coercions ScalarConverter is contracted
	// for (spec §2, §6). Defaults to convert.DefaultConverter{}.
	Converter convert.Converter
	// TypeRegistry resolves declared/hinted type names to Go types and enums.
	// Required for ModeGoObjects; optional (but still consulted for
	// field-type hints) for ModeJSONObjects.
	TypeRegistry *typeresolve.Registry
	// Factories is consulted once per record-shape instantiation (spec §4.3).
	Factories *factory.Registry
}
