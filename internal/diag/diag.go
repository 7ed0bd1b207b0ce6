// Package diag implements the resolver's error taxonomy (spec §7): a closed
// set of fault kinds, one template constructor per kind, reported through a
// single aggregate error type. Grounded on the
// teacher's internal/ir/violation.go + violation_templates.go, renamed to
// this domain's vocabulary.
package diag

import "fmt"

// Kind is the closed taxonomy of resolver faults (spec §7).
type Kind string

const (
	KindUnknownReference     Kind = "unknown_reference"
	KindInstantiationFailure Kind = "instantiation_failure"
	KindFieldAccessFailure   Kind = "field_access_failure"
	KindArrayElementMismatch Kind = "array_element_mismatch"
	KindRootTypeMismatch     Kind = "root_type_mismatch"
	KindCorruptNode          Kind = "corrupt_node"
)

// Fault is one entry in a ResolveError: a kind, a message, and the
// underlying error that produced it, if any.
type Fault struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error { return f.Err }

// ResolveError aggregates one or more Faults raised during a single Resolve
// call. Per spec §7, traversal errors abort resolution immediately, and the
// patch pass likewise stops at its first fault, so every ResolveError the
// resolver returns carries exactly one Fault; Error still renders several
// (same shape as the teacher's ValidationError).
type ResolveError []*Fault

func (e ResolveError) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d resolve faults:\n", len(e))
	for _, f := range e {
		msg += "- " + f.Error() + "\n"
	}
	return msg
}

// Unwrap lets errors.Is/As reach the first fault's cause.
func (e ResolveError) Unwrap() error {
	if len(e) == 0 {
		return nil
	}
	return e[0]
}
