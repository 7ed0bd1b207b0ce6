package diag

import "fmt"

// One constructor per fault kind, mirroring the teacher's
// violation_templates.go — callers never build a *Fault by hand, which keeps
// message wording consistent and makes every call site self-documenting.

func UnknownReference(refID int64) *Fault {
	return &Fault{Kind: KindUnknownReference, Message: fmt.Sprintf("no node defines @id %d", refID)}
}

func UnknownReferenceUnresolvedTarget(refID int64) *Fault {
	return &Fault{
		Kind:    KindUnknownReference,
		Message: fmt.Sprintf("@id %d resolved to a node whose target is still nil at patch time", refID),
	}
}

func InstantiationFailure(typeName string, err error) *Fault {
	return &Fault{
		Kind:    KindInstantiationFailure,
		Message: fmt.Sprintf("cannot instantiate %q", typeName),
		Err:     err,
	}
}

func FieldAccessFailure(typeName, field string, err error) *Fault {
	return &Fault{
		Kind:    KindFieldAccessFailure,
		Message: fmt.Sprintf("cannot write field %q on %q", field, typeName),
		Err:     err,
	}
}

func ArrayElementMismatch(index int, wantType string, err error) *Fault {
	return &Fault{
		Kind:    KindArrayElementMismatch,
		Message: fmt.Sprintf("element %d incompatible with component type %q", index, wantType),
		Err:     err,
	}
}

func RootTypeMismatch(gotType, wantType string) *Fault {
	return &Fault{
		Kind:    KindRootTypeMismatch,
		Message: fmt.Sprintf("resolved type %q is not assignable to requested root type %q", gotType, wantType),
	}
}

func CorruptNode(reason string) *Fault {
	return &Fault{Kind: KindCorruptNode, Message: reason}
}
