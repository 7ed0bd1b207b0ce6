package resolver

import (
	"fmt"
	"reflect"
)

func errUnknownEnumConstant(name string) error {
	return fmt.Errorf("resolver: unknown enum constant %q", name)
}

func errAssign(from, to reflect.Type) error {
	return fmt.Errorf("resolver: cannot assign %s into %s", from, to)
}

func errConvertElem(from, to reflect.Type) error {
	return fmt.Errorf("resolver: cannot convert %s to %s", from, to)
}

func errNotASetType(t reflect.Type) error {
	return fmt.Errorf("resolver: %s is not a Set type (map[T]struct{})", t)
}
