// Package descriptor is the reflective field-access substitute spec.md §9
// calls for: Go has no dynamic class loading, so instead of a runtime
// reflection facility the resolver queries a per-type descriptor — a table
// of named, typed setters/getters built once (by reflect.Type scanning, or
// by a caller-supplied override) and cached.
//
// reflect is the only realistic way to build this table generically: no
// third-party struct-mapping library in the example corpus offers identity-
// preserving, cycle-tolerant field access, which is the property this
// resolver actually needs.
package descriptor

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Field is one named, typed accessor on a target type.
type Field struct {
	Name string
	Type reflect.Type
	Set  func(target any, value any) error
	Get  func(target any) (any, bool)
}

// Descriptor is the full field table for one target type.
type Descriptor struct {
	Type   reflect.Type
	Fields map[string]*Field
}

// Source lets other packages (internal/protobind) contribute an alternate
// way to describe a type, tried before the built-in struct-tag scan.
type Source interface {
	Describe(t reflect.Type) (*Descriptor, bool)
}

var (
	mu       sync.Mutex
	registry = map[reflect.Type]*Descriptor{}
	sources  []Source
)

// RegisterSource adds s to the list consulted before falling back to
// reflect-based struct scanning. Later sources take priority.
func RegisterSource(s Source) {
	mu.Lock()
	defer mu.Unlock()
	sources = append([]Source{s}, sources...)
}

// Register installs an explicit descriptor for T, bypassing both the
// registered sources and the struct-tag scan. Use this when a type's wire
// field names don't match its Go field names 1:1.
func Register(t reflect.Type, d *Descriptor) {
	mu.Lock()
	defer mu.Unlock()
	registry[elemType(t)] = d
}

// For returns the descriptor for t (or *t), building and caching one via a
// registered Source or, failing that, a struct-tag scan.
func For(t reflect.Type) (*Descriptor, error) {
	t = elemType(t)

	mu.Lock()
	if d, ok := registry[t]; ok {
		mu.Unlock()
		return d, nil
	}
	srcs := sources
	mu.Unlock()

	for _, s := range srcs {
		if d, ok := s.Describe(t); ok {
			mu.Lock()
			registry[t] = d
			mu.Unlock()
			return d, nil
		}
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("descriptor: %s is not a struct and has no registered source", t)
	}
	d := scanStruct(t)
	mu.Lock()
	registry[t] = d
	mu.Unlock()
	return d, nil
}

func elemType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// scanStruct builds a Descriptor from exported fields, using the "json" tag
// name when present (so a struct already annotated for encoding/json needs
// no extra wiring) and falling back to the literal Go field name.
func scanStruct(t reflect.Type) *Descriptor {
	d := &Descriptor{Type: t, Fields: make(map[string]*Field)}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			if parts := strings.Split(tag, ","); parts[0] != "" && parts[0] != "-" {
				name = parts[0]
			}
		}
		index := append([]int(nil), sf.Index...)
		ft := sf.Type
		d.Fields[name] = &Field{
			Name: name,
			Type: ft,
			Set: func(target any, value any) error {
				return setByIndex(target, index, value)
			},
			Get: func(target any) (any, bool) {
				return getByIndex(target, index)
			},
		}
	}
	return d
}

func setByIndex(target any, index []int, value any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("descriptor: target must be a non-nil pointer, got %T", target)
	}
	fv := rv.Elem().FieldByIndex(index)
	if !fv.CanSet() {
		return fmt.Errorf("descriptor: field is not settable")
	}
	if value == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	vv := reflect.ValueOf(value)
	if !vv.Type().AssignableTo(fv.Type()) {
		if vv.Type().ConvertibleTo(fv.Type()) {
			vv = vv.Convert(fv.Type())
		} else {
			return fmt.Errorf("descriptor: value of type %s is not assignable to field of type %s", vv.Type(), fv.Type())
		}
	}
	fv.Set(vv)
	return nil
}

func getByIndex(target any, index []int) (any, bool) {
	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	fv := rv.FieldByIndex(index)
	return fv.Interface(), true
}
