// Package convert is the external ScalarConverter contract (spec.md §2,
// §6): scalar coercions the resolver's instantiation attempt 4 and
// strategies lean on (string<->numeric, bool, date-like). The real thing is
// out of scope for this module (spec §1 lists it as an external
// collaborator) — this package is the contract plus one default
// implementation, grounded on internal/executor/values.go's coerceValue
// switch-based coercion with typed error returns.
package convert

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Converter is the contract the resolver depends on. CanConvert is a cheap
// probe used by instantiation attempt 4 (spec §4.1) before committing to a
// conversion; Convert performs it.
type Converter interface {
	CanConvert(value any, target reflect.Type) bool
	Convert(value any, target reflect.Type) (any, error)
}

// DefaultConverter implements the common scalar coercions: numeric
// widening/narrowing, string<->numeric, bool, and RFC3339 date-like
// conversions. Stateless, so a single instance may be shared (spec §5).
type DefaultConverter struct{}

var timeType = reflect.TypeOf(time.Time{})

// CanConvert reports whether Convert is likely to succeed for value -> target.
// It is intentionally permissive (a probe, not a guarantee): the resolver
// treats a failed Convert call after a true CanConvert as a diagnostic, not
// a defect (spec §9 open question).
func (DefaultConverter) CanConvert(value any, target reflect.Type) bool {
	if value == nil || target == nil {
		return false
	}
	vt := reflect.TypeOf(value)
	if vt.AssignableTo(target) || vt.ConvertibleTo(target) {
		return true
	}
	switch target {
	case timeType:
		_, ok := value.(string)
		return ok
	}
	switch target.Kind() {
	case reflect.String:
		return isScalarKind(vt.Kind()) || vt == timeType
	case reflect.Bool:
		_, ok := value.(string)
		return ok
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		_, ok := value.(string)
		return ok
	}
	return false
}

// Convert performs the coercion CanConvert advertised.
func (DefaultConverter) Convert(value any, target reflect.Type) (any, error) {
	vt := reflect.TypeOf(value)
	vv := reflect.ValueOf(value)

	if vt.AssignableTo(target) {
		return value, nil
	}
	if target == timeType {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("convert: cannot convert %T to time.Time", value)
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		return t, nil
	}
	if vt == timeType && target.Kind() == reflect.String {
		return vv.Interface().(time.Time).Format(time.RFC3339), nil
	}

	switch target.Kind() {
	case reflect.String:
		return fmt.Sprint(value), nil
	case reflect.Bool:
		s, ok := value.(string)
		if !ok {
			if vt.ConvertibleTo(target) {
				return vv.Convert(target).Interface(), nil
			}
			return nil, fmt.Errorf("convert: cannot convert %T to bool", value)
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		return b, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return convertToInt(value, target)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return convertToUint(value, target)
	case reflect.Float32, reflect.Float64:
		return convertToFloat(value, target)
	}

	if vt.ConvertibleTo(target) {
		return vv.Convert(target).Interface(), nil
	}
	return nil, fmt.Errorf("convert: no coercion from %T to %s", value, target)
}

func convertToInt(value any, target reflect.Type) (any, error) {
	switch v := value.(type) {
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		return reflect.ValueOf(i).Convert(target).Interface(), nil
	default:
		vv := reflect.ValueOf(value)
		if vv.Type().ConvertibleTo(target) {
			return vv.Convert(target).Interface(), nil
		}
		return nil, fmt.Errorf("convert: cannot convert %T to %s", value, target)
	}
}

func convertToUint(value any, target reflect.Type) (any, error) {
	switch v := value.(type) {
	case string:
		u, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		return reflect.ValueOf(u).Convert(target).Interface(), nil
	default:
		vv := reflect.ValueOf(value)
		if vv.Type().ConvertibleTo(target) {
			return vv.Convert(target).Interface(), nil
		}
		return nil, fmt.Errorf("convert: cannot convert %T to %s", value, target)
	}
}

func convertToFloat(value any, target reflect.Type) (any, error) {
	switch v := value.(type) {
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		return reflect.ValueOf(f).Convert(target).Interface(), nil
	default:
		vv := reflect.ValueOf(value)
		if vv.Type().ConvertibleTo(target) {
			return vv.Convert(target).Interface(), nil
		}
		return nil, fmt.Errorf("convert: cannot convert %T to %s", value, target)
	}
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return true
	}
	return false
}
