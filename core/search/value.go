package search

import (
	"fmt"
	"reflect"
	"strconv"
)

// stringify renders a scalar value for comparison. Nil renders empty.
func stringify(v reflect.Value) string {
	v = indirectValue(v)
	if !v.IsValid() {
		return ""
	}

	if v.CanInterface() && v.Type().Implements(stringerType) {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Complex64:
		return strconv.FormatComplex(v.Complex(), 'g', -1, 64)
	case reflect.Complex128:
		return strconv.FormatComplex(v.Complex(), 'g', -1, 128)
	}

	if v.CanInterface() {
		return fmt.Sprint(v.Interface())
	}
	return ""
}

// visitKey identifies a referenced object along a traversal path.
type visitKey struct {
	typ reflect.Type
	ptr uintptr
}

// identityOf returns the identity of the first pointer or map reached from v.
// Plain struct values have none; they cannot close a cycle by themselves.
func identityOf(v reflect.Value) (visitKey, bool) {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return visitKey{}, false
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return visitKey{}, false
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Map:
		if v.IsNil() {
			return visitKey{}, false
		}
		return visitKey{typ: v.Type(), ptr: v.Pointer()}, true
	}
	return visitKey{}, false
}
