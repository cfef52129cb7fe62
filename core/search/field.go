package search

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

type FieldKind int

const (
	// FieldScalar values are stringified and compared.
	FieldScalar FieldKind = iota + 1
	// FieldNested values are records searched at the next depth.
	FieldNested
	// FieldDynamic fields (interfaces, maps) are not searched on struct
	// records; map record entries are classified per value.
	FieldDynamic
)

func (k FieldKind) String() string {
	switch k {
	case FieldScalar:
		return "scalar"
	case FieldNested:
		return "nested"
	case FieldDynamic:
		return "dynamic"
	}
	return "unknown"
}

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

// FieldDescriptor identifies one readable field of a record type.
type FieldDescriptor struct {
	// Name is the Go field name.
	Name string
	// Column is the sqlx "db" tag, or the lower-cased name.
	Column string
	// Key is the "json" tag, or the name.
	Key  string
	Kind FieldKind
	Type reflect.Type
	// Text is set for scalars whose underlying kind is string.
	Text bool

	index []int
}

// Value reads the field off a struct value of the descriptor's record type.
// It reports false when an embedded pointer along the way is nil.
func (f FieldDescriptor) Value(record reflect.Value) (reflect.Value, bool) {
	v, err := record.FieldByIndexErr(f.index)
	if err != nil {
		return reflect.Value{}, false
	}
	return v, true
}

// FieldCache memoizes field descriptors per record type. It is safe for
// concurrent use: reads share a lock, and at most one build per uncached
// type runs at a time. A descriptor slice is published only once complete
// and must not be modified by callers.
type FieldCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]FieldDescriptor
	group  singleflight.Group
}

func NewFieldCache() *FieldCache {
	return &FieldCache{
		fields: make(map[reflect.Type][]FieldDescriptor),
	}
}

// GetFields returns the readable fields of t in declaration order, with
// promoted fields of embedded structs flattened in place. Pointer types are
// dereferenced.
func (c *FieldCache) GetFields(t reflect.Type) ([]FieldDescriptor, error) {
	if t == nil {
		return nil, UnsupportedTypeError{}
	}
	t = indirectType(t)

	if fields, ok := c.lookup(t); ok {
		return fields, nil
	}

	v, err, _ := c.group.Do(fmt.Sprintf("%p", t), func() (interface{}, error) {
		if fields, ok := c.lookup(t); ok {
			return fields, nil
		}

		fields, err := buildFields(t)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.fields[t] = fields
		c.mu.Unlock()

		return fields, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]FieldDescriptor), nil
}

// Len returns the number of cached record types.
func (c *FieldCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fields)
}

func (c *FieldCache) lookup(t reflect.Type) ([]FieldDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fields, ok := c.fields[t]
	return fields, ok
}

func buildFields(t reflect.Type) ([]FieldDescriptor, error) {
	if t.Kind() != reflect.Struct {
		return nil, UnsupportedTypeError{Type: t}
	}

	var fields []FieldDescriptor
	for _, sf := range reflect.VisibleFields(t) {
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		if sf.Tag.Get("search") == "-" {
			continue
		}

		kind, ok := classifyType(sf.Type)
		if !ok {
			continue
		}

		fields = append(fields, FieldDescriptor{
			Name:   sf.Name,
			Column: tagName(sf, "db", strings.ToLower(sf.Name)),
			Key:    tagName(sf, "json", sf.Name),
			Kind:   kind,
			Type:   sf.Type,
			Text:   kind == FieldScalar && indirectType(sf.Type).Kind() == reflect.String,
			index:  sf.Index,
		})
	}

	if len(fields) == 0 {
		return nil, UnsupportedTypeError{Type: t}
	}

	return fields, nil
}

func tagName(sf reflect.StructField, key, fallback string) string {
	name := strings.SplitN(sf.Tag.Get(key), ",", 2)[0]
	if name == "" || name == "-" {
		return fallback
	}
	return name
}

func classifyType(t reflect.Type) (FieldKind, bool) {
	if t.Implements(stringerType) {
		return FieldScalar, true
	}

	base := indirectType(t)
	if base != t && base.Implements(stringerType) {
		return FieldScalar, true
	}

	switch base.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return FieldScalar, true
	case reflect.Struct:
		return FieldNested, true
	case reflect.Interface:
		return FieldDynamic, true
	case reflect.Map:
		if base.Key().Kind() == reflect.String {
			return FieldDynamic, true
		}
	}

	return 0, false
}

// classifyValue resolves the kind of a dynamic value, returning the
// dereferenced value. Nil values report false.
func classifyValue(v reflect.Value) (reflect.Value, FieldKind, bool) {
	v = indirectValue(v)
	if !v.IsValid() {
		return v, 0, false
	}
	if v.Kind() == reflect.Map && v.IsNil() {
		return v, 0, false
	}

	kind, ok := classifyType(v.Type())
	if !ok {
		return v, 0, false
	}
	if kind == FieldDynamic {
		if v.Kind() == reflect.Map {
			return v, FieldNested, true
		}
		return v, 0, false
	}
	return v, kind, true
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// indirectValue follows pointers and interfaces, stopping at values that
// are Stringers themselves so their String method is kept reachable.
func indirectValue(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		if v.Kind() == reflect.Ptr && v.Type().Implements(stringerType) && !v.Elem().Type().Implements(stringerType) {
			return v
		}
		v = v.Elem()
	}
	return v
}
