package search

import (
	"reflect"
	"sort"
)

// Matches reports whether record matches query. A blank query matches
// every record; a nil record matches no other query. Records are structs,
// pointers to structs, or maps with string keys. Entries of map records are
// classified per value; interface- and map-typed struct fields are skipped.
//
// Data-level conditions (nil values, cyclic graphs, nested records without
// fields) resolve to non-matches. Errors report invalid options or an
// unsupported record type.
func (e *Engine) Matches(record interface{}, query string, opts Options) (bool, error) {
	if err := opts.Validate(); err != nil {
		return false, err
	}

	plan := BuildPlan(query, opts)
	if c, ok := plan.(Const); ok {
		return bool(c), nil
	}

	rv := reflect.ValueOf(record)
	root := derefRecord(rv)
	if !root.IsValid() {
		return false, nil
	}

	switch root.Kind() {
	case reflect.Struct:
		if _, err := e.fields.GetFields(root.Type()); err != nil {
			return false, err
		}
	case reflect.Map:
		if root.Type().Key().Kind() != reflect.String {
			return false, UnsupportedTypeError{Type: root.Type()}
		}
	default:
		return false, UnsupportedTypeError{Type: root.Type()}
	}

	ev := evaluator{
		fields: e.fields,
		opts:   opts,
		filter: newColumnFilter(opts),
	}
	return ev.eval(plan, rv), nil
}

// evaluator interprets an expression tree against a single record.
type evaluator struct {
	fields *FieldCache
	opts   Options
	filter columnFilter
}

func (ev evaluator) eval(e Expr, record reflect.Value) bool {
	switch e := e.(type) {
	case And:
		for _, child := range e {
			if !ev.eval(child, record) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range e {
			if ev.eval(child, record) {
				return true
			}
		}
		return false
	case Not:
		return !ev.eval(e.Expr, record)
	case Const:
		return bool(e)
	case Match:
		v, ok := e.Field.Value(record)
		if !ok {
			return false
		}
		return e.Test(stringify(v))
	case AnyField:
		if ev.fields == nil {
			return false
		}
		visited := make(map[visitKey]bool)
		if key, ok := identityOf(record); ok {
			visited[key] = true
		}
		return ev.walk(e, derefRecord(record), "", 0, false, visited)
	}
	return false
}

type recordField struct {
	name  string
	kind  FieldKind
	value reflect.Value
}

type nestedField struct {
	value   reflect.Value
	path    string
	subtree bool
}

// walk tests the scalar fields of record, then descends into its nested
// records while depth allows. visited holds the identities on the current
// path; they are not entered again.
func (ev evaluator) walk(cmp AnyField, record reflect.Value, prefix string, depth int, inherited bool, visited map[visitKey]bool) bool {
	var nested []nestedField
	for _, f := range ev.fieldsOf(record) {
		kind := f.kind
		if kind == FieldDynamic {
			var ok bool
			if _, kind, ok = classifyValue(f.value); !ok {
				continue
			}
		}

		path := joinPath(prefix, f.name)
		ok, subtree := ev.filter.admit(f.name, path, kind == FieldNested, inherited)
		if !ok {
			continue
		}

		if kind == FieldScalar {
			if cmp.Test(stringify(f.value)) {
				return true
			}
			continue
		}
		nested = append(nested, nestedField{value: f.value, path: path, subtree: subtree})
	}

	if !ev.opts.nestingAllowed(depth) {
		return false
	}

	for _, n := range nested {
		key, tracked := identityOf(n.value)
		if tracked {
			if visited[key] {
				continue
			}
			visited[key] = true
		}

		matched := false
		if child := derefRecord(n.value); child.IsValid() {
			matched = ev.walk(cmp, child, n.path, depth+1, n.subtree, visited)
		}

		if tracked {
			delete(visited, key)
		}
		if matched {
			return true
		}
	}
	return false
}

func (ev evaluator) fieldsOf(record reflect.Value) []recordField {
	switch record.Kind() {
	case reflect.Struct:
		fds, err := ev.fields.GetFields(record.Type())
		if err != nil {
			return nil
		}
		fields := make([]recordField, 0, len(fds))
		for _, fd := range fds {
			// declared interface and map fields are left out, as in Compile
			if fd.Kind == FieldDynamic {
				continue
			}
			v, ok := fd.Value(record)
			if !ok {
				continue
			}
			fields = append(fields, recordField{name: fd.Name, kind: fd.Kind, value: v})
		}
		return fields
	case reflect.Map:
		if record.Type().Key().Kind() != reflect.String {
			return nil
		}
		keys := record.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		fields := make([]recordField, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, recordField{name: k.String(), kind: FieldDynamic, value: record.MapIndex(k)})
		}
		return fields
	}
	return nil
}

// derefRecord follows pointers and interfaces down to a struct or map.
func derefRecord(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	if v.IsValid() && v.Kind() == reflect.Map && v.IsNil() {
		return reflect.Value{}
	}
	return v
}
