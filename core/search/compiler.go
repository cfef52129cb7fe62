package search

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/goto/quicksearch/lib/set"
	"go.uber.org/multierr"
)

// Compile builds a predicate over records of type t with the same
// semantics as Matches. Nested traversal is unrolled into explicit field
// paths up to the options' depth, so the result can be translated for a
// query provider instead of walking records. Interface- and map-typed
// fields are left out, as they are by Matches.
//
// Every ColumnNames entry must name a field or path reachable within depth;
// the unresolved ones are reported as UnsupportedFieldPathError. Unrolling
// that expands past the engine's path limit fails with ErrTooManyFieldPaths.
func (e *Engine) Compile(t reflect.Type, query string, opts Options) (Predicate, error) {
	if t == nil {
		return Predicate{}, UnsupportedTypeError{}
	}
	if err := opts.Validate(); err != nil {
		return Predicate{}, err
	}

	t = indirectType(t)
	if _, err := e.fields.GetFields(t); err != nil {
		return Predicate{}, err
	}

	terms := Terms(query)
	key := fmt.Sprintf("%p|%s|%s", t, opts.fingerprint(), strings.Join(terms, "\x00"))
	if e.compiled != nil {
		if p, ok := e.compiled.Get(key); ok {
			return p, nil
		}
	}

	c := &compiler{
		fields:   e.fields,
		opts:     opts,
		filter:   newColumnFilter(opts),
		maxPaths: e.maxFieldPaths,
	}
	if err := c.checkColumns(t); err != nil {
		return Predicate{}, err
	}

	var expr Expr = Const(true)
	if len(terms) > 0 {
		if !c.resolve(t, FieldRef{}, "", 0, false) {
			return Predicate{}, fmt.Errorf("%w: %s expands past %d paths at depth %d",
				ErrTooManyFieldPaths, t, c.maxPaths, opts.MaxSearchDepth)
		}
		nodes := make([]Expr, len(terms))
		for i, term := range terms {
			alternatives := make(Or, len(c.refs))
			for j, ref := range c.refs {
				alternatives[j] = Match{
					Field:         ref,
					Term:          term,
					Mode:          opts.mode(),
					CaseSensitive: opts.CaseSensitive,
				}
			}
			nodes[i] = alternatives
			if len(alternatives) == 1 {
				nodes[i] = alternatives[0]
			}
		}
		expr = combine(opts.operator(), nodes)
	}

	p := Predicate{typ: t, expr: expr}
	if e.compiled != nil {
		e.compiled.Add(key, p)
	}
	return p, nil
}

// Field resolves a dotted path of field names, compared case-insensitively,
// to a scalar field of t. Hosts use it to build their own filters.
func (e *Engine) Field(t reflect.Type, path string) (FieldRef, error) {
	if t == nil {
		return FieldRef{}, UnsupportedTypeError{}
	}
	t = indirectType(t)

	var ref FieldRef
	current := t
	segments := strings.Split(path, ".")
	for i, segment := range segments {
		fds, err := e.fields.GetFields(current)
		if err != nil {
			return FieldRef{}, err
		}

		var found *FieldDescriptor
		for j := range fds {
			if strings.EqualFold(fds[j].Name, segment) {
				found = &fds[j]
				break
			}
		}
		if found == nil {
			return FieldRef{}, UnsupportedFieldPathError{Type: t, Path: path}
		}

		last := i == len(segments)-1
		switch {
		case last && found.Kind == FieldScalar:
			return ref.child(*found), nil
		case !last && found.Kind == FieldNested:
			ref = ref.child(*found)
			current = indirectType(found.Type)
		default:
			return FieldRef{}, UnsupportedFieldPathError{Type: t, Path: path}
		}
	}

	return FieldRef{}, UnsupportedFieldPathError{Type: t, Path: path}
}

type compiler struct {
	fields   *FieldCache
	opts     Options
	filter   columnFilter
	maxPaths int

	refs  []FieldRef
	paths int
}

type nestedRef struct {
	ref     FieldRef
	typ     reflect.Type
	path    string
	subtree bool
}

// resolve collects the scalar paths the evaluator would test, in the order
// it would test them. It reports false once more than maxPaths scalar and
// nested paths have been expanded.
func (c *compiler) resolve(t reflect.Type, parent FieldRef, prefix string, depth int, inherited bool) bool {
	fds, err := c.fields.GetFields(t)
	if err != nil {
		return true
	}

	var nested []nestedRef
	for _, fd := range fds {
		if fd.Kind == FieldDynamic {
			continue
		}

		path := joinPath(prefix, fd.Name)
		ok, subtree := c.filter.admit(fd.Name, path, fd.Kind == FieldNested, inherited)
		if !ok {
			continue
		}

		ref := parent.child(fd)
		if fd.Kind == FieldScalar {
			if !c.expand() {
				return false
			}
			c.refs = append(c.refs, ref)
			continue
		}
		nested = append(nested, nestedRef{ref: ref, typ: indirectType(fd.Type), path: path, subtree: subtree})
	}

	if !c.opts.nestingAllowed(depth) {
		return true
	}

	for _, n := range nested {
		if !c.expand() || !c.resolve(n.typ, n.ref, n.path, depth+1, n.subtree) {
			return false
		}
	}
	return true
}

func (c *compiler) expand() bool {
	c.paths++
	return c.maxPaths <= 0 || c.paths <= c.maxPaths
}

func (c *compiler) checkColumns(t reflect.Type) error {
	if len(c.opts.ColumnNames) == 0 {
		return nil
	}

	names := c.reachableNames(t)

	var err error
	reported := set.NewStringSet()
	for _, name := range c.opts.ColumnNames {
		folded := strings.ToLower(name)
		if names.Has(folded) || reported.Has(folded) {
			continue
		}
		if strings.Contains(folded, ".") && c.pathReachable(t, folded) {
			continue
		}
		reported.Add(folded)
		err = multierr.Append(err, UnsupportedFieldPathError{Type: t, Path: name})
	}
	return err
}

// reachableNames collects the lower-cased names of the searchable fields
// found at any level within depth. Each type is expanded once, at the
// shallowest depth it appears, so the walk is linear in the type graph.
func (c *compiler) reachableNames(t reflect.Type) set.StringSet {
	names := set.NewStringSet()
	seen := map[reflect.Type]bool{t: true}
	level := []reflect.Type{t}
	for depth := 0; len(level) > 0; depth++ {
		var next []reflect.Type
		for _, lt := range level {
			fds, err := c.fields.GetFields(lt)
			if err != nil {
				continue
			}
			for _, fd := range fds {
				if fd.Kind == FieldDynamic {
					continue
				}
				names.Add(strings.ToLower(fd.Name))
				if fd.Kind != FieldNested || !c.opts.nestingAllowed(depth) {
					continue
				}
				if nt := indirectType(fd.Type); !seen[nt] {
					seen[nt] = true
					next = append(next, nt)
				}
			}
		}
		level = next
	}
	return names
}

// pathReachable follows a dotted path from t, one nesting level per segment.
func (c *compiler) pathReachable(t reflect.Type, path string) bool {
	current := t
	segments := strings.Split(path, ".")
	for depth, segment := range segments {
		fds, err := c.fields.GetFields(current)
		if err != nil {
			return false
		}

		var found *FieldDescriptor
		for i := range fds {
			if strings.EqualFold(fds[i].Name, segment) {
				found = &fds[i]
				break
			}
		}
		if found == nil || found.Kind == FieldDynamic {
			return false
		}
		if depth == len(segments)-1 {
			return true
		}
		if found.Kind != FieldNested || !c.opts.nestingAllowed(depth) {
			return false
		}
		current = indirectType(found.Type)
	}
	return false
}
