package search

import (
	"reflect"
	"strconv"
	"strings"
)

// Mode is the comparison applied between a field value and a term.
type Mode int

const (
	ModeContains Mode = iota
	ModeEquals
)

func (m Mode) String() string {
	if m == ModeEquals {
		return "EQUALS"
	}
	return "CONTAINS"
}

// Expr is a node of the search expression tree. The tree is built once per
// query and options, then evaluated against records or translated into a
// query provider's filter language.
type Expr interface {
	String() string
	isExpr()
}

// And holds when every child holds. An empty And holds.
type And []Expr

// Or holds when any child holds. An empty Or does not.
type Or []Expr

type Not struct {
	Expr Expr
}

type Const bool

// AnyField holds when some eligible field of the record, or of its nested
// records within depth, satisfies the comparison. Only the evaluator
// handles it; Compile replaces it with Match nodes.
type AnyField struct {
	Term          string
	Mode          Mode
	CaseSensitive bool
}

// Match compares the value at a resolved field path with a term.
type Match struct {
	Field         FieldRef
	Term          string
	Mode          Mode
	CaseSensitive bool
}

func (And) isExpr()      {}
func (Or) isExpr()       {}
func (Not) isExpr()      {}
func (Const) isExpr()    {}
func (AnyField) isExpr() {}
func (Match) isExpr()    {}

func (e And) String() string { return joinExprs(e, " AND ", "TRUE") }
func (e Or) String() string  { return joinExprs(e, " OR ", "FALSE") }
func (e Not) String() string { return "NOT " + e.Expr.String() }

func (e Const) String() string {
	if e {
		return "TRUE"
	}
	return "FALSE"
}

func (e AnyField) String() string {
	return comparisonString("*", e.Mode, e.Term, e.CaseSensitive)
}

func (e Match) String() string {
	return comparisonString(e.Field.String(), e.Mode, e.Term, e.CaseSensitive)
}

// Test applies the comparison to a stringified field value.
func (e Match) Test(value string) bool {
	return compare(value, e.Term, e.Mode, e.CaseSensitive)
}

func (e AnyField) Test(value string) bool {
	return compare(value, e.Term, e.Mode, e.CaseSensitive)
}

func compare(value, term string, mode Mode, caseSensitive bool) bool {
	if !caseSensitive {
		value = strings.ToLower(value)
		term = strings.ToLower(term)
	}
	if mode == ModeEquals {
		return value == term
	}
	return strings.Contains(value, term)
}

func comparisonString(field string, mode Mode, term string, caseSensitive bool) string {
	s := field + " " + mode.String() + " " + strconv.Quote(term)
	if caseSensitive {
		s += " CASE"
	}
	return s
}

func joinExprs(exprs []Expr, sep, empty string) string {
	if len(exprs) == 0 {
		return empty
	}
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// FieldRef is a field path resolved against a record type.
type FieldRef struct {
	// Path holds the Go field names from the record down to the scalar.
	Path []string
	// Columns holds the sqlx column names along Path.
	Columns []string
	// Keys holds the json keys along Path.
	Keys []string
	// Text is set when the scalar's underlying kind is string.
	Text bool
	Type reflect.Type

	fields []FieldDescriptor
}

func (r FieldRef) String() string {
	return strings.Join(r.Path, ".")
}

// Depth is the number of nested records crossed to reach the field.
func (r FieldRef) Depth() int {
	return len(r.Path) - 1
}

// Value reads the field from record, following nested pointers. It reports
// false when a nested record on the way is nil.
func (r FieldRef) Value(record reflect.Value) (reflect.Value, bool) {
	v := record
	for i, fd := range r.fields {
		v = indirectValue(v)
		if !v.IsValid() || v.Kind() != reflect.Struct {
			return reflect.Value{}, false
		}
		fv, ok := fd.Value(v)
		if !ok {
			return reflect.Value{}, false
		}
		v = fv
		if i == len(r.fields)-1 {
			return v, true
		}
	}
	return reflect.Value{}, false
}

func (r FieldRef) child(fd FieldDescriptor) FieldRef {
	return FieldRef{
		Path:    appendCopy(r.Path, fd.Name),
		Columns: appendCopy(r.Columns, fd.Column),
		Keys:    appendCopy(r.Keys, fd.Key),
		Text:    fd.Text,
		Type:    fd.Type,
		fields:  append(append(make([]FieldDescriptor, 0, len(r.fields)+1), r.fields...), fd),
	}
}

func appendCopy(s []string, v string) []string {
	return append(append(make([]string, 0, len(s)+1), s...), v)
}

// Terms splits a raw query on whitespace.
func Terms(query string) []string {
	return strings.Fields(query)
}

// BuildPlan builds the unresolved expression for a query: one AnyField per
// term, combined with the options' operator. A blank query yields TRUE.
func BuildPlan(query string, opts Options) Expr {
	terms := Terms(query)
	if len(terms) == 0 {
		return Const(true)
	}

	nodes := make([]Expr, len(terms))
	for i, term := range terms {
		nodes[i] = AnyField{
			Term:          term,
			Mode:          opts.mode(),
			CaseSensitive: opts.CaseSensitive,
		}
	}
	return combine(opts.operator(), nodes)
}

func combine(op Operator, nodes []Expr) Expr {
	if len(nodes) == 1 {
		return nodes[0]
	}
	if op == OperatorOr {
		return Or(nodes)
	}
	return And(nodes)
}
