package search

import (
	"reflect"
)

// Predicate is a boolean expression over one record type. It stays
// introspectable (see Expr) so a deferred source can translate it into its
// own filter language. The zero Predicate holds for every record.
type Predicate struct {
	typ  reflect.Type
	expr Expr
}

// NewPredicate wraps an expression built by the host, e.g. from Match
// nodes over fields resolved with Engine.Field.
func NewPredicate(t reflect.Type, expr Expr) Predicate {
	if t != nil {
		t = indirectType(t)
	}
	return Predicate{typ: t, expr: expr}
}

// True is the predicate that keeps every record of type t.
func True(t reflect.Type) Predicate {
	return NewPredicate(t, Const(true))
}

func (p Predicate) Type() reflect.Type {
	return p.typ
}

func (p Predicate) Expr() Expr {
	if p.expr == nil {
		return Const(true)
	}
	return p.expr
}

func (p Predicate) IsZero() bool {
	return p.typ == nil && p.expr == nil
}

func (p Predicate) String() string {
	return p.Expr().String()
}

// And conjoins p with others. All predicates must be over the same type;
// zero predicates take the type of the others.
func (p Predicate) And(others ...Predicate) (Predicate, error) {
	return p.join(others, func(exprs []Expr) Expr { return And(exprs) })
}

// Or disjoins p with others under the same type rules as And.
func (p Predicate) Or(others ...Predicate) (Predicate, error) {
	return p.join(others, func(exprs []Expr) Expr { return Or(exprs) })
}

func (p Predicate) Not() Predicate {
	return Predicate{typ: p.typ, expr: Not{Expr: p.Expr()}}
}

func (p Predicate) join(others []Predicate, build func([]Expr) Expr) (Predicate, error) {
	typ := p.typ
	exprs := []Expr{p.Expr()}
	for _, o := range others {
		if o.typ != nil {
			if typ != nil && typ != o.typ {
				return Predicate{}, ErrPredicateTypeMismatch
			}
			typ = o.typ
		}
		exprs = append(exprs, o.Expr())
	}
	return Predicate{typ: typ, expr: build(exprs)}, nil
}

// Eval evaluates the predicate in memory. Records of another type never
// satisfy it.
func (p Predicate) Eval(record interface{}) bool {
	rv := reflect.ValueOf(record)
	if p.typ != nil {
		root := derefRecord(rv)
		if !root.IsValid() || root.Type() != p.typ {
			return false
		}
	}
	return evaluator{}.eval(p.Expr(), rv)
}
