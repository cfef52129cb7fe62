package search

import (
	"context"
	"reflect"
)

// Source is a deferred-execution data source: it evaluates a predicate at
// its own boundary and returns the records that satisfy it.
type Source[T any] interface {
	Where(ctx context.Context, pred Predicate) ([]T, error)
}

// SliceSource serves an in-memory slice as a Source, evaluating predicates
// record by record.
type SliceSource[T any] struct {
	items []T
}

func NewSliceSource[T any](items []T) *SliceSource[T] {
	return &SliceSource[T]{items: items}
}

func (s *SliceSource[T]) Where(ctx context.Context, pred Predicate) ([]T, error) {
	if t := pred.Type(); t != nil && t != typeOf[T]() {
		return nil, ErrPredicateTypeMismatch
	}

	var result []T
	for i, item := range s.items {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if pred.Eval(item) {
			result = append(result, item)
		}
	}
	return result, nil
}

// CompileFor compiles a predicate over T.
func CompileFor[T any](e *Engine, query string, opts Options) (Predicate, error) {
	return e.Compile(typeOf[T](), query, opts)
}

// Filter keeps the items matching query. A blank query returns items as
// they are. The first error aborts the filter.
func Filter[T any](e *Engine, items []T, query string, opts Options) ([]T, error) {
	if len(Terms(query)) == 0 {
		if err := opts.Validate(); err != nil {
			return nil, err
		}
		return items, nil
	}

	var result []T
	for _, item := range items {
		ok, err := e.Matches(item, query, opts)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func typeOf[T any]() reflect.Type {
	return indirectType(reflect.TypeOf((*T)(nil)).Elem())
}
