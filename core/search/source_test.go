package search_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/goto/quicksearch/core/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceSource(t *testing.T) {
	e := newEngine(t)
	src := search.NewSliceSource(missions())

	t.Run("should return records satisfying the predicate", func(t *testing.T) {
		pred, err := search.CompileFor[mission](e, "nasa", search.DefaultOptions())
		require.NoError(t, err)

		got, err := src.Where(context.Background(), pred)
		require.NoError(t, err)
		assert.Equal(t, []string{"Apollo", "Artemis"}, names(got))
	})

	t.Run("should return every record for the zero predicate", func(t *testing.T) {
		got, err := src.Where(context.Background(), search.Predicate{})
		require.NoError(t, err)
		assert.Len(t, got, len(missions()))
	})

	t.Run("should reject a predicate over another type", func(t *testing.T) {
		_, err := src.Where(context.Background(), search.True(reflect.TypeOf(person{})))
		assert.ErrorIs(t, err, search.ErrPredicateTypeMismatch)
	})

	t.Run("should stop when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := src.Where(ctx, search.Predicate{})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("should accept predicates compiled for pointer records", func(t *testing.T) {
		ptrs := search.NewSliceSource([]*mission{{Name: "Apollo"}, nil, {Name: "Gemini"}})
		pred, err := search.CompileFor[*mission](e, "gem", search.DefaultOptions())
		require.NoError(t, err)

		got, err := ptrs.Where(context.Background(), pred)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Gemini", got[0].Name)
	})
}

func TestFilter(t *testing.T) {
	e := newEngine(t)

	t.Run("should return items as they are for a blank query", func(t *testing.T) {
		items := missions()
		got, err := search.Filter(e, items, "", search.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, items, got)
	})

	t.Run("should validate options for a blank query", func(t *testing.T) {
		_, err := search.Filter(e, missions(), "", withOptions(func(o *search.Options) { o.MaxSearchDepth = -2 }))
		assert.ErrorAs(t, err, &search.ConfigError{})
	})

	t.Run("should abort on the first error", func(t *testing.T) {
		items := []interface{}{mission{Name: "Apollo"}, 12}
		_, err := search.Filter(e, items, "apollo", search.DefaultOptions())
		assert.ErrorAs(t, err, &search.UnsupportedTypeError{})
	})

	t.Run("should filter records of mixed types", func(t *testing.T) {
		items := []interface{}{mission{Name: "Apollo"}, person{Name: "Buzz", Age: 39}, &vehicle{Name: "Apollo LRV"}}
		got, err := search.Filter(e, items, "apollo", search.DefaultOptions())
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}
