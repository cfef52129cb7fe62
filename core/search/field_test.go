package search_test

import (
	"reflect"
	"sync"
	"testing"

	"github.com/goto/quicksearch/core/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type base struct {
	ID string `db:"id" json:"id"`
}

type tagged struct {
	base
	Title    string            `db:"title" json:"title,omitempty"`
	Score    float64           `json:"-"`
	Labels   []string
	Meta     map[string]string `db:"meta"`
	Any      interface{}
	Ref      *owner
	Skipped  string `search:"-"`
	internal string
}

func TestFieldCacheGetFields(t *testing.T) {
	cache := search.NewFieldCache()

	fields, err := cache.GetFields(reflect.TypeOf(&tagged{}))
	require.NoError(t, err)

	type expected struct {
		Name   string
		Column string
		Key    string
		Kind   search.FieldKind
		Text   bool
	}
	var got []expected
	for _, f := range fields {
		got = append(got, expected{Name: f.Name, Column: f.Column, Key: f.Key, Kind: f.Kind, Text: f.Text})
	}

	assert.Equal(t, []expected{
		{Name: "ID", Column: "id", Key: "id", Kind: search.FieldScalar, Text: true},
		{Name: "Title", Column: "title", Key: "title", Kind: search.FieldScalar, Text: true},
		{Name: "Score", Column: "score", Key: "Score", Kind: search.FieldScalar},
		{Name: "Meta", Column: "meta", Key: "Meta", Kind: search.FieldDynamic},
		{Name: "Any", Column: "any", Key: "Any", Kind: search.FieldDynamic},
		{Name: "Ref", Column: "ref", Key: "Ref", Kind: search.FieldNested},
	}, got)

	again, err := cache.GetFields(reflect.TypeOf(tagged{}))
	require.NoError(t, err)
	assert.Equal(t, fields, again)
	assert.Equal(t, 1, cache.Len())
}

func TestFieldCacheErrors(t *testing.T) {
	cache := search.NewFieldCache()

	_, err := cache.GetFields(reflect.TypeOf(hidden{}))
	assert.ErrorAs(t, err, &search.UnsupportedTypeError{})

	_, err = cache.GetFields(reflect.TypeOf(""))
	assert.ErrorAs(t, err, &search.UnsupportedTypeError{})

	_, err = cache.GetFields(nil)
	assert.ErrorAs(t, err, &search.UnsupportedTypeError{})

	assert.Equal(t, 0, cache.Len())
}

func TestFieldCacheConcurrentAccess(t *testing.T) {
	cache := search.NewFieldCache()
	types := []reflect.Type{
		reflect.TypeOf(mission{}),
		reflect.TypeOf(&owner{}),
		reflect.TypeOf(tagged{}),
		reflect.TypeOf(node{}),
	}

	var wg sync.WaitGroup
	results := make([][]search.FieldDescriptor, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fields, err := cache.GetFields(types[i%len(types)])
			if err == nil {
				results[i] = fields
			}
		}(i)
	}
	wg.Wait()

	for i, fields := range results {
		want, err := cache.GetFields(types[i%len(types)])
		require.NoError(t, err)
		assert.Equal(t, want, fields)
	}
	assert.Equal(t, len(types), cache.Len())
}

func TestFieldKindString(t *testing.T) {
	assert.Equal(t, "scalar", search.FieldScalar.String())
	assert.Equal(t, "nested", search.FieldNested.String())
	assert.Equal(t, "dynamic", search.FieldDynamic.String())
	assert.Equal(t, "unknown", search.FieldKind(0).String())
}
