package search_test

import (
	"reflect"
	"testing"

	"github.com/goto/quicksearch/core/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicateCombinators(t *testing.T) {
	e := newEngine(t)
	opts := search.DefaultOptions()

	nasa, err := e.Compile(missionType, "nasa", opts)
	require.NoError(t, err)
	sixties, err := e.Compile(missionType, "196", opts)
	require.NoError(t, err)

	t.Run("should conjoin predicates", func(t *testing.T) {
		both, err := nasa.And(sixties)
		require.NoError(t, err)
		assert.Equal(t, missionType, both.Type())

		var got []string
		for _, m := range missions() {
			if both.Eval(m) {
				got = append(got, m.Name)
			}
		}
		assert.Equal(t, []string{"Apollo"}, got)
	})

	t.Run("should disjoin predicates", func(t *testing.T) {
		either, err := nasa.Or(sixties)
		require.NoError(t, err)

		var got []string
		for _, m := range missions() {
			if either.Eval(m) {
				got = append(got, m.Name)
			}
		}
		assert.Equal(t, []string{"Apollo", "Vostok", "Artemis"}, got)
	})

	t.Run("should negate a predicate", func(t *testing.T) {
		assert.False(t, nasa.Not().Eval(missions()[0]))
		assert.True(t, nasa.Not().Eval(missions()[1]))
		assert.Equal(t, "NOT "+nasa.String(), nasa.Not().String())
	})

	t.Run("should take the type of typed predicates", func(t *testing.T) {
		var zero search.Predicate
		assert.True(t, zero.IsZero())
		assert.Equal(t, "TRUE", zero.String())
		assert.True(t, zero.Eval(missions()[0]))

		joined, err := zero.And(nasa)
		require.NoError(t, err)
		assert.Equal(t, missionType, joined.Type())
		assert.Equal(t, "(TRUE AND "+nasa.String()+")", joined.String())
	})

	t.Run("should reject predicates over different types", func(t *testing.T) {
		people := search.True(reflect.TypeOf(person{}))
		_, err := nasa.And(people)
		assert.ErrorIs(t, err, search.ErrPredicateTypeMismatch)
		_, err = nasa.Or(search.Predicate{}, people)
		assert.ErrorIs(t, err, search.ErrPredicateTypeMismatch)
	})

	t.Run("should not hold for records of another type", func(t *testing.T) {
		assert.False(t, search.True(missionType).Eval(person{Name: "nasa"}))
		assert.False(t, search.True(missionType).Eval(nil))
		assert.False(t, search.True(missionType).Eval((*mission)(nil)))
	})
}

func TestBuildPlan(t *testing.T) {
	type testCase struct {
		Description string
		Query       string
		Options     search.Options
		Expected    string
	}

	var testCases = []testCase{
		{
			Description: "should plan a blank query as true",
			Query:       " \t ",
			Options:     search.DefaultOptions(),
			Expected:    "TRUE",
		},
		{
			Description: "should plan a single term without a conjunction",
			Query:       "apollo",
			Options:     search.DefaultOptions(),
			Expected:    `* CONTAINS "apollo"`,
		},
		{
			Description: "should plan terms with the configured operator",
			Query:       "apollo  nasa",
			Options: withOptions(func(o *search.Options) {
				o.MultiTermOperator = search.OperatorOr
				o.ExactMatch = true
				o.CaseSensitive = true
			}),
			Expected: `(* EQUALS "apollo" CASE OR * EQUALS "nasa" CASE)`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Description, func(t *testing.T) {
			assert.Equal(t, tc.Expected, search.BuildPlan(tc.Query, tc.Options).String())
		})
	}
}
