package set

import (
	"sort"
	"strings"
)

// StringSet is a lightweight set implementation for strings
// allow'ing (set) map-like access in code.
type StringSet map[string]bool

// NewStringSet builds a set holding values as given.
func NewStringSet(values ...string) StringSet {
	ss := make(StringSet, len(values))
	for _, value := range values {
		ss.Add(value)
	}
	return ss
}

// NewFoldedSet builds a set of lower-cased values, for case-insensitive lookups
// through HasFold.
func NewFoldedSet(values ...string) StringSet {
	ss := make(StringSet, len(values))
	for _, value := range values {
		ss.Add(strings.ToLower(value))
	}
	return ss
}

func (ss StringSet) Add(v string) StringSet {
	ss[v] = true
	return ss
}

func (ss StringSet) Has(v string) bool {
	return ss[v]
}

// HasFold looks v up lower-cased. Only meaningful on sets built by NewFoldedSet.
func (ss StringSet) HasFold(v string) bool {
	return ss[strings.ToLower(v)]
}

// ContainsAll reports whether every value of other is in ss.
func (ss StringSet) ContainsAll(other StringSet) bool {
	for v := range other {
		if !ss[v] {
			return false
		}
	}
	return true
}

// Values returns the members in sorted order.
func (ss StringSet) Values() []string {
	values := make([]string, 0, len(ss))
	for v := range ss {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
