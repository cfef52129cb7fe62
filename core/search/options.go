package search

import (
	"fmt"
	"strings"

	"github.com/goto/quicksearch/core/validator"
	"github.com/goto/quicksearch/lib/set"
)

// Operator combines the per-term results of a multi-term query.
type Operator string

const (
	OperatorAnd Operator = "and"
	OperatorOr  Operator = "or"
)

func (op Operator) String() string {
	if op == "" {
		return string(OperatorAnd)
	}
	return string(op)
}

// Options configures a quick search. The zero value searches top-level
// fields only; use DefaultOptions for the documented defaults.
type Options struct {
	// IncludeChildProperties enables traversal into nested object fields.
	IncludeChildProperties bool `json:"include_child_properties" yaml:"include_child_properties" mapstructure:"include_child_properties" default:"true"`

	// ExactMatch compares whole field values instead of substrings.
	ExactMatch bool `json:"exact_match" yaml:"exact_match" mapstructure:"exact_match" default:"false"`

	CaseSensitive bool `json:"case_sensitive" yaml:"case_sensitive" mapstructure:"case_sensitive" default:"false"`

	// ColumnNames restricts the search to these fields. Entries are field
	// names or dotted paths, compared case-insensitively. Empty means all.
	ColumnNames []string `json:"column_names" yaml:"column_names" mapstructure:"column_names"`

	// ExcludedColumns removes fields from the search, winning over ColumnNames.
	ExcludedColumns []string `json:"excluded_columns" yaml:"excluded_columns" mapstructure:"excluded_columns"`

	MultiTermOperator Operator `json:"multi_term_operator" yaml:"multi_term_operator" mapstructure:"multi_term_operator" default:"and" validate:"omitempty,oneof=and or"`

	// MaxSearchDepth bounds nested traversal. 0 searches the record's own
	// fields only, 1 adds first-level children and so on.
	MaxSearchDepth int `json:"max_search_depth" yaml:"max_search_depth" mapstructure:"max_search_depth" default:"1" validate:"gte=0"`
}

func DefaultOptions() Options {
	return Options{
		IncludeChildProperties: true,
		MultiTermOperator:      OperatorAnd,
		MaxSearchDepth:         1,
	}
}

// Validate rejects options that cannot be searched with. Unknown column
// names are accepted: in a polymorphic collection the field set depends on
// the runtime type of each element.
func (o Options) Validate() error {
	if err := validator.ValidateStruct(o); err != nil {
		return ConfigError{Kind: ConfigInvalid, Err: err}
	}

	if len(o.ColumnNames) > 0 && len(o.ExcludedColumns) > 0 {
		included := set.NewFoldedSet(o.ColumnNames...)
		excluded := set.NewFoldedSet(o.ExcludedColumns...)
		if excluded.ContainsAll(included) {
			return ConfigError{
				Kind:  ConfigContradictory,
				Field: "excluded_columns",
				Err:   ErrContradictoryOptions,
			}
		}
	}

	return nil
}

func (o Options) operator() Operator {
	if o.MultiTermOperator == "" {
		return OperatorAnd
	}
	return o.MultiTermOperator
}

func (o Options) mode() Mode {
	if o.ExactMatch {
		return ModeEquals
	}
	return ModeContains
}

// nestingAllowed reports whether fields at depth may be descended into.
func (o Options) nestingAllowed(depth int) bool {
	return o.IncludeChildProperties && depth < o.MaxSearchDepth
}

// fingerprint is a canonical rendering used as a cache key.
func (o Options) fingerprint() string {
	return fmt.Sprintf("c=%t|e=%t|cs=%t|in=%s|ex=%s|op=%s|d=%d",
		o.IncludeChildProperties,
		o.ExactMatch,
		o.CaseSensitive,
		strings.Join(set.NewFoldedSet(o.ColumnNames...).Values(), ","),
		strings.Join(set.NewFoldedSet(o.ExcludedColumns...).Values(), ","),
		o.operator(),
		o.MaxSearchDepth,
	)
}

// columnFilter applies the allow and deny lists to a field.
type columnFilter struct {
	allow set.StringSet
	deny  set.StringSet
}

func newColumnFilter(o Options) columnFilter {
	return columnFilter{
		allow: set.NewFoldedSet(o.ColumnNames...),
		deny:  set.NewFoldedSet(o.ExcludedColumns...),
	}
}

// admit reports whether the field named name at path takes part in the
// search, and whether its whole subtree does. A nested field is also entered
// when an allowed dotted path runs through it.
func (f columnFilter) admit(name, path string, nested, inherited bool) (ok, subtree bool) {
	if f.deny.HasFold(name) || f.deny.HasFold(path) {
		return false, false
	}
	if len(f.allow) == 0 || inherited {
		return true, true
	}
	if f.allow.HasFold(name) || f.allow.HasFold(path) {
		return true, true
	}
	if nested && f.leadsThrough(path) {
		return true, false
	}
	return false, false
}

func (f columnFilter) leadsThrough(path string) bool {
	prefix := strings.ToLower(path) + "."
	for entry := range f.allow {
		if strings.HasPrefix(entry, prefix) {
			return true
		}
	}
	return false
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
