package search

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrContradictoryOptions  = errors.New("search options exclude every included column")
	ErrPredicateTypeMismatch = errors.New("predicates are over different record types")
	ErrTooManyFieldPaths     = errors.New("query expands to too many field paths")
)

// UnsupportedTypeError is returned when a record type exposes no readable fields.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (err UnsupportedTypeError) Error() string {
	if err.Type == nil {
		return "unsupported record type: <nil>"
	}
	return fmt.Sprintf("unsupported record type %s: no readable fields", err.Type)
}

// UnsupportedFieldPathError is returned by Compile when a configured column
// cannot be resolved against the record type within the search depth.
type UnsupportedFieldPathError struct {
	Type reflect.Type
	Path string
}

func (err UnsupportedFieldPathError) Error() string {
	return fmt.Sprintf("cannot resolve field path %q on %s", err.Path, err.Type)
}

type ConfigErrorKind int

const (
	ConfigInvalid ConfigErrorKind = iota + 1
	ConfigContradictory
)

func (k ConfigErrorKind) String() string {
	switch k {
	case ConfigInvalid:
		return "invalid"
	case ConfigContradictory:
		return "contradictory"
	}
	return "unknown"
}

// ConfigError reports search options that cannot be used.
type ConfigError struct {
	Kind  ConfigErrorKind
	Field string
	Err   error
}

func (err ConfigError) Error() string {
	var s strings.Builder
	s.WriteString("search options ")
	s.WriteString(err.Kind.String())
	if err.Field != "" {
		s.WriteString(": " + err.Field)
	}
	if err.Err != nil {
		s.WriteString(": " + err.Err.Error())
	}
	return s.String()
}

func (err ConfigError) Unwrap() error {
	return err.Err
}
