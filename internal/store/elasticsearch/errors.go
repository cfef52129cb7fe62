package elasticsearch

import (
	"errors"
	"strings"
)

var (
	ErrUnsupportedExpression = errors.New("expression cannot be translated to an elasticsearch query")

	errNilClient      = errors.New("elasticsearch client is nil")
	errEmptyIndexName = errors.New("index name is empty")
)

// SearchError reports a failed search against an index.
type SearchError struct {
	Op     string
	Index  string
	ESCode string
	Err    error
}

func (err SearchError) Error() string {
	var s strings.Builder
	s.WriteString("search error: ")
	if err.Op != "" {
		s.WriteString(err.Op + ": ")
	}
	if err.Index != "" {
		s.WriteString("index '" + err.Index + "': ")
	}
	if err.ESCode != "" {
		s.WriteString("elasticsearch code '" + err.ESCode + "': ")
	}
	s.WriteString(err.Err.Error())
	return s.String()
}

func (err SearchError) Unwrap() error {
	return err.Err
}
