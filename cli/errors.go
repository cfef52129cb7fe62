package cli

import (
	"errors"

	"github.com/MakeNowJust/heredoc"
)

var (
	ErrConfigNotFound = errors.New(heredoc.Doc(`
	Config file not found. Loading from defaults...

	Make a "quicksearch.yaml" file in the current directory, or pass one with --config.
	Settings can also be given as environment variables, e.g. QUICKSEARCH_SEARCH_MAX_SEARCH_DEPTH=2
`))

	errUnknownSource = errors.New("unknown source")
	errUnknownTarget = errors.New("unknown target")
	errMissingFile   = errors.New("a records file is required for the file source")
)
