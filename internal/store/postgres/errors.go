package postgres

import "errors"

var (
	ErrUnsupportedExpression = errors.New("expression cannot be translated to sql")

	errNilDBClient       = errors.New("db client is nil")
	errNilPostgresClient = errors.New("postgres client is nil")
	errEmptyTableName    = errors.New("table name is empty")
	errUndefinedColumn   = errors.New("undefined column")
	errUndefinedTable    = errors.New("undefined table")
	errQueryCanceled     = errors.New("query canceled")
	errInvalidText       = errors.New("invalid text representation")
)
