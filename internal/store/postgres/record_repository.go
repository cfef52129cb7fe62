package postgres

import (
	"context"
	"fmt"
	"reflect"

	sq "github.com/Masterminds/squirrel"
	"github.com/goto/quicksearch/core/search"
)

// RecordRepository serves the rows of one table as a search source. Rows
// are scanned into T with sqlx, so T maps columns through db tags.
type RecordRepository[T any] struct {
	client  *Client
	table   string
	columns []string
	orderBy string
	limit   uint64
}

type RecordRepositoryOption[T any] func(*RecordRepository[T])

// WithColumns selects these columns instead of every column of the table.
func WithColumns[T any](columns ...string) RecordRepositoryOption[T] {
	return func(r *RecordRepository[T]) {
		r.columns = columns
	}
}

// WithOrderBy sorts the rows, e.g. "name ASC".
func WithOrderBy[T any](orderBy string) RecordRepositoryOption[T] {
	return func(r *RecordRepository[T]) {
		r.orderBy = orderBy
	}
}

// WithLimit caps the returned rows. Zero falls back to DefaultMaxResultSize.
func WithLimit[T any](limit uint64) RecordRepositoryOption[T] {
	return func(r *RecordRepository[T]) {
		r.limit = limit
	}
}

func NewRecordRepository[T any](c *Client, table string, opts ...RecordRepositoryOption[T]) (*RecordRepository[T], error) {
	if c == nil {
		return nil, errNilPostgresClient
	}
	if table == "" {
		return nil, errEmptyTableName
	}

	r := &RecordRepository[T]{
		client: c,
		table:  table,
		limit:  DefaultMaxResultSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.limit == 0 {
		r.limit = DefaultMaxResultSize
	}
	return r, nil
}

// Where returns the rows satisfying pred.
func (r *RecordRepository[T]) Where(ctx context.Context, pred search.Predicate) ([]T, error) {
	query, args, err := r.buildQuery(pred)
	if err != nil {
		return nil, err
	}

	var records []T
	if err := r.client.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("error searching %s: %w", r.table, checkPostgresError(err))
	}
	return records, nil
}

func (r *RecordRepository[T]) buildQuery(pred search.Predicate) (string, []interface{}, error) {
	recordType := reflect.TypeOf((*T)(nil)).Elem()
	for recordType.Kind() == reflect.Ptr {
		recordType = recordType.Elem()
	}
	if t := pred.Type(); t != nil && t != recordType {
		return "", nil, search.ErrPredicateTypeMismatch
	}

	where, err := Translate(pred)
	if err != nil {
		return "", nil, err
	}

	columns := r.columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}

	builder := sq.Select(columns...).From(r.table).Where(where).Limit(r.limit)
	if r.orderBy != "" {
		builder = builder.OrderBy(r.orderBy)
	}

	query, args, err := buildSQL(builder)
	if err != nil {
		return "", nil, fmt.Errorf("error building search query: %w", err)
	}
	return query, args, nil
}
