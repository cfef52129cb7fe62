package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
)

// DefaultMaxResultSize caps the rows a repository returns when no limit is set.
const DefaultMaxResultSize = 1000

// Client is a thin wrapper over sqlx.
type Client struct {
	db *sqlx.DB
}

// NewClient initializes database connection
func NewClient(cfg Config) (*Client, error) {
	db, err := sqlx.Connect("pgx", cfg.ConnectionURL().String())
	if err != nil {
		return nil, fmt.Errorf("error creating and connecting DB: %w", err)
	}
	if db == nil {
		return nil, errNilDBClient
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &Client{db: db}, nil
}

// NewClientWithDB wraps an already opened pgx database.
func NewClientWithDB(db *sql.DB) *Client {
	return &Client{db: sqlx.NewDb(db, "pgx")}
}

func (c *Client) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return c.db.SelectContext(ctx, dest, query, args...)
}

// ExecQueries is used for executing list of db query
func (c *Client) ExecQueries(ctx context.Context, queries []string) error {
	for _, query := range queries {
		if _, err := c.db.ExecContext(ctx, query); err != nil {
			return checkPostgresError(err)
		}
	}
	return nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

type sqlBuilder interface {
	ToSql() (string, []interface{}, error)
}

func buildSQL(builder sqlBuilder) (query string, args []interface{}, err error) {
	query, args, err = builder.ToSql()
	if err != nil {
		err = fmt.Errorf("error transforming to sql: %w", err)
		return
	}
	query, err = sq.Dollar.ReplacePlaceholders(query)
	if err != nil {
		err = fmt.Errorf("error replacing placeholders to dollar: %w", err)
		return
	}

	return
}

func checkPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UndefinedColumn:
			return fmt.Errorf("%w [%s]", errUndefinedColumn, pgErr.Message)
		case pgerrcode.UndefinedTable:
			return fmt.Errorf("%w [%s]", errUndefinedTable, pgErr.Message)
		case pgerrcode.QueryCanceled:
			return fmt.Errorf("%w [%s]", errQueryCanceled, pgErr.Message)
		case pgerrcode.InvalidTextRepresentation:
			return fmt.Errorf("%w [%s]", errInvalidText, pgErr.Message)
		}
	}
	return err
}
