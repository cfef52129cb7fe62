package postgres_test

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"

	"github.com/goto/quicksearch/internal/store/postgres"
	"github.com/goto/quicksearch/internal/testutils"
	"github.com/goto/salt/log"
)

type teamData struct {
	Name string `json:"name"`
}

type ownerData struct {
	Name string    `json:"name"`
	Team *teamData `json:"team,omitempty"`
}

func (o ownerData) Value() (driver.Value, error) {
	return json.Marshal(o)
}

func (o *ownerData) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("failed type assertion to []byte")
	}
	return json.Unmarshal(b, o)
}

type assetRow struct {
	URN     string     `db:"urn" json:"urn"`
	Name    string     `db:"name" json:"name"`
	Version float64    `db:"version" json:"version"`
	Owner   *ownerData `db:"owner" json:"owner"`
}

func newTestClient(t *testing.T, logger log.Logger) (*postgres.Client, error) {
	t.Helper()

	port, err := testutils.RunTestPG(t, logger)
	if err != nil {
		return nil, err
	}

	pgClient, err := postgres.NewClient(postgres.Config{
		Host:     testutils.PGHost,
		Port:     port,
		Name:     testutils.PGName,
		User:     testutils.PGUsername,
		Password: testutils.PGPassword,
	})
	if err != nil {
		return nil, err
	}

	t.Cleanup(func() {
		if err := pgClient.Close(); err != nil {
			t.Fatal(err)
		}
	})

	return pgClient, nil
}
