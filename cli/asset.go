package cli

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// Asset is the record the store sources serve: a row of a postgres table
// or a document of an elasticsearch index.
type Asset struct {
	ID          uuid.UUID `db:"id" json:"id" search:"-"`
	URN         string    `db:"urn" json:"urn"`
	Type        string    `db:"type" json:"type"`
	Service     string    `db:"service" json:"service"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Owner       *Owner    `db:"owner" json:"owner"`
}

// Owner is stored as a jsonb column.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (o Owner) Value() (driver.Value, error) {
	return json.Marshal(o)
}

func (o *Owner) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		return nil
	default:
		return errors.New("failed type assertion to []byte")
	}
	return json.Unmarshal(b, o)
}

var assetColumns = []string{"id", "urn", "type", "service", "name", "description", "owner"}

func (a Asset) row() []string {
	owner := ""
	if a.Owner != nil {
		owner = a.Owner.Name
	}
	return []string{a.URN, a.Type, a.Service, a.Name, owner}
}
