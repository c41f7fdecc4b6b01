package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/siherrmann/anonymizer/helper"
)

// EntityList is a session's entity collection, stored as JSONB in PostgreSQL.
type EntityList []*Entity

// Value implements the driver.Valuer interface for database storage
func (l EntityList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface for database retrieval
func (l *EntityList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// GroupList is a session's group collection, stored as JSONB in PostgreSQL.
type GroupList []*Group

// Value implements the driver.Valuer interface for database storage
func (l GroupList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface for database retrieval
func (l *GroupList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Value implements the driver.Valuer interface for database storage
func (d Document) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements the sql.Scanner interface for database retrieval
func (d *Document) Scan(value interface{}) error {
	return scanJSON(value, d)
}

// Value implements the driver.Valuer interface for database storage
func (s Statistics) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for database retrieval
func (s *Statistics) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// scanJSON converts JSONB bytes from the driver into the target value.
// A nil database value leaves the target at its zero value.
func scanJSON(value interface{}, target interface{}) error {
	if value == nil {
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, target)
}
