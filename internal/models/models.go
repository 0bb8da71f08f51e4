// Package models holds the gorm records of the internship workflow.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// All lists every model in migration order.
func All() []any {
	return []any{
		&Permission{}, &Profile{}, &User{}, &Offre{}, &Candidature{}, &Convocation{},
		&Entente{}, &Evaluation{}, &Notification{},
	}
}

// JSONMap is a string map stored as a JSON text column.
type JSONMap map[string]string

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("JSONMap: unsupported type %T", src)
	}
	if len(b) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(b, m)
}
