package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON stores free-form annotation on ledger entries as jsonb.
type JSON map[string]interface{}

// NewJSON copies m into a JSON value, returning nil for empty input so
// empty metadata stays NULL in storage.
func NewJSON(m map[string]interface{}) JSON {
	if len(m) == 0 {
		return nil
	}
	out := make(JSON, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Value implements the driver.Valuer interface.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("unsupported jsonb source type")
	}
	return json.Unmarshal(bytes, j)
}
