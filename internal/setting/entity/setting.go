package entity

import (
	"encoding/json"
	"time"
)

// Setting is a single keyed configuration record. Values are opaque JSON
// documents; consumers own their shape (homepage section order, site
// metadata, payment instructions, ...).
type Setting struct {
	Key       string          `json:"key" db:"key"`
	Value     json.RawMessage `json:"value" db:"value"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
