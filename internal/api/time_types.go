package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/bulk"
)

// Date is a calendar date carried as "YYYY-MM-DD" in JSON, the same layout
// the CSV format uses.
type Date struct {
	time.Time
}

// NewDate returns the date part of t in UTC.
func NewDate(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// UnmarshalJSON parses a "YYYY-MM-DD" string. null and "" leave the zero date.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(bulk.DateLayout, s)
	if err != nil {
		return fmt.Errorf("cannot parse date %q, expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

// MarshalJSON outputs the date as "YYYY-MM-DD", or null for the zero date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(bulk.DateLayout))
}

// Schema describes Date in the OpenAPI document.
func (Date) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:        huma.TypeString,
		Format:      "date",
		Description: "Calendar date, YYYY-MM-DD",
		Examples:    []any{"1965-08-01"},
	}
}
