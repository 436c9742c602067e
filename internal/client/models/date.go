package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date the backend uses for Entry.Date.
const DateLayout = "2006-01-02"

// DisplayDateLayout is the dd/mm/yyyy form shown in tables.
const DisplayDateLayout = "02/01/2006"

// Date is a calendar day without time of day.
//
// The backend serializes it as "2024-05-01"; depending on its Jackson setup
// it may also send [2024,5,1] or a full timestamp, all of which are accepted.
type Date struct {
	time.Time
}

// NewDate returns the Date for y-m-d in UTC.
func NewDate(y int, m time.Month, d int) Date {
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}

	if b[0] == '[' {
		var parts []int
		if err := json.Unmarshal(b, &parts); err != nil {
			return fmt.Errorf("date array: %w", err)
		}
		if len(parts) < 3 {
			return fmt.Errorf("date array: want [y,m,d], got %v", parts)
		}
		*d = NewDate(parts[0], time.Month(parts[1]), parts[2])
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = NewDate(t.Year(), t.Month(), t.Day())
			return nil
		}
	}
	return fmt.Errorf("date: unsupported format %q", s)
}

// Display formats the date as dd/mm/yyyy, or "-" when unknown.
func (d Date) Display() string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(DisplayDateLayout)
}
