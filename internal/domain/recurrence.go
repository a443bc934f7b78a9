package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Recurrence tags a calendar event with how it repeats from its anchor date.
// The zero value is RecurrenceNone.
type Recurrence uint8

const (
	RecurrenceNone Recurrence = iota
	RecurrenceYearly
	RecurrenceMonthly
)

var ErrUnknownRecurrence = errors.New("unknown recurrence interval")

// ParseRecurrence maps the wire/storage form ("", "yearly", "monthly") to a Recurrence.
func ParseRecurrence(s string) (Recurrence, error) {
	switch s {
	case "":
		return RecurrenceNone, nil
	case "yearly":
		return RecurrenceYearly, nil
	case "monthly":
		return RecurrenceMonthly, nil
	}
	return RecurrenceNone, fmt.Errorf("%w: %q", ErrUnknownRecurrence, s)
}

// String returns "yearly", "monthly", or "" for RecurrenceNone.
func (r Recurrence) String() string {
	switch r {
	case RecurrenceYearly:
		return "yearly"
	case RecurrenceMonthly:
		return "monthly"
	default:
		return ""
	}
}

func (r Recurrence) MarshalJSON() ([]byte, error) {
	if r == RecurrenceNone {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

func (r *Recurrence) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = RecurrenceNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRecurrence(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores RecurrenceNone as SQL NULL.
func (r Recurrence) Value() (driver.Value, error) {
	if r == RecurrenceNone {
		return nil, nil
	}
	return r.String(), nil
}

func (r *Recurrence) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = RecurrenceNone
		return nil
	case string:
		parsed, err := ParseRecurrence(v)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	case []byte:
		return r.Scan(string(v))
	}
	return fmt.Errorf("cannot scan %T into Recurrence", src)
}
