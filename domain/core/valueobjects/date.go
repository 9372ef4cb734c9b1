package valueobjects

import (
	"errors"
	"time"
)

// dateLayout is the wire and storage format for calendar dates.
const dateLayout = "2006-01-02"

// Date is a calendar date with no time component, used for birth dates.
type Date struct {
	value time.Time
}

// NewDate creates a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{value: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// NewDateFromString parses a Date in YYYY-MM-DD form.
func NewDateFromString(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, errors.New("date must be in YYYY-MM-DD format")
	}
	return Date{value: t}, nil
}

// NewDateFromTime truncates a time.Time to its calendar date.
func NewDateFromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Time returns the date as a time.Time at midnight UTC.
func (d Date) Time() time.Time {
	return d.value
}

// String returns the YYYY-MM-DD representation.
func (d Date) String() string {
	return d.value.Format(dateLayout)
}

// Equals checks if two Dates are equal
func (d Date) Equals(other Date) bool {
	return d.value.Equal(other.value)
}

// IsZero checks if the Date is the zero value
func (d Date) IsZero() bool {
	return d.value.IsZero()
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("date must be a string")
	}
	parsed, err := NewDateFromString(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
