package core

import (
	"strings"
	"time"
)

const (
	// canonicalLayout is the single stored date representation.
	canonicalLayout = "2006-01-02"
	// inputLayout is the alternative user-entry format.
	inputLayout = "02/01/2006"

	monthKeyLayout = "2006-01"
)

// Date is a calendar date with no time component and no zone.
type Date struct {
	time.Time
}

// MonthKey identifies a calendar month as "YYYY-MM". It is the sole
// grouping key for aggregation: records sharing year and month collapse
// into one bucket regardless of day.
type MonthKey string

// ParseDate normalizes a user-supplied date string. Exactly two input
// shapes are accepted: DD/MM/YYYY and YYYY-MM-DD. A slash anywhere in the
// input selects the DD/MM/YYYY layout; everything else is tried as
// YYYY-MM-DD. Out-of-range day or month values fail.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrDateFormat
	}

	layout := canonicalLayout
	if strings.Contains(s, "/") {
		layout = inputLayout
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, ErrDateFormat
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// String returns the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(canonicalLayout)
}

// Key returns the month bucket this date belongs to.
func (d Date) Key() MonthKey {
	return MonthKey(d.Format(monthKeyLayout))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrDateFormat
	}
	return nil
}

// MonthKeyOf builds the key for a given year and month.
func MonthKeyOf(year, month int) MonthKey {
	return NewDate(year, month, 1).Key()
}
