package helpers

import (
	"fmt"
	"time"
)

const (
	// DayMonthYearLayout is the layout operators type birthdates in (d/m/Y).
	DayMonthYearLayout = "02/01/2006"
	// ISODateLayout is the layout dates are persisted in (Y-m-d).
	ISODateLayout = "2006-01-02"
)

// DateFormatError reports a date string that does not match the expected layout.
type DateFormatError struct {
	Value  string
	Layout string
	Err    error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("date %q does not match layout %q", e.Value, e.Layout)
}

func (e *DateFormatError) Unwrap() error { return e.Err }

// ChangeDateFormat parses date strictly with fromLayout and re-formats it with toLayout.
func ChangeDateFormat(date, fromLayout, toLayout string) (string, error) {
	t, err := ParseDate(date, fromLayout)
	if err != nil {
		return "", err
	}
	return t.Format(toLayout), nil
}

// NormalizeDate converts a d/m/Y date into its ISO Y-m-d form.
func NormalizeDate(date string) (string, error) {
	return ChangeDateFormat(date, DayMonthYearLayout, ISODateLayout)
}

// ParseDate parses date with layout, returning a *DateFormatError on mismatch.
func ParseDate(date, layout string) (time.Time, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return time.Time{}, &DateFormatError{Value: date, Layout: layout, Err: err}
	}
	return t, nil
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
