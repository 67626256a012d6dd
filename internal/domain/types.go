package domain

import (
	"fmt"
	"time"

	"github.com/cesargomez89/walkmlb/internal/constants"
)

// ParseDate parses a YYYY-MM-DD calendar date. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(constants.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q (want YYYY-MM-DD)", ErrInvalidConfig, s)
	}
	return d, nil
}

// FormatDate renders the calendar date part of t.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateLayout)
}

// DateIn returns the calendar date of t as observed in loc, as midnight UTC.
func DateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
