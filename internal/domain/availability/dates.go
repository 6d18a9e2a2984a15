package availability

import (
	"math"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	MaxDays    = 365

	msPerDay = 86_400_000
)

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the calendar date at
// UTC midnight. An RFC 3339 value keeps the date written in its own offset.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CountDays is ceil((end-start) / 1 day) at millisecond granularity.
func CountDays(start, end time.Time) int {
	ms := end.Sub(start).Milliseconds()
	return int(math.Ceil(float64(ms) / msPerDay))
}

// TotalPrice is the only place a stay is priced.
func TotalPrice(days int, rentPerDay float64) float64 {
	return float64(days) * rentPerDay
}

// ValidateRange applies the date rules in order and returns the day count.
func ValidateRange(start, end, today time.Time) (int, error) {
	if start.IsZero() || end.IsZero() {
		return 0, ErrMissingFields
	}
	if start.Before(DateOf(today)) {
		return 0, ErrStartInPast
	}
	if !end.After(start) {
		return 0, ErrEndBeforeStart
	}
	days := CountDays(start, end)
	if days > MaxDays {
		return 0, ErrRangeTooLong
	}
	return days, nil
}
