package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateRange_Boundaries(t *testing.T) {
	now := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)
	today := date(2024, 6, 1)

	days, err := ValidateRange(today, today.AddDate(0, 0, 1), now)
	require.NoError(t, err, "start today is accepted even late in the day")
	assert.Equal(t, 1, days)

	_, err = ValidateRange(today.AddDate(0, 0, -1), today.AddDate(0, 0, 2), now)
	assert.ErrorIs(t, err, ErrStartInPast)

	_, err = ValidateRange(today, today, now)
	assert.ErrorIs(t, err, ErrEndBeforeStart)

	_, err = ValidateRange(today.AddDate(0, 0, 3), today.AddDate(0, 0, 2), now)
	assert.ErrorIs(t, err, ErrEndBeforeStart)

	days, err = ValidateRange(today, today.AddDate(0, 0, 365), now)
	require.NoError(t, err)
	assert.Equal(t, 365, days)

	_, err = ValidateRange(today, today.AddDate(0, 0, 366), now)
	assert.ErrorIs(t, err, ErrRangeTooLong)
}

func TestValidateRange_MissingDates(t *testing.T) {
	_, err := ValidateRange(time.Time{}, date(2024, 6, 3), date(2024, 6, 1))
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestValidateRange_PastCheckedBeforeOrder(t *testing.T) {
	_, err := ValidateRange(date(2024, 5, 1), date(2024, 4, 1), date(2024, 6, 1))
	assert.ErrorIs(t, err, ErrStartInPast)
}

func TestCountDays_Ceiling(t *testing.T) {
	start := date(2024, 6, 10)

	assert.Equal(t, 3, CountDays(start, date(2024, 6, 13)))
	assert.Equal(t, 2, CountDays(start, start.Add(24*time.Hour+time.Millisecond)))
	assert.Equal(t, 1, CountDays(start, start.Add(time.Hour)))
}

func TestCountDays_IgnoresCalendarMonths(t *testing.T) {
	assert.Equal(t, 29, CountDays(date(2024, 2, 1), date(2024, 3, 1)))
	assert.Equal(t, 31, CountDays(date(2024, 3, 1), date(2024, 4, 1)))
}

func TestTotalPrice_MatchesDaysTimesRate(t *testing.T) {
	for days := 1; days <= MaxDays; days += 37 {
		assert.Equal(t, float64(days)*89.5, TotalPrice(days, 89.5))
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 6, 10), d)

	d, err = ParseDate("2024-06-10T23:15:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 6, 10), d)

	_, err = ParseDate("10/06/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseDate_KeepsWrittenDateAcrossOffsets(t *testing.T) {
	cases := map[string]time.Time{
		"2024-06-10T00:00:00+05:00": date(2024, 6, 10),
		"2024-06-10T22:30:00-07:00": date(2024, 6, 10),
		"2024-06-10T12:00:00Z":      date(2024, 6, 10),
	}
	for in, want := range cases {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
