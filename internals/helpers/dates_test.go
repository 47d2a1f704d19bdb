package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-05-06")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.May, got.Month())
	assert.Equal(t, 6, got.Day())
	assert.Equal(t, time.UTC, got.Location())

	_, err = ParseDate("06/05/2024")
	assert.Error(t, err)
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:30", want: "09:30"},
		{in: "09:30:00", want: "09:30"},
		{in: "23:59", want: "23:59"},
		{in: "9:30", want: "09:30"},
		{in: "25:00", wantErr: true},
		{in: "morning", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestISOWeekday(t *testing.T) {
	assert.Equal(t, 1, ISOWeekday(d("2024-05-06"))) // Monday
	assert.Equal(t, 7, ISOWeekday(d("2024-05-05"))) // Sunday
	assert.Equal(t, 4, ISOWeekday(d("2024-05-09"))) // Thursday
}

func TestEndOfNextMonth(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-05-06", "2024-06-30"},
		{"2024-01-31", "2024-02-29"}, // leap year
		{"2023-12-15", "2024-01-31"},
		{"2024-11-30", "2024-12-31"},
	}
	for _, tc := range tests {
		assert.Equal(t, d(tc.want), EndOfNextMonth(d(tc.in)), tc.in)
	}
}

func TestWithinWindow(t *testing.T) {
	from := d("2024-05-01")
	to := d("2024-05-31")

	assert.True(t, WithinWindow(d("2024-05-01"), &from, &to))
	assert.True(t, WithinWindow(d("2024-05-31"), &from, &to))
	assert.False(t, WithinWindow(d("2024-04-30"), &from, &to))
	assert.False(t, WithinWindow(d("2024-06-01"), &from, &to))

	// Open-ended bounds.
	assert.True(t, WithinWindow(d("2099-01-01"), &from, nil))
	assert.True(t, WithinWindow(d("1999-01-01"), nil, &to))
	assert.True(t, WithinWindow(d("2024-05-15"), nil, nil))
}

func TestWeeksBetween(t *testing.T) {
	start := d("2024-05-06") // Monday
	assert.Equal(t, 0, WeeksBetween(start, d("2024-05-06")))
	assert.Equal(t, 0, WeeksBetween(start, d("2024-05-12")))
	assert.Equal(t, 1, WeeksBetween(start, d("2024-05-13")))
	assert.Equal(t, 4, WeeksBetween(start, d("2024-06-03")))
}

func TestWeekOfMonthISO(t *testing.T) {
	// Weeks start Monday; the partial week holding the 1st counts as week 1.
	assert.Equal(t, 1, WeekOfMonthISO(d("2024-05-01")))
	assert.Equal(t, 1, WeekOfMonthISO(d("2024-05-05")))
	assert.Equal(t, 2, WeekOfMonthISO(d("2024-05-06")))
	assert.Equal(t, 3, WeekOfMonthISO(d("2024-05-13")))
	assert.Equal(t, 5, WeekOfMonthISO(d("2024-05-31")))
}
