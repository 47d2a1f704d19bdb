// file: internals/helpers/dates.go
package helper

import (
	"fmt"
	"strings"
	"time"
)

/* =========================
   Date & time-of-day helpers
========================= */

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"
)

func Ptr[T any](v T) *T { return &v }

// DateOnly drops the clock and pins the day to UTC midnight.
// All calendar math in the core runs on values normalized this way.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func Today() time.Time { return DateOnly(time.Now().UTC()) }

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, ErrInvalidArgument)
	}
	return DateOnly(t), nil
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// ParseTimeOfDay accepts "HH:mm" or "HH:mm:ss" and returns the canonical
// "HH:mm" form used for (client, date, start_time) matching.
func ParseTimeOfDay(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format(TimeOfDayLayout), nil
	}
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format(TimeOfDayLayout), nil
	}
	return "", fmt.Errorf("invalid time-of-day %q: %w", s, ErrInvalidArgument)
}

// ISOWeekday maps Go's Sunday=0 to ISO 1=Monday … 7=Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// EndOfNextMonth returns the last day of the calendar month after t's month.
func EndOfNextMonth(t time.Time) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 2, -1)
}

// WithinWindow reports whether day d falls inside [from, to], both ends
// inclusive at day granularity. A nil bound is open.
func WithinWindow(d time.Time, from, to *time.Time) bool {
	d = DateOnly(d)
	if from != nil && d.Before(DateOnly(*from)) {
		return false
	}
	if to != nil && d.After(DateOnly(*to)) {
		return false
	}
	return true
}

// WeeksBetween counts whole calendar weeks from base to target (negative when
// target precedes base).
func WeeksBetween(base, target time.Time) int {
	ad := DateOnly(base)
	bd := DateOnly(target)
	if bd.Before(ad) {
		return -int(ad.Sub(bd).Hours() / 24 / 7)
	}
	return int(bd.Sub(ad).Hours() / 24 / 7)
}

// WeekOfMonthISO returns the 1-based week-of-month with weeks starting Monday.
func WeekOfMonthISO(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	firstWeekStart := first
	for ISOWeekday(firstWeekStart) != 1 {
		firstWeekStart = firstWeekStart.AddDate(0, 0, -1)
	}
	days := int(DateOnly(t).Sub(DateOnly(firstWeekStart)).Hours() / 24)
	return (days / 7) + 1
}
