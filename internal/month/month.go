// Package month provides "YYYY-MM" month key parsing and the UTC calendar
// boundary helpers used by the aggregation and alerting code. All month and
// day boundaries in the application are computed in UTC.
package month

import (
	"fmt"
	"regexp"
	"time"
)

var (
	keyPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	dmyPattern = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
	ymdPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Key formats a time as a "YYYY-MM" month key in UTC.
func Key(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Range parses a "YYYY-MM" month key and returns the half-open UTC interval
// [first of month 00:00, first of next month 00:00).
func Range(key string) (start, end time.Time, err error) {
	m := keyPattern.FindStringSubmatch(key)
	if m == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", key)
	}
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", key, err)
	}
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// Valid reports whether key is a well-formed "YYYY-MM" month key.
func Valid(key string) bool {
	_, _, err := Range(key)
	return err == nil
}

// StartOfDay truncates a time to UTC midnight.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth truncates a time to the first of its month at UTC midnight.
func StartOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DiffDays returns the number of whole calendar days from today to the given
// date, both truncated to UTC midnight. Negative values mean the date is in
// the past.
func DiffDays(date, today time.Time) int {
	d := StartOfDay(date).Sub(StartOfDay(today))
	return int(d.Hours() / 24)
}

// DateKey formats a time as "YYYY-MM-DD" in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDate parses a calendar date in any of the accepted client formats:
// RFC 3339 timestamps, "YYYY-MM-DD", or "DD-MM-YYYY". The result is in UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if ymdPattern.MatchString(s) {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return t.UTC(), nil
	}
	if m := dmyPattern.FindStringSubmatch(s); m != nil {
		t, err := time.Parse("02-01-2006", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected ISO-8601, YYYY-MM-DD or DD-MM-YYYY", s)
}
