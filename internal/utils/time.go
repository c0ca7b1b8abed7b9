package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/wurkwurk/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// InTimezone converts t into the named timezone.
func InTimezone(t time.Time, timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return t.In(loc), nil
}

// DateIn returns the calendar date (YYYY-MM-DD) of t in the named timezone.
func DateIn(t time.Time, timezone string) (string, error) {
	local, err := InTimezone(t, timezone)
	if err != nil {
		return "", err
	}
	return local.Format(constants.DateFormat), nil
}

// Timestamp formats t as a UTC ISO-8601 instant with nanosecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format(constants.TimestampFormat)
}

// ParseTimestamp is the inverse of Timestamp. Stamps with fewer fraction
// digits, such as millisecond ones written by older builds, parse too.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// NextMidnight returns the first midnight strictly after t, in t's location.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// MinutesBetween returns the elapsed minutes from a to b, rounded half away from zero.
func MinutesBetween(a, b time.Time) int {
	return int(b.Sub(a).Round(time.Minute) / time.Minute)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}
