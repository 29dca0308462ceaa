package utils

import (
	"time"
)

// LoadLocation falls back to UTC for an empty or unknown zone name.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PrettyDate is the history entry timestamp format, e.g. "16 Oct 2026 - 14:05 UTC".
func PrettyDate(date time.Time) string {
	return date.Format("02 Jan 2006 - 15:04 MST")
}

// ClockTime is the trade plan freshness format.
func ClockTime(date time.Time) string {
	return date.Format("15:04:05")
}
