// Package traffic buckets bike-share trips by minute of day and aggregates
// per-station departures and arrivals over a sliding time window.
package traffic

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MinutesPerDay is the number of buckets in an index
	MinutesPerDay = 1440
	// WindowRadius is how far a window reaches on each side of its minute
	WindowRadius = 60
	// AnyTime disables time filtering
	AnyTime = -1
)

// ErrInvalidMinute is returned for a minute outside [0, 1439] that is not AnyTime
var ErrInvalidMinute = errors.New("minute must be -1 or between 0 and 1439")

// MinuteOf returns the minute of day of t. Seconds are discarded, not rounded.
func MinuteOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ValidMinute reports whether m is AnyTime or a minute of day
func ValidMinute(m int) bool {
	return m == AnyTime || (m >= 0 && m < MinutesPerDay)
}

// CheckMinute returns ErrInvalidMinute wrapped with the offending value
func CheckMinute(m int) error {
	if !ValidMinute(m) {
		return fmt.Errorf("%w: got %d", ErrInvalidMinute, m)
	}
	return nil
}

// FormatMinute renders a slider label such as "8:05 AM"
func FormatMinute(m int) string {
	if m == AnyTime {
		return "any time"
	}
	h, mm := m/60, m%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, mm, suffix)
}
