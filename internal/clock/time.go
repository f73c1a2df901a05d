package clock

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SecondsPerDay is the length of the simulated day. All Time values live in [0, SecondsPerDay).
const SecondsPerDay = 24 * 60 * 60

// Time is a time of day with one-second resolution. The zero value is midnight.
// Values are immutable; arithmetic returns a new Time.
type Time struct {
	seconds int
}

// FromSeconds builds a Time from a seconds count, normalized modulo one day.
// Negative inputs wrap backwards from midnight.
func FromSeconds(s int) Time {
	s %= SecondsPerDay
	if s < 0 {
		s += SecondsPerDay
	}
	return Time{seconds: s}
}

// FromHMS builds a Time from hour, minute and second components.
func FromHMS(h, m, s int) Time {
	return FromSeconds(h*3600 + m*60 + s)
}

// FromWallClock samples the time of day of t in t's location, dropping sub-second precision.
func FromWallClock(t time.Time) Time {
	return FromHMS(t.Hour(), t.Minute(), t.Second())
}

// SecondsOfDay returns the fractional number of seconds elapsed since midnight in t's location.
func SecondsOfDay(t time.Time) float64 {
	return float64(t.Hour()*3600+t.Minute()*60+t.Second()) + float64(t.Nanosecond())/1e9
}

// ToSeconds returns the number of seconds since midnight.
func (t Time) ToSeconds() int {
	return t.seconds
}

// Add returns t advanced by the given number of seconds, wrapping at midnight.
func (t Time) Add(seconds int) Time {
	return FromSeconds(t.seconds + seconds)
}

// RoundDown floors t to the nearest multiple of delay seconds.
// A non-positive delay returns t unchanged.
func (t Time) RoundDown(delay int) Time {
	if delay <= 0 {
		return t
	}
	return Time{seconds: t.seconds / delay * delay}
}

func (t Time) Hours() int   { return t.seconds / 3600 }
func (t Time) Minutes() int { return t.seconds / 60 % 60 }
func (t Time) Seconds() int { return t.seconds % 60 }

// String formats t as HH:MM:SS.
func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours(), t.Minutes(), t.Seconds())
}

// Parse reads a time of day written as H:MM or H:MM:SS. Hours must be below 24.
func Parse(s string) (Time, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Time{}, fmt.Errorf("invalid time %q: expected H:MM or H:MM:SS", s)
	}

	limits := []int{24, 60, 60}
	values := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Time{}, fmt.Errorf("invalid time %q: %w", s, err)
		}
		if v < 0 || v >= limits[i] {
			return Time{}, fmt.Errorf("invalid time %q: component %d out of range", s, v)
		}
		values[i] = v
	}
	return FromHMS(values[0], values[1], values[2]), nil
}

// MarshalText implements encoding.TextMarshaler.
func (t Time) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Time) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
