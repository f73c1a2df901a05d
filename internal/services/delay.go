package services

import (
	"errors"

	"github.com/mescon/Unqlocked/internal/clock"
)

var (
	// ErrNoTimes is returned when a face has no time entries to derive a delay from.
	ErrNoTimes = errors.New("cannot compute delay: no time entries")
	// ErrZeroDelay is returned when every time entry is midnight, leaving no usable tick.
	ErrZeroDelay = errors.New("cannot compute delay: time entries are all zero")
)

// CalcDelay returns the greatest common divisor of the distinct times, in
// seconds. Ticking at that interval lands on every phrase change.
func CalcDelay(times []clock.Time) (int, error) {
	if len(times) == 0 {
		return 0, ErrNoTimes
	}

	seen := make(map[int]bool, len(times))
	delay := 0
	for _, t := range times {
		s := t.ToSeconds()
		if seen[s] {
			continue
		}
		seen[s] = true
		delay = gcd(delay, s)
	}

	if delay == 0 {
		return 0, ErrZeroDelay
	}
	return delay, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
