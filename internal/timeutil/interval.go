package timeutil

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange  = errors.New("interval end must be after start")
	ErrPastStartTime = errors.New("interval must start in the future")
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
// Touching endpoints (a.End == b.Start) do not count as overlap,
// so back-to-back slots are allowed.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// Validate checks that the interval is well-formed.
func Validate(i Interval) error {
	if !i.End.After(i.Start) {
		return ErrInvalidRange
	}
	return nil
}

// ValidateFuture checks that the interval is well-formed and starts
// strictly after now.
func ValidateFuture(i Interval, now time.Time) error {
	if err := Validate(i); err != nil {
		return err
	}
	if !i.Start.After(now) {
		return ErrPastStartTime
	}
	return nil
}
