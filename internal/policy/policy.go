package policy

import (
	"errors"
	"time"

	"bookingpt/internal/timeutil"
)

var (
	ErrCancellationWindowClosed = errors.New("cancellation window has closed")
	ErrSessionNotYetEnded       = errors.New("session has not ended yet")
)

// Policy evaluates the time-gated booking rules. It holds the configured
// thresholds and no other state, so cutoffs can change without touching
// the state machine.
type Policy struct {
	// CancellationCutoff is the minimum lead time before a slot's start
	// after which a client may no longer cancel a confirmed booking.
	CancellationCutoff time.Duration
}

func New(cancellationCutoff time.Duration) *Policy {
	return &Policy{CancellationCutoff: cancellationCutoff}
}

// CheckFutureStart gates booking creation: the slot must start strictly
// after now.
func (p *Policy) CheckFutureStart(now time.Time, interval timeutil.Interval) error {
	return timeutil.ValidateFuture(interval, now)
}

// CheckClientCancel gates client cancellation of a confirmed booking.
// The boundary is inclusive: cancelling exactly at start-cutoff is allowed.
func (p *Policy) CheckClientCancel(now, startTime time.Time) error {
	deadline := startTime.Add(-p.CancellationCutoff)
	if now.After(deadline) {
		return ErrCancellationWindowClosed
	}
	return nil
}

// CheckComplete gates completion: a session can only be completed at or
// after its end time.
func (p *Policy) CheckComplete(now, endTime time.Time) error {
	if now.Before(endTime) {
		return ErrSessionNotYetEnded
	}
	return nil
}
