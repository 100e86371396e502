package booking

// transitions is the booking state machine. Anything not listed here is
// an invalid transition. The database compare-and-set on status remains
// the authority under concurrency; this table is the fast-fail check.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPendingConfirmation: {
		StatusConfirmed,
		StatusRejectedByPT,
		StatusRejectedBySystem,
		StatusCancelledByClient,
	},
	StatusConfirmed: {
		StatusCompleted,
		StatusCancelledByClient,
		StatusCancelledByPT,
	},
}

func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
