package booking

import (
	"context"
	"time"
)

type Repository interface {
	// CreateWithReservation persists the booking and flips its slot
	// available -> reserved in one transaction. Returns
	// ErrSlotNoLongerAvailable when the slot was claimed concurrently.
	CreateWithReservation(ctx context.Context, b *Booking) (*Booking, error)

	GetByID(ctx context.Context, id int) (*Booking, error)

	// UpdateStatus is a compare-and-set on booking status; the slot is
	// not touched.
	UpdateStatus(ctx context.Context, id int, from, to BookingStatus) error

	// UpdateStatusAndReleaseSlot runs the status compare-and-set and, in
	// the same transaction, returns the slot to available unless another
	// active booking still references it.
	UpdateStatusAndReleaseSlot(ctx context.Context, id int, from, to BookingStatus, slotID int) error

	ClientHasOverlappingActive(ctx context.Context, clientID int, start, end time.Time) (bool, error)
	ListByClient(ctx context.Context, clientID int, status *BookingStatus) ([]Booking, error)
	ListByProvider(ctx context.Context, providerID int, status *BookingStatus) ([]Booking, error)
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]Booking, error)
}
