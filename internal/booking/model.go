package booking

import (
	"time"

	"bookingpt/internal/timeutil"
)

type BookingStatus string

const (
	StatusPendingConfirmation BookingStatus = "pending_confirmation"
	StatusConfirmed           BookingStatus = "confirmed"
	StatusCompleted           BookingStatus = "completed"
	StatusRejectedByPT        BookingStatus = "rejected_by_pt"
	StatusRejectedBySystem    BookingStatus = "rejected_by_system"
	StatusCancelledByClient   BookingStatus = "cancelled_by_client"
	StatusCancelledByPT       BookingStatus = "cancelled_by_pt"
)

// Active reports whether the booking currently holds its slot reserved.
func (s BookingStatus) Active() bool {
	return s == StatusPendingConfirmation || s == StatusConfirmed
}

// Booking is a client's claim on one slot. StartTime, EndTime and
// PriceCents are snapshots taken at creation and never change, even if
// the slot record is edited later. Bookings are never deleted; terminal
// states are kept as history.
type Booking struct {
	ID         int           `db:"id" json:"id"`
	ClientID   int           `db:"client_id" json:"client_id"`
	ProviderID int           `db:"provider_id" json:"provider_id"`
	SlotID     int           `db:"slot_id" json:"slot_id"`
	StartTime  time.Time     `db:"start_time" json:"start_time"`
	EndTime    time.Time     `db:"end_time" json:"end_time"`
	Status     BookingStatus `db:"status" json:"status"`
	PriceCents int64         `db:"price_cents" json:"price_cents"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

func (b *Booking) Interval() timeutil.Interval {
	return timeutil.Interval{Start: b.StartTime, End: b.EndTime}
}
