package availability

import (
	"time"

	"bookingpt/internal/timeutil"
)

type SlotStatus string

const (
	StatusAvailable   SlotStatus = "available"
	StatusReserved    SlotStatus = "reserved"
	StatusUnavailable SlotStatus = "unavailable"
)

// Slot is a provider-published availability window. Intervals are
// half-open [StartTime, EndTime); slots of one provider never overlap
// while in an active (available or reserved) status.
type Slot struct {
	ID         int        `db:"id" json:"id"`
	ProviderID int        `db:"provider_id" json:"provider_id"`
	StartTime  time.Time  `db:"start_time" json:"start_time"`
	EndTime    time.Time  `db:"end_time" json:"end_time"`
	Status     SlotStatus `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

func (s *Slot) Interval() timeutil.Interval {
	return timeutil.Interval{Start: s.StartTime, End: s.EndTime}
}

type CreateSlotRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type UpdateSlotRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}
