package event

import (
	"context"
	"time"

	"bookingpt/internal/logger"
	"bookingpt/internal/metrics"

	"github.com/google/uuid"
)

// BookingEvent describes one booking state transition for external
// consumers (notification delivery and the like).
type BookingEvent struct {
	ID         string    `json:"id"`
	BookingID  int       `json:"booking_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	ProviderID int       `json:"provider_id"`
	ClientID   int       `json:"client_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBookingEvent stamps the event with an id and occurrence time.
func NewBookingEvent(bookingID int, oldStatus, newStatus string, providerID, clientID int) BookingEvent {
	return BookingEvent{
		ID:         uuid.NewString(),
		BookingID:  bookingID,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		ProviderID: providerID,
		ClientID:   clientID,
		OccurredAt: time.Now().UTC(),
	}
}

// Emitter is the sink for booking transition events. Delivery is
// fire-and-forget, at-least-once; implementations must not block the
// booking transition on downstream consumers.
type Emitter interface {
	EmitBookingEvent(ctx context.Context, ev BookingEvent) error
}

// LogEmitter writes events to the log. Used when no broker is configured
// and in tests.
type LogEmitter struct{}

func (LogEmitter) EmitBookingEvent(_ context.Context, ev BookingEvent) error {
	logger.Info("booking event",
		"event_id", ev.ID,
		"booking_id", ev.BookingID,
		"old_status", ev.OldStatus,
		"new_status", ev.NewStatus,
		"provider_id", ev.ProviderID,
		"client_id", ev.ClientID,
	)
	metrics.RecordEventPublished(ev.NewStatus)
	return nil
}
