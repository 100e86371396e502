package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingEvent(t *testing.T) {
	ev := NewBookingEvent(5, "pending_confirmation", "confirmed", 2, 3)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, 5, ev.BookingID)
	assert.Equal(t, "pending_confirmation", ev.OldStatus)
	assert.Equal(t, "confirmed", ev.NewStatus)
	assert.Equal(t, 2, ev.ProviderID)
	assert.Equal(t, 3, ev.ClientID)
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestRoutingKey(t *testing.T) {
	ev := NewBookingEvent(1, "pending_confirmation", "rejected_by_pt", 2, 3)
	assert.Equal(t, "booking.rejected_by_pt", RoutingKey(ev))
}

func TestLogEmitter(t *testing.T) {
	var e Emitter = LogEmitter{}
	err := e.EmitBookingEvent(context.Background(), NewBookingEvent(1, "confirmed", "completed", 2, 3))
	require.NoError(t, err)
}
