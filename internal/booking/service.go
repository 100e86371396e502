package booking

import (
	"context"
	"errors"
	"time"

	"bookingpt/internal/availability"
	"bookingpt/internal/event"
	"bookingpt/internal/logger"
	"bookingpt/internal/metrics"
	"bookingpt/internal/policy"
	"bookingpt/internal/rates"
)

type Service interface {
	Create(ctx context.Context, clientID, slotID int) (*Booking, error)
	Confirm(ctx context.Context, providerID, bookingID int) (*Booking, error)
	Reject(ctx context.Context, providerID, bookingID int) (*Booking, error)
	CancelByClient(ctx context.Context, clientID, bookingID int) (*Booking, error)
	CancelByProvider(ctx context.Context, providerID, bookingID int) (*Booking, error)
	Complete(ctx context.Context, providerID, bookingID int) (*Booking, error)
	RejectExpired(ctx context.Context) (int, error)
	GetByID(ctx context.Context, actorID, bookingID int) (*Booking, error)
	ListByClient(ctx context.Context, clientID int, status *BookingStatus) ([]Booking, error)
	ListByProvider(ctx context.Context, providerID int, status *BookingStatus) ([]Booking, error)
}

type service struct {
	repo    Repository
	slots   availability.Repository
	rates   rates.RateSource
	policy  *policy.Policy
	emitter event.Emitter
	now     func() time.Time
}

func NewService(
	repo Repository,
	slots availability.Repository,
	rateSource rates.RateSource,
	pol *policy.Policy,
	emitter event.Emitter,
) Service {
	return &service{
		repo:    repo,
		slots:   slots,
		rates:   rateSource,
		policy:  pol,
		emitter: emitter,
		now:     time.Now,
	}
}

const expiredSweepBatch = 100

// priceCents snapshots the provider's hourly rate over the slot duration.
func priceCents(hourlyRateCents int64, start, end time.Time) int64 {
	return hourlyRateCents * int64(end.Sub(start).Minutes()) / 60
}

func (s *service) Create(ctx context.Context, clientID, slotID int) (*Booking, error) {
	now := s.now()

	slot, err := s.slots.GetSlotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}

	if slot.ProviderID == clientID {
		return nil, ErrUnauthorized
	}

	// fast fail; the compare-and-set below is the authority
	if slot.Status != availability.StatusAvailable {
		return nil, ErrSlotNoLongerAvailable
	}

	if err := s.policy.CheckFutureStart(now, slot.Interval()); err != nil {
		return nil, err
	}

	overlap, err := s.repo.ClientHasOverlappingActive(ctx, clientID, slot.StartTime, slot.EndTime)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrOverlappingActiveBooking
	}

	rate, err := s.rates.HourlyRateCents(ctx, slot.ProviderID)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		ClientID:   clientID,
		ProviderID: slot.ProviderID,
		SlotID:     slot.ID,
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
		Status:     StatusPendingConfirmation,
		PriceCents: priceCents(rate, slot.StartTime, slot.EndTime),
	}

	created, err := s.repo.CreateWithReservation(ctx, b)
	if err != nil {
		if errors.Is(err, ErrSlotNoLongerAvailable) {
			metrics.BookingRacesLostTotal.Inc()
		}
		return nil, err
	}

	s.emit(ctx, created, "", StatusPendingConfirmation)
	return created, nil
}

func (s *service) Confirm(ctx context.Context, providerID, bookingID int) (*Booking, error) {
	return s.providerTransition(ctx, providerID, bookingID, StatusConfirmed, nil, false)
}

func (s *service) Reject(ctx context.Context, providerID, bookingID int) (*Booking, error) {
	return s.providerTransition(ctx, providerID, bookingID, StatusRejectedByPT, nil, true)
}

func (s *service) CancelByProvider(ctx context.Context, providerID, bookingID int) (*Booking, error) {
	return s.providerTransition(ctx, providerID, bookingID, StatusCancelledByPT, nil, true)
}

func (s *service) Complete(ctx context.Context, providerID, bookingID int) (*Booking, error) {
	check := func(b *Booking) error {
		return s.policy.CheckComplete(s.now(), b.EndTime)
	}
	// completed bookings keep their slot reserved as history
	return s.providerTransition(ctx, providerID, bookingID, StatusCompleted, check, false)
}

// providerTransition runs a provider-initiated transition: authorization,
// state-machine check, optional policy gate, then the conditional update.
func (s *service) providerTransition(
	ctx context.Context,
	providerID, bookingID int,
	to BookingStatus,
	gate func(*Booking) error,
	releaseSlot bool,
) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.ProviderID != providerID {
		return nil, ErrUnauthorized
	}

	if !CanTransition(b.Status, to) {
		return nil, ErrInvalidTransition
	}

	if gate != nil {
		if err := gate(b); err != nil {
			return nil, err
		}
	}

	from := b.Status
	if releaseSlot {
		err = s.repo.UpdateStatusAndReleaseSlot(ctx, bookingID, from, to, b.SlotID)
	} else {
		err = s.repo.UpdateStatus(ctx, bookingID, from, to)
	}
	if err != nil {
		return nil, err
	}

	b.Status = to
	s.emit(ctx, b, from, to)
	return b, nil
}

func (s *service) CancelByClient(ctx context.Context, clientID, bookingID int) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.ClientID != clientID {
		return nil, ErrUnauthorized
	}

	if !CanTransition(b.Status, StatusCancelledByClient) {
		return nil, ErrInvalidTransition
	}

	// pending bookings may always be cancelled; confirmed ones are
	// gated by the cancellation cutoff
	if b.Status == StatusConfirmed {
		if err := s.policy.CheckClientCancel(s.now(), b.StartTime); err != nil {
			return nil, err
		}
	}

	from := b.Status
	if err := s.repo.UpdateStatusAndReleaseSlot(ctx, bookingID, from, StatusCancelledByClient, b.SlotID); err != nil {
		return nil, err
	}

	b.Status = StatusCancelledByClient
	s.emit(ctx, b, from, StatusCancelledByClient)
	return b, nil
}

// RejectExpired moves pending bookings whose slot start has passed to
// rejected_by_system and releases their slots. Returns the number of
// bookings expired.
func (s *service) RejectExpired(ctx context.Context) (int, error) {
	expired, err := s.repo.ListExpiredPending(ctx, s.now(), expiredSweepBatch)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, b := range expired {
		err := s.repo.UpdateStatusAndReleaseSlot(ctx, b.ID, StatusPendingConfirmation, StatusRejectedBySystem, b.SlotID)
		if err != nil {
			// lost a race with a concurrent confirm/cancel; skip it
			if errors.Is(err, ErrInvalidTransition) {
				continue
			}
			return count, err
		}

		bc := b
		bc.Status = StatusRejectedBySystem
		s.emit(ctx, &bc, StatusPendingConfirmation, StatusRejectedBySystem)
		metrics.SweeperExpiredTotal.Inc()
		count++
	}

	return count, nil
}

func (s *service) GetByID(ctx context.Context, actorID, bookingID int) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.ClientID != actorID && b.ProviderID != actorID {
		return nil, ErrUnauthorized
	}

	return b, nil
}

func (s *service) ListByClient(ctx context.Context, clientID int, status *BookingStatus) ([]Booking, error) {
	return s.repo.ListByClient(ctx, clientID, status)
}

func (s *service) ListByProvider(ctx context.Context, providerID int, status *BookingStatus) ([]Booking, error) {
	return s.repo.ListByProvider(ctx, providerID, status)
}

// emit hands the transition to the event sink. Delivery is
// fire-and-forget: a failed emit is logged, never surfaced.
func (s *service) emit(ctx context.Context, b *Booking, from, to BookingStatus) {
	metrics.RecordBookingTransition(string(to))

	ev := event.NewBookingEvent(b.ID, string(from), string(to), b.ProviderID, b.ClientID)
	if err := s.emitter.EmitBookingEvent(ctx, ev); err != nil {
		logger.Error("failed to emit booking event",
			"booking_id", b.ID,
			"new_status", string(to),
			"error", err,
		)
	}
}
