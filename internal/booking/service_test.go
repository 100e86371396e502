package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookingpt/internal/availability"
	"bookingpt/internal/event"
	"bookingpt/internal/policy"
	"bookingpt/internal/rates"
	"bookingpt/internal/timeutil"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) CreateWithReservation(ctx context.Context, b *Booking) (*Booking, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id int) (*Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockBookingRepo) UpdateStatus(ctx context.Context, id int, from, to BookingStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockBookingRepo) UpdateStatusAndReleaseSlot(ctx context.Context, id int, from, to BookingStatus, slotID int) error {
	args := m.Called(ctx, id, from, to, slotID)
	return args.Error(0)
}

func (m *MockBookingRepo) ClientHasOverlappingActive(ctx context.Context, clientID int, start, end time.Time) (bool, error) {
	args := m.Called(ctx, clientID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) ListByClient(ctx context.Context, clientID int, status *BookingStatus) ([]Booking, error) {
	args := m.Called(ctx, clientID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockBookingRepo) ListByProvider(ctx context.Context, providerID int, status *BookingStatus) ([]Booking, error) {
	args := m.Called(ctx, providerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockBookingRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]Booking, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

type MockSlotRepo struct {
	mock.Mock
}

func (m *MockSlotRepo) CreateSlot(ctx context.Context, providerID int, start, end time.Time) (*availability.Slot, error) {
	args := m.Called(ctx, providerID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.Slot), args.Error(1)
}

func (m *MockSlotRepo) GetSlotByID(ctx context.Context, id int) (*availability.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.Slot), args.Error(1)
}

func (m *MockSlotRepo) UpdateSlotInterval(ctx context.Context, id int, start, end time.Time) (*availability.Slot, error) {
	args := m.Called(ctx, id, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.Slot), args.Error(1)
}

func (m *MockSlotRepo) DeleteSlot(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSlotRepo) ListSlots(ctx context.Context, providerID int, from, to *time.Time) ([]availability.Slot, error) {
	args := m.Called(ctx, providerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]availability.Slot), args.Error(1)
}

func (m *MockSlotRepo) HasActiveOverlap(ctx context.Context, providerID int, start, end time.Time, excludeSlotID int) (bool, error) {
	args := m.Called(ctx, providerID, start, end, excludeSlotID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSlotRepo) TransitionSlot(ctx context.Context, slotID int, from, to availability.SlotStatus) error {
	args := m.Called(ctx, slotID, from, to)
	return args.Error(0)
}

func (m *MockSlotRepo) TransitionSlotTx(ctx context.Context, tx *sqlx.Tx, slotID int, from, to availability.SlotStatus) error {
	args := m.Called(ctx, tx, slotID, from, to)
	return args.Error(0)
}

func (m *MockSlotRepo) ReleaseSlotIfUnclaimedTx(ctx context.Context, tx *sqlx.Tx, slotID int) error {
	args := m.Called(ctx, tx, slotID)
	return args.Error(0)
}

type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) HourlyRateCents(ctx context.Context, providerID int) (int64, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).(int64), args.Error(1)
}

type captureEmitter struct {
	mu     sync.Mutex
	events []event.BookingEvent
}

func (e *captureEmitter) EmitBookingEvent(_ context.Context, ev event.BookingEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

func (e *captureEmitter) last() (event.BookingEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.events) == 0 {
		return event.BookingEvent{}, false
	}
	return e.events[len(e.events)-1], true
}

type serviceFixture struct {
	repo    *MockBookingRepo
	slots   *MockSlotRepo
	rates   *MockRateSource
	emitter *captureEmitter
	svc     *service
}

func newFixture(now time.Time, cutoff time.Duration) *serviceFixture {
	f := &serviceFixture{
		repo:    new(MockBookingRepo),
		slots:   new(MockSlotRepo),
		rates:   new(MockRateSource),
		emitter: &captureEmitter{},
	}
	f.svc = &service{
		repo:    f.repo,
		slots:   f.slots,
		rates:   f.rates,
		policy:  policy.New(cutoff),
		emitter: f.emitter,
		now:     func() time.Time { return now },
	}
	return f
}

func availableSlot(id, providerID int, start time.Time, d time.Duration) *availability.Slot {
	return &availability.Slot{
		ID:         id,
		ProviderID: providerID,
		StartTime:  start,
		EndTime:    start.Add(d),
		Status:     availability.StatusAvailable,
	}
}

func TestCreateBooking(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	slot := availableSlot(3, 2, now.Add(24*time.Hour), 90*time.Minute)
	f.slots.On("GetSlotByID", mock.Anything, 3).Return(slot, nil)
	f.repo.On("ClientHasOverlappingActive", mock.Anything, 1, slot.StartTime, slot.EndTime).Return(false, nil)
	f.rates.On("HourlyRateCents", mock.Anything, 2).Return(int64(6000), nil)
	f.repo.On("CreateWithReservation", mock.Anything, mock.AnythingOfType("*booking.Booking")).
		Return(&Booking{ID: 10, ClientID: 1, ProviderID: 2, SlotID: 3, Status: StatusPendingConfirmation, PriceCents: 9000}, nil)

	created, err := f.svc.Create(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 10, created.ID)
	assert.Equal(t, StatusPendingConfirmation, created.Status)

	// 90 minutes at 6000 cents/hour
	passed := f.repo.Calls[1].Arguments.Get(1).(*Booking)
	assert.Equal(t, int64(9000), passed.PriceCents)

	ev, ok := f.emitter.last()
	require.True(t, ok)
	assert.Equal(t, string(StatusPendingConfirmation), ev.NewStatus)
	assert.Equal(t, "", ev.OldStatus)

	f.repo.AssertExpectations(t)
	f.slots.AssertExpectations(t)
}

func TestCreateBookingOwnSlot(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	slot := availableSlot(3, 1, now.Add(24*time.Hour), time.Hour)
	f.slots.On("GetSlotByID", mock.Anything, 3).Return(slot, nil)

	_, err := f.svc.Create(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrUnauthorized)
	f.repo.AssertNotCalled(t, "CreateWithReservation", mock.Anything, mock.Anything)
}

func TestCreateBookingSlotNotAvailable(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	slot := availableSlot(3, 2, now.Add(24*time.Hour), time.Hour)
	slot.Status = availability.StatusReserved
	f.slots.On("GetSlotByID", mock.Anything, 3).Return(slot, nil)

	_, err := f.svc.Create(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)
}

func TestCreateBookingPastSlot(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	slot := availableSlot(3, 2, now.Add(-time.Hour), time.Hour)
	f.slots.On("GetSlotByID", mock.Anything, 3).Return(slot, nil)

	_, err := f.svc.Create(context.Background(), 1, 3)
	assert.ErrorIs(t, err, timeutil.ErrPastStartTime)
}

func TestCreateBookingClientOverlap(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	slot := availableSlot(3, 2, now.Add(24*time.Hour), time.Hour)
	f.slots.On("GetSlotByID", mock.Anything, 3).Return(slot, nil)
	f.repo.On("ClientHasOverlappingActive", mock.Anything, 1, slot.StartTime, slot.EndTime).Return(true, nil)

	_, err := f.svc.Create(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrOverlappingActiveBooking)
	f.repo.AssertNotCalled(t, "CreateWithReservation", mock.Anything, mock.Anything)
}

func TestCreateBookingRateNotSet(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	slot := availableSlot(3, 2, now.Add(24*time.Hour), time.Hour)
	f.slots.On("GetSlotByID", mock.Anything, 3).Return(slot, nil)
	f.repo.On("ClientHasOverlappingActive", mock.Anything, 1, slot.StartTime, slot.EndTime).Return(false, nil)
	f.rates.On("HourlyRateCents", mock.Anything, 2).Return(int64(0), rates.ErrRateNotSet)

	_, err := f.svc.Create(context.Background(), 1, 3)
	assert.ErrorIs(t, err, rates.ErrRateNotSet)
}

func TestCreateBookingLostRace(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	slot := availableSlot(3, 2, now.Add(24*time.Hour), time.Hour)
	f.slots.On("GetSlotByID", mock.Anything, 3).Return(slot, nil)
	f.repo.On("ClientHasOverlappingActive", mock.Anything, 1, slot.StartTime, slot.EndTime).Return(false, nil)
	f.rates.On("HourlyRateCents", mock.Anything, 2).Return(int64(6000), nil)
	f.repo.On("CreateWithReservation", mock.Anything, mock.Anything).Return(nil, ErrSlotNoLongerAvailable)

	_, err := f.svc.Create(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)

	_, emitted := f.emitter.last()
	assert.False(t, emitted)
}

func TestConfirmBooking(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	b := &Booking{ID: 10, ClientID: 1, ProviderID: 2, SlotID: 3, Status: StatusPendingConfirmation}
	f.repo.On("GetByID", mock.Anything, 10).Return(b, nil)
	f.repo.On("UpdateStatus", mock.Anything, 10, StatusPendingConfirmation, StatusConfirmed).Return(nil)

	confirmed, err := f.svc.Confirm(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	// confirming keeps the slot reserved
	f.repo.AssertNotCalled(t, "UpdateStatusAndReleaseSlot", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	ev, ok := f.emitter.last()
	require.True(t, ok)
	assert.Equal(t, string(StatusConfirmed), ev.NewStatus)
}

func TestConfirmBookingWrongProvider(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	b := &Booking{ID: 10, ClientID: 1, ProviderID: 2, SlotID: 3, Status: StatusPendingConfirmation}
	f.repo.On("GetByID", mock.Anything, 10).Return(b, nil)

	_, err := f.svc.Confirm(context.Background(), 99, 10)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestConfirmBookingAlreadyTerminal(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	b := &Booking{ID: 10, ClientID: 1, ProviderID: 2, SlotID: 3, Status: StatusCancelledByClient}
	f.repo.On("GetByID", mock.Anything, 10).Return(b, nil)

	_, err := f.svc.Confirm(context.Background(), 2, 10)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectBookingReleasesSlot(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	b := &Booking{ID: 10, ClientID: 1, ProviderID: 2, SlotID: 3, Status: StatusPendingConfirmation}
	f.repo.On("GetByID", mock.Anything, 10).Return(b, nil)
	f.repo.On("UpdateStatusAndReleaseSlot", mock.Anything, 10, StatusPendingConfirmation, StatusRejectedByPT, 3).Return(nil)

	rejected, err := f.svc.Reject(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, StatusRejectedByPT, rejected.Status)
	f.repo.AssertExpectations(t)
}

func TestCancelByClientPending(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	// pending bookings may be cancelled even inside the cutoff window
	b := &Booking{ID: 10, ClientID: 1, ProviderID: 2, SlotID: 3, Status: StatusPendingConfirmation, StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour)}
	f.repo.On("GetByID", mock.Anything, 10).Return(b, nil)
	f.repo.On("UpdateStatusAndReleaseSlot", mock.Anything, 10, StatusPendingConfirmation, StatusCancelledByClient, 3).Return(nil)

	cancelled, err := f.svc.CancelByClient(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelledByClient, cancelled.Status)
}

func TestCancelByClientConfirmedCutoff(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		start   time.Time
		wantErr error
	}{
		{"well before cutoff", now.Add(48 * time.Hour), nil},
		{"exactly at cutoff", now.Add(12 * time.Hour), nil},
		{"inside cutoff", now.Add(11 * time.Hour), policy.ErrCancellationWindowClosed},
		{"just before start", now.Add(10 * time.Minute), policy.ErrCancellationWindowClosed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(now, 12*time.Hour)

			b := &Booking{ID: 10, ClientID: 1, ProviderID: 2, SlotID: 3, Status: StatusConfirmed, StartTime: tc.start, EndTime: tc.start.Add(time.Hour)}
			f.repo.On("GetByID", mock.Anything, 10).Return(b, nil)
			if tc.wantErr == nil {
				f.repo.On("UpdateStatusAndReleaseSlot", mock.Anything, 10, StatusConfirmed, StatusCancelledByClient, 3).Return(nil)
			}

			_, err := f.svc.CancelByClient(context.Background(), 1, 10)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				f.repo.AssertNotCalled(t, "UpdateStatusAndReleaseSlot", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCancelByClientWrongClient(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	b := &Booking{ID: 10, ClientID: 1, ProviderID: 2, SlotID: 3, Status: StatusPendingConfirmation}
	f.repo.On("GetByID", mock.Anything, 10).Return(b, nil)

	_, err := f.svc.CancelByClient(context.Background(), 99, 10)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCompleteBooking(t *testing.T) {
	end := time.Date(2030, 6, 1, 11, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"before session ends", end.Add(-time.Minute), policy.ErrSessionNotYetEnded},
		{"exactly at end", end, nil},
		{"after end", end.Add(time.Hour), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.now, 12*time.Hour)

			b := &Booking{ID: 10, ClientID: 1, ProviderID: 2, SlotID: 3, Status: StatusConfirmed, StartTime: end.Add(-time.Hour), EndTime: end}
			f.repo.On("GetByID", mock.Anything, 10).Return(b, nil)
			if tc.wantErr == nil {
				f.repo.On("UpdateStatus", mock.Anything, 10, StatusConfirmed, StatusCompleted).Return(nil)
			}

			completed, err := f.svc.Complete(context.Background(), 2, 10)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, StatusCompleted, completed.Status)
			}
		})
	}
}

func TestRejectExpired(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	expired := []Booking{
		{ID: 10, ClientID: 1, ProviderID: 2, SlotID: 3, Status: StatusPendingConfirmation},
		{ID: 11, ClientID: 4, ProviderID: 2, SlotID: 5, Status: StatusPendingConfirmation},
	}
	f.repo.On("ListExpiredPending", mock.Anything, now, expiredSweepBatch).Return(expired, nil)
	f.repo.On("UpdateStatusAndReleaseSlot", mock.Anything, 10, StatusPendingConfirmation, StatusRejectedBySystem, 3).Return(nil)
	// second booking was confirmed concurrently; the sweeper skips it
	f.repo.On("UpdateStatusAndReleaseSlot", mock.Anything, 11, StatusPendingConfirmation, StatusRejectedBySystem, 5).Return(ErrInvalidTransition)

	count, err := f.svc.RejectExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ev, ok := f.emitter.last()
	require.True(t, ok)
	assert.Equal(t, 10, ev.BookingID)
	assert.Equal(t, string(StatusRejectedBySystem), ev.NewStatus)
}

func TestGetByIDAuthorization(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	f := newFixture(now, 12*time.Hour)

	b := &Booking{ID: 10, ClientID: 1, ProviderID: 2, SlotID: 3, Status: StatusConfirmed}
	f.repo.On("GetByID", mock.Anything, 10).Return(b, nil)

	_, err := f.svc.GetByID(context.Background(), 1, 10)
	assert.NoError(t, err)
	_, err = f.svc.GetByID(context.Background(), 2, 10)
	assert.NoError(t, err)
	_, err = f.svc.GetByID(context.Background(), 99, 10)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// raceStore is an in-memory store guarding one slot with a mutex, so many
// concurrent Create calls can race for it the way concurrent transactions
// race for the row lock in Postgres.
type raceStore struct {
	mu     sync.Mutex
	slot   availability.Slot
	nextID int
}

func (s *raceStore) CreateWithReservation(_ context.Context, b *Booking) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot.Status != availability.StatusAvailable {
		return nil, ErrSlotNoLongerAvailable
	}
	s.slot.Status = availability.StatusReserved
	s.nextID++
	created := *b
	created.ID = s.nextID
	created.Status = StatusPendingConfirmation
	return &created, nil
}

func (s *raceStore) GetByID(context.Context, int) (*Booking, error) { return nil, ErrBookingNotFound }
func (s *raceStore) UpdateStatus(context.Context, int, BookingStatus, BookingStatus) error {
	return nil
}
func (s *raceStore) UpdateStatusAndReleaseSlot(context.Context, int, BookingStatus, BookingStatus, int) error {
	return nil
}
func (s *raceStore) ClientHasOverlappingActive(context.Context, int, time.Time, time.Time) (bool, error) {
	return false, nil
}
func (s *raceStore) ListByClient(context.Context, int, *BookingStatus) ([]Booking, error) {
	return nil, nil
}
func (s *raceStore) ListByProvider(context.Context, int, *BookingStatus) ([]Booking, error) {
	return nil, nil
}
func (s *raceStore) ListExpiredPending(context.Context, time.Time, int) ([]Booking, error) {
	return nil, nil
}

func (s *raceStore) GetSlotByID(context.Context, int) (*availability.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := s.slot
	return &slot, nil
}
func (s *raceStore) CreateSlot(context.Context, int, time.Time, time.Time) (*availability.Slot, error) {
	return nil, nil
}
func (s *raceStore) UpdateSlotInterval(context.Context, int, time.Time, time.Time) (*availability.Slot, error) {
	return nil, nil
}
func (s *raceStore) DeleteSlot(context.Context, int) error { return nil }
func (s *raceStore) ListSlots(context.Context, int, *time.Time, *time.Time) ([]availability.Slot, error) {
	return nil, nil
}
func (s *raceStore) HasActiveOverlap(context.Context, int, time.Time, time.Time, int) (bool, error) {
	return false, nil
}
func (s *raceStore) TransitionSlot(context.Context, int, availability.SlotStatus, availability.SlotStatus) error {
	return nil
}
func (s *raceStore) TransitionSlotTx(context.Context, *sqlx.Tx, int, availability.SlotStatus, availability.SlotStatus) error {
	return nil
}
func (s *raceStore) ReleaseSlotIfUnclaimedTx(context.Context, *sqlx.Tx, int) error { return nil }

type fixedRate int64

func (r fixedRate) HourlyRateCents(context.Context, int) (int64, error) { return int64(r), nil }

// Many clients race for one slot; exactly one booking must win.
func TestConcurrentCreateSingleWinner(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	start := now.Add(24 * time.Hour)

	store := &raceStore{
		slot: availability.Slot{
			ID:         3,
			ProviderID: 2,
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
			Status:     availability.StatusAvailable,
		},
	}

	svc := &service{
		repo:    store,
		slots:   store,
		rates:   fixedRate(6000),
		policy:  policy.New(12 * time.Hour),
		emitter: &captureEmitter{},
		now:     func() time.Time { return now },
	}

	const clients = 25

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		lost     int
		unwanted []error
	)

	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), clientID, 3)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrSlotNoLongerAvailable):
				lost++
			default:
				unwanted = append(unwanted, err)
			}
		}(100 + i)
	}
	wg.Wait()

	assert.Empty(t, unwanted)
	assert.Equal(t, 1, wins)
	assert.Equal(t, clients-1, lost)
	assert.Equal(t, availability.StatusReserved, store.slot.Status)
}
