package availability

import (
	"context"
	"time"

	"bookingpt/internal/metrics"
	"bookingpt/internal/timeutil"
)

type Service interface {
	CreateSlot(ctx context.Context, providerID int, interval timeutil.Interval) (*Slot, error)
	UpdateSlot(ctx context.Context, providerID, slotID int, interval timeutil.Interval) (*Slot, error)
	DeleteSlot(ctx context.Context, providerID, slotID int) error
	WithdrawSlot(ctx context.Context, providerID, slotID int) error
	ReopenSlot(ctx context.Context, providerID, slotID int) error
	ListSlots(ctx context.Context, providerID int, from, to *time.Time) ([]Slot, error)
	GetSlot(ctx context.Context, slotID int) (*Slot, error)
}

type service struct {
	repo  Repository
	cache *SlotCache
}

// NewService builds the availability store. cache may be nil, in which
// case every listing hits the database.
func NewService(repo Repository, cache *SlotCache) Service {
	return &service{repo: repo, cache: cache}
}

func (s *service) CreateSlot(ctx context.Context, providerID int, interval timeutil.Interval) (*Slot, error) {
	if err := timeutil.Validate(interval); err != nil {
		return nil, err
	}

	overlap, err := s.repo.HasActiveOverlap(ctx, providerID, interval.Start, interval.End, 0)
	if err != nil {
		return nil, err
	}
	if overlap {
		metrics.SlotConflictsTotal.Inc()
		return nil, ErrSlotConflict
	}

	slot, err := s.repo.CreateSlot(ctx, providerID, interval.Start, interval.End)
	if err != nil {
		return nil, err
	}

	metrics.SlotsCreatedTotal.Inc()
	s.invalidate(ctx, providerID)
	return slot, nil
}

func (s *service) UpdateSlot(ctx context.Context, providerID, slotID int, interval timeutil.Interval) (*Slot, error) {
	if err := timeutil.Validate(interval); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if existing.ProviderID != providerID {
		return nil, ErrNotSlotOwner
	}

	// overlap scan excludes the slot's own record
	overlap, err := s.repo.HasActiveOverlap(ctx, providerID, interval.Start, interval.End, slotID)
	if err != nil {
		return nil, err
	}
	if overlap {
		metrics.SlotConflictsTotal.Inc()
		return nil, ErrSlotConflict
	}

	slot, err := s.repo.UpdateSlotInterval(ctx, slotID, interval.Start, interval.End)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, providerID)
	return slot, nil
}

func (s *service) DeleteSlot(ctx context.Context, providerID, slotID int) error {
	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.ProviderID != providerID {
		return ErrNotSlotOwner
	}

	if err := s.repo.DeleteSlot(ctx, slotID); err != nil {
		return err
	}

	s.invalidate(ctx, providerID)
	return nil
}

func (s *service) WithdrawSlot(ctx context.Context, providerID, slotID int) error {
	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.ProviderID != providerID {
		return ErrNotSlotOwner
	}
	if slot.Status == StatusReserved {
		return ErrSlotBooked
	}

	if err := s.repo.TransitionSlot(ctx, slotID, StatusAvailable, StatusUnavailable); err != nil {
		return err
	}

	s.invalidate(ctx, providerID)
	return nil
}

func (s *service) ReopenSlot(ctx context.Context, providerID, slotID int) error {
	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.ProviderID != providerID {
		return ErrNotSlotOwner
	}

	// A withdrawn slot is excluded from the overlap scan, so slots
	// published meanwhile may now collide with it.
	overlap, err := s.repo.HasActiveOverlap(ctx, providerID, slot.StartTime, slot.EndTime, slotID)
	if err != nil {
		return err
	}
	if overlap {
		metrics.SlotConflictsTotal.Inc()
		return ErrSlotConflict
	}

	if err := s.repo.TransitionSlot(ctx, slotID, StatusUnavailable, StatusAvailable); err != nil {
		return err
	}

	s.invalidate(ctx, providerID)
	return nil
}

func (s *service) ListSlots(ctx context.Context, providerID int, from, to *time.Time) ([]Slot, error) {
	if s.cache != nil {
		if slots, ok := s.cache.Get(ctx, providerID, from, to); ok {
			return slots, nil
		}
	}

	slots, err := s.repo.ListSlots(ctx, providerID, from, to)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, providerID, from, to, slots)
	}

	return slots, nil
}

func (s *service) GetSlot(ctx context.Context, slotID int) (*Slot, error) {
	return s.repo.GetSlotByID(ctx, slotID)
}

func (s *service) invalidate(ctx context.Context, providerID int) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, providerID)
	}
}
