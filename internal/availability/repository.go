package availability

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookingpt/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrSlotNotFound      = errors.New("slot not found")
	ErrSlotConflict      = errors.New("slot overlaps an existing slot")
	ErrSlotBooked        = errors.New("slot is reserved by a booking")
	ErrSlotStateMismatch = errors.New("slot is not in the expected status")
	ErrNotSlotOwner      = errors.New("slot belongs to another provider")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// isExclusionViolation reports whether err is the Postgres exclusion
// constraint (23P01) guarding per-provider slot overlap.
func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23P01"
}

func (r *repository) CreateSlot(ctx context.Context, providerID int, start, end time.Time) (*Slot, error) {
	query := `
		INSERT INTO slots (provider_id, start_time, end_time, status)
		VALUES ($1, $2, $3, 'available')
		RETURNING id, provider_id, start_time, end_time, status, created_at, updated_at
	`

	var slot Slot
	err := r.db.GetContext(ctx, &slot, query, providerID, start, end)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrSlotConflict
		}
		return nil, err
	}

	return &slot, nil
}

func (r *repository) GetSlotByID(ctx context.Context, id int) (*Slot, error) {
	query := `
		SELECT id, provider_id, start_time, end_time, status, created_at, updated_at
		FROM slots
		WHERE id = $1
	`

	var slot Slot
	err := r.db.GetContext(ctx, &slot, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

func (r *repository) UpdateSlotInterval(ctx context.Context, id int, start, end time.Time) (*Slot, error) {
	query := `
		UPDATE slots
		SET start_time = $2, end_time = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, provider_id, start_time, end_time, status, created_at, updated_at
	`

	var slot Slot
	err := r.db.GetContext(ctx, &slot, query, id, start, end)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrSlotConflict
		}
		return nil, err
	}

	return &slot, nil
}

func (r *repository) DeleteSlot(ctx context.Context, id int) error {
	query := `
		DELETE FROM slots
		WHERE id = $1 AND status = 'available'
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		slot, err := r.GetSlotByID(ctx, id)
		if err != nil {
			return err
		}
		if slot.Status == StatusReserved {
			return ErrSlotBooked
		}
		return ErrSlotStateMismatch
	}

	return nil
}

func (r *repository) ListSlots(ctx context.Context, providerID int, from, to *time.Time) ([]Slot, error) {
	query := `
		SELECT id, provider_id, start_time, end_time, status, created_at, updated_at
		FROM slots
		WHERE provider_id = $1
	`
	args := []interface{}{providerID}

	if from != nil {
		args = append(args, *from)
		query += ` AND end_time > $2`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND start_time < $3`
		} else {
			query += ` AND start_time < $2`
		}
	}

	query += ` ORDER BY start_time ASC`

	slots := []Slot{}
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, err
	}

	return slots, nil
}

// HasActiveOverlap scans the provider's available and reserved slots for
// any interval intersecting [start, end). Touching endpoints do not
// conflict. excludeSlotID skips a slot's own record on update; pass 0
// when creating.
func (r *repository) HasActiveOverlap(ctx context.Context, providerID int, start, end time.Time, excludeSlotID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM slots
			WHERE provider_id = $1
			  AND status IN ('available', 'reserved')
			  AND start_time < $3
			  AND end_time > $2
			  AND id <> $4
		)
	`

	return db.Exists(ctx, r.db, query, providerID, start, end, excludeSlotID)
}

func (r *repository) TransitionSlot(ctx context.Context, slotID int, from, to SlotStatus) error {
	return transitionSlot(ctx, r.db, slotID, from, to)
}

func (r *repository) TransitionSlotTx(ctx context.Context, tx *sqlx.Tx, slotID int, from, to SlotStatus) error {
	return transitionSlot(ctx, tx, slotID, from, to)
}

// transitionSlot is the sole mutation path for slot status: a
// compare-and-set conditioned on the stored status matching from. Zero
// rows affected means the precondition no longer holds and the caller
// must abort, not retry.
func transitionSlot(ctx context.Context, ext sqlx.ExtContext, slotID int, from, to SlotStatus) error {
	query := `
		UPDATE slots
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := ext.ExecContext(ctx, query, slotID, from, to)
	if err != nil {
		if isExclusionViolation(err) {
			return ErrSlotConflict
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrSlotStateMismatch
	}

	return nil
}

// ReleaseSlotIfUnclaimedTx returns a reserved slot to available, but only
// when no active booking still references it. The one-active-booking
// invariant should make the guard a no-op; it protects against invariant
// violations introduced elsewhere.
func (r *repository) ReleaseSlotIfUnclaimedTx(ctx context.Context, tx *sqlx.Tx, slotID int) error {
	query := `
		UPDATE slots
		SET status = 'available', updated_at = NOW()
		WHERE id = $1
		  AND status = 'reserved'
		  AND NOT EXISTS(
			SELECT 1 FROM bookings
			WHERE slot_id = $1
			  AND status IN ('pending_confirmation', 'confirmed')
		  )
	`

	_, err := tx.ExecContext(ctx, query, slotID)
	return err
}
