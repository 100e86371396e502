package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookingpt/internal/availability"
	"bookingpt/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrBookingNotFound          = errors.New("booking not found")
	ErrSlotNoLongerAvailable    = errors.New("slot is no longer available")
	ErrInvalidTransition        = errors.New("invalid booking state transition")
	ErrUnauthorized             = errors.New("actor is not a party to this booking")
	ErrOverlappingActiveBooking = errors.New("client already has an active booking in this time range")
)

const bookingColumns = `id, client_id, provider_id, slot_id, start_time, end_time, status, price_cents, created_at, updated_at`

type repository struct {
	db    *sqlx.DB
	slots availability.Repository
}

func NewRepository(db *sqlx.DB, slots availability.Repository) Repository {
	return &repository{db: db, slots: slots}
}

// isUniqueViolation reports whether err is the Postgres unique
// constraint (23505), here the one-active-booking-per-slot partial index.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *repository) CreateWithReservation(ctx context.Context, b *Booking) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO bookings (client_id, provider_id, slot_id, start_time, end_time, status, price_cents)
		VALUES ($1, $2, $3, $4, $5, 'pending_confirmation', $6)
		RETURNING ` + bookingColumns

	var created Booking
	err = tx.GetContext(ctx, &created, query,
		b.ClientID, b.ProviderID, b.SlotID, b.StartTime, b.EndTime, b.PriceCents)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotNoLongerAvailable
		}
		return nil, err
	}

	// The compare-and-set on slot status is the sole defense against
	// double-booking: losing it aborts the whole transaction.
	err = r.slots.TransitionSlotTx(ctx, tx, b.SlotID, availability.StatusAvailable, availability.StatusReserved)
	if err != nil {
		if errors.Is(err, availability.ErrSlotStateMismatch) {
			return nil, ErrSlotNoLongerAvailable
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int, from, to BookingStatus) error {
	return r.updateStatus(ctx, r.db, id, from, to)
}

func (r *repository) updateStatus(ctx context.Context, ext sqlx.ExtContext, id int, from, to BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := ext.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// distinguish a vanished booking from a lost status race
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrInvalidTransition
	}

	return nil
}

func (r *repository) UpdateStatusAndReleaseSlot(ctx context.Context, id int, from, to BookingStatus, slotID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.updateStatus(ctx, tx, id, from, to); err != nil {
		return err
	}

	if err := r.slots.ReleaseSlotIfUnclaimedTx(ctx, tx, slotID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) ClientHasOverlappingActive(ctx context.Context, clientID int, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE client_id = $1
			  AND status IN ('pending_confirmation', 'confirmed')
			  AND start_time < $3
			  AND end_time > $2
		)
	`

	return db.Exists(ctx, r.db, query, clientID, start, end)
}

func (r *repository) ListByClient(ctx context.Context, clientID int, status *BookingStatus) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE client_id = $1`
	args := []interface{}{clientID}

	if status != nil {
		args = append(args, *status)
		query += ` AND status = $2`
	}

	query += ` ORDER BY created_at DESC`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListByProvider(ctx context.Context, providerID int, status *BookingStatus) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE provider_id = $1`
	args := []interface{}{providerID}

	if status != nil {
		args = append(args, *status)
		query += ` AND status = $2`
	}

	query += ` ORDER BY created_at DESC`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, err
	}

	return bookings, nil
}

// ListExpiredPending returns pending bookings whose slot start has
// passed, for the sweeper to move to rejected_by_system.
func (r *repository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending_confirmation' AND start_time <= $1
		ORDER BY start_time ASC
		LIMIT $2
	`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, now, limit); err != nil {
		return nil, err
	}

	return bookings, nil
}
