package availability

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateSlot(ctx context.Context, providerID int, start, end time.Time) (*Slot, error)
	GetSlotByID(ctx context.Context, id int) (*Slot, error)
	UpdateSlotInterval(ctx context.Context, id int, start, end time.Time) (*Slot, error)
	DeleteSlot(ctx context.Context, id int) error
	ListSlots(ctx context.Context, providerID int, from, to *time.Time) ([]Slot, error)
	HasActiveOverlap(ctx context.Context, providerID int, start, end time.Time, excludeSlotID int) (bool, error)
	TransitionSlot(ctx context.Context, slotID int, from, to SlotStatus) error
	TransitionSlotTx(ctx context.Context, tx *sqlx.Tx, slotID int, from, to SlotStatus) error
	ReleaseSlotIfUnclaimedTx(ctx context.Context, tx *sqlx.Tx, slotID int) error
}
