package rates

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrRateNotSet = errors.New("provider has not configured a rate")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SetRate(ctx context.Context, providerID int, hourlyRateCents int64) (*ProviderRate, error) {
	query := `
		INSERT INTO provider_rates (provider_id, hourly_rate_cents, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (provider_id)
		DO UPDATE SET hourly_rate_cents = EXCLUDED.hourly_rate_cents, updated_at = NOW()
		RETURNING provider_id, hourly_rate_cents, updated_at
	`

	var rate ProviderRate
	if err := r.db.GetContext(ctx, &rate, query, providerID, hourlyRateCents); err != nil {
		return nil, err
	}

	return &rate, nil
}

func (r *repository) GetRate(ctx context.Context, providerID int) (*ProviderRate, error) {
	query := `
		SELECT provider_id, hourly_rate_cents, updated_at
		FROM provider_rates
		WHERE provider_id = $1
	`

	var rate ProviderRate
	err := r.db.GetContext(ctx, &rate, query, providerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRateNotSet
	}
	if err != nil {
		return nil, err
	}

	return &rate, nil
}

func (r *repository) HourlyRateCents(ctx context.Context, providerID int) (int64, error) {
	rate, err := r.GetRate(ctx, providerID)
	if err != nil {
		return 0, err
	}
	return rate.HourlyRateCents, nil
}
