package rates

import "context"

// RateSource is what the booking manager consumes to snapshot prices.
type RateSource interface {
	HourlyRateCents(ctx context.Context, providerID int) (int64, error)
}

type Repository interface {
	RateSource
	SetRate(ctx context.Context, providerID int, hourlyRateCents int64) (*ProviderRate, error)
	GetRate(ctx context.Context, providerID int) (*ProviderRate, error)
}
