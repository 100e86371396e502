package rates

import "time"

// ProviderRate is the provider-configured hourly rate used to snapshot
// booking prices.
type ProviderRate struct {
	ProviderID      int       `db:"provider_id" json:"provider_id"`
	HourlyRateCents int64     `db:"hourly_rate_cents" json:"hourly_rate_cents"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type SetRateRequest struct {
	HourlyRateCents int64 `json:"hourly_rate_cents" binding:"required,gt=0"`
}
