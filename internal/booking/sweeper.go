package booking

import (
	"context"
	"time"

	"bookingpt/internal/logger"
	"bookingpt/internal/metrics"
)

// Sweeper periodically expires pending bookings whose slot start has
// passed, so abandoned requests do not hold slots reserved forever.
type Sweeper struct {
	service  Service
	interval time.Duration
}

func NewSweeper(service Service, interval time.Duration) *Sweeper {
	return &Sweeper{service: service, interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) {
	logger.Info("booking sweeper started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("booking sweeper stopped")
			return
		case <-ticker.C:
			metrics.SweeperRunsTotal.Inc()
			count, err := s.service.RejectExpired(ctx)
			if err != nil {
				logger.Error("booking sweep failed", "error", err)
				continue
			}
			if count > 0 {
				logger.Info("expired pending bookings", "count", count)
			}
		}
	}
}
