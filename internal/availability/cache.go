package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookingpt/internal/logger"

	"github.com/redis/go-redis/v9"
)

// SlotCache is a short-TTL read cache for provider slot listings. The
// store stays the source of truth; every slot mutation invalidates the
// provider's entries.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSlotCache(client *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{client: client, ttl: ttl}
}

func listKey(providerID int, from, to *time.Time) string {
	f, t := "-", "-"
	if from != nil {
		f = from.UTC().Format(time.RFC3339)
	}
	if to != nil {
		t = to.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("slots:%d:%s:%s", providerID, f, t)
}

func invalidationPattern(providerID int) string {
	return fmt.Sprintf("slots:%d:*", providerID)
}

func (c *SlotCache) Get(ctx context.Context, providerID int, from, to *time.Time) ([]Slot, bool) {
	data, err := c.client.Get(ctx, listKey(providerID, from, to)).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, false
	}

	return slots, true
}

func (c *SlotCache) Set(ctx context.Context, providerID int, from, to *time.Time, slots []Slot) {
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, listKey(providerID, from, to), data, c.ttl).Err(); err != nil {
		logger.Debug("slot cache set failed", "provider_id", providerID, "error", err)
	}
}

func (c *SlotCache) Invalidate(ctx context.Context, providerID int) {
	iter := c.client.Scan(ctx, 0, invalidationPattern(providerID), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Debug("slot cache invalidate failed", "key", iter.Val(), "error", err)
		}
	}
}
