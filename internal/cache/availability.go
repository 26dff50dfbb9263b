package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gearbook-backend/internal/logger"
)

const (
	// keyCalendar caches one product-month of the availability calendar:
	// availability:{product_id}:{yyyy-mm} -> JSON day list
	keyCalendar = "availability:%d:%04d-%02d"

	calendarTTL = 5 * time.Minute
)

// New creates a redis client for the availability cache.
func New(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// AvailabilityCache is a best-effort cache for monthly availability
// calendars. A nil cache is valid and always misses, so redis stays
// optional in deployments.
type AvailabilityCache struct {
	rdb *redis.Client
}

func NewAvailabilityCache(rdb *redis.Client) *AvailabilityCache {
	if rdb == nil {
		return nil
	}
	return &AvailabilityCache{rdb: rdb}
}

func (c *AvailabilityCache) Get(ctx context.Context, productID int32, year int, month time.Month) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	payload, err := c.rdb.Get(ctx, calendarKey(productID, year, month)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("availability cache read failed", "error", err)
		}
		return nil, false
	}
	return payload, true
}

func (c *AvailabilityCache) Set(ctx context.Context, productID int32, year int, month time.Month, payload []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, calendarKey(productID, year, month), payload, calendarTTL).Err(); err != nil {
		logger.Warn("availability cache write failed", "error", err)
	}
}

// InvalidateRange drops the cached calendars of every month the date range
// touches. Called after any reservation write.
func (c *AvailabilityCache) InvalidateRange(ctx context.Context, productID int32, start, end time.Time) {
	if c == nil {
		return
	}
	var keys []string
	for m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(end); m = m.AddDate(0, 1, 0) {
		keys = append(keys, calendarKey(productID, m.Year(), m.Month()))
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("availability cache invalidation failed", "error", err)
	}
}

func calendarKey(productID int32, year int, month time.Month) string {
	return fmt.Sprintf(keyCalendar, productID, year, int(month))
}
