// Package ratelimit enforces per-API-key hourly request budgets against a
// shared atomic counter, so limits hold across service instances.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/cache"
	"github.com/promptarena/promptarena/internal/metrics"
)

// CounterStore is an atomic increment-and-read counter with expiry. The
// Redis cache satisfies it in production; tests use an in-memory fake.
type CounterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

var _ CounterStore = (*cache.Cache)(nil)

// Limiter counts requests per key in fixed hourly buckets. Bucket keys roll
// over on the hour; the counter expires shortly after its window so stale
// buckets clean themselves up.
type Limiter struct {
	counters CounterStore
	now      func() time.Time
}

func NewLimiter(counters CounterStore) *Limiter {
	return &Limiter{counters: counters, now: time.Now}
}

// Allow counts one request against the key's hourly budget. When the budget
// is exhausted it fails with RateLimitExceeded; retryAfter then says how
// long until the window rolls over.
func (l *Limiter) Allow(ctx context.Context, keyID int64, limit int) (retryAfter time.Duration, err error) {
	if limit <= 0 {
		return 0, nil
	}

	now := l.now()
	window := now.Truncate(time.Hour)
	bucket := fmt.Sprintf("ratelimit:key:%d:%d", keyID, window.Unix())

	// The extra hour of TTL keeps the bucket around long enough for
	// in-flight requests at the window boundary.
	n, err := l.counters.IncrWithTTL(ctx, bucket, 2*time.Hour)
	if err != nil {
		return 0, fmt.Errorf("rate limit counter: %w", err)
	}

	if n > int64(limit) {
		metrics.RateLimitRejections.Inc()
		retryAfter = window.Add(time.Hour).Sub(now)
		return retryAfter, fmt.Errorf("%w: %d requests per hour", apperr.ErrRateLimited, limit)
	}
	return 0, nil
}
