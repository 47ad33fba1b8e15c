// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const limitKeyPrefix = "limit:"

// Limiter counts requests per key in fixed windows stored in Valkey, so
// every server instance shares the same budget.
type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewLimiter allows limit requests per key in each window.
func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: int64(limit), window: window}
}

// Allow records one request for key and reports whether it is within the
// limit. The window starts with the first request.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := limitKeyPrefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("limiter incr %s: %w", key, err)
	}
	return incr.Val() <= l.limit, nil
}

// Reset clears the counter for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, limitKeyPrefix+key).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("limiter reset %s: %w", key, err)
	}
	return nil
}
