// Package ratelimit implements fixed-window request counting over a cache
// backend.
package ratelimit

import (
	"context"
	"time"

	"codefix/internal/common/cache"
	pkgerrors "codefix/pkg/errors"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	Count   int64
	Limit   int
	// RetryAfter is how long until the current window closes.
	RetryAfter time.Duration
}

// Limiter enforces fixed-window limits. The first hit in a window creates
// the counter with the window as its TTL; later hits increment it.
type Limiter struct {
	cache        cache.BasicOps
	window       time.Duration
	max          int
	cacheTimeout time.Duration
}

func NewLimiter(cacheClient cache.BasicOps, window time.Duration, max int, cacheTimeout time.Duration) *Limiter {
	if cacheTimeout <= 0 {
		cacheTimeout = time.Second
	}
	return &Limiter{cache: cacheClient, window: window, max: max, cacheTimeout: cacheTimeout}
}

func (l *Limiter) Window() time.Duration {
	return l.window
}

// Allow counts one hit against key. A non-positive limit disables limiting.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.max <= 0 || l.window <= 0 {
		return Decision{Allowed: true, Limit: l.max}, nil
	}
	if l.cache == nil {
		return Decision{}, pkgerrors.New(pkgerrors.ServiceUnavailable).WithMessage("rate limit cache is unavailable")
	}

	ctxCache, cancel := context.WithTimeout(ctx, l.cacheTimeout)
	defer cancel()

	acquired, err := l.cache.SetNX(ctxCache, key, 1, l.window)
	if err != nil {
		return Decision{}, pkgerrors.Wrapf(err, pkgerrors.CacheError, "rate limit check failed")
	}

	count := int64(1)
	retryAfter := l.window
	if !acquired {
		count, err = l.cache.Incr(ctxCache, key)
		if err != nil {
			return Decision{}, pkgerrors.Wrapf(err, pkgerrors.CacheError, "rate limit check failed")
		}
		ttl, ttlErr := l.cache.TTL(ctxCache, key)
		switch {
		case ttlErr != nil:
		case ttl <= 0:
			// The counter lost its TTL (or expired between calls); restart the window.
			_ = l.cache.Expire(ctxCache, key, l.window)
		default:
			retryAfter = ttl
		}
	}

	return Decision{
		Allowed:    count <= int64(l.max),
		Count:      count,
		Limit:      l.max,
		RetryAfter: retryAfter,
	}, nil
}
