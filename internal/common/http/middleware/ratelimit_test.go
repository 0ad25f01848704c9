package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"codefix/internal/common/cache"
	"codefix/internal/common/http/middleware"
	"codefix/internal/common/ratelimit"
	pkgerrors "codefix/pkg/errors"
)

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(cache.NewMemoryCache(), 15*time.Minute, 2, time.Second)
	router := newRouter(middleware.RateLimitMiddleware(limiter))
	headers := map[string]string{"X-Forwarded-For": "192.0.2.1"}

	for i := 0; i < 2; i++ {
		rec, _, err := performRequest(router, http.MethodGet, "/ok", headers)
		if err != nil {
			t.Fatalf("decode response failed: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status on attempt %d: %d", i+1, rec.Code)
		}
	}

	rec, resp, err := performRequest(router, http.MethodGet, "/ok", headers)
	if err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if resp.Code != int(pkgerrors.TooManyRequests) {
		t.Fatalf("unexpected error code: %d", resp.Code)
	}
	if resp.Message != "Too many requests. Please try again later." {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	retryAfter, ok := resp.Details["retryAfter"].(float64)
	if !ok || retryAfter <= 0 || retryAfter > 900 {
		t.Fatalf("unexpected retryAfter: %v", resp.Details["retryAfter"])
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	rec, _, err = performRequest(router, http.MethodGet, "/ok", map[string]string{"X-Forwarded-For": "192.0.2.2"})
	if err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("other client should not be limited, got %d", rec.Code)
	}
}

func TestRateLimitMiddlewareNilLimiter(t *testing.T) {
	router := newRouter(middleware.RateLimitMiddleware(nil))
	rec, _, err := performRequest(router, http.MethodGet, "/ok", nil)
	if err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

type brokenCache struct{ cache.BasicOps }

func (brokenCache) SetNX(context.Context, string, interface{}, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	limiter := ratelimit.NewLimiter(brokenCache{}, time.Minute, 1, time.Second)
	router := newRouter(middleware.RateLimitMiddleware(limiter))
	for i := 0; i < 3; i++ {
		rec, _, err := performRequest(router, http.MethodGet, "/ok", nil)
		if err != nil {
			t.Fatalf("decode response failed: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected fail-open, got %d", rec.Code)
		}
	}
}
