package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/keydesk/keydesk/internal/cache"
	"github.com/keydesk/keydesk/internal/metrics"
	"github.com/keydesk/keydesk/internal/testutil"
)

type brokenLimiter struct{}

func (brokenLimiter) CheckLoginRateLimit(context.Context, string, int, int) (*cache.RateLimitResult, error) {
	return nil, errors.New("limiter unavailable")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitLogin_BlocksAfterBurst(t *testing.T) {
	t.Parallel()

	_, url := testutil.StartRedis(t)
	c, err := cache.New(context.Background(), url)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	recorder := metrics.NewInMemory()
	handler := RateLimitLogin(RateLimitConfig{
		Logger:    discardLogger(),
		Limiter:   c,
		Metrics:   recorder,
		Enabled:   true,
		PerMinute: 1,
		Burst:     3,
	})(okHandler())

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":40000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 3; i++ {
		if rec := send("203.0.113.7"); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := send("203.0.113.7")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if s, err := strconv.Atoi(rec.Header().Get("Retry-After")); err != nil || s < 1 {
		t.Errorf("Retry-After = %q, want positive seconds", rec.Header().Get("Retry-After"))
	}
	if recorder.Snapshot().LoginRateLimited != 1 {
		t.Error("rate limited attempt not counted")
	}

	// Another client still has its own budget.
	if rec := send("198.51.100.2"); rec.Code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", rec.Code)
	}
}

func TestRateLimitLogin_Disabled(t *testing.T) {
	t.Parallel()

	handler := RateLimitLogin(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: brokenLimiter{},
		Enabled: false,
	})(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimitLogin_FailsOpen(t *testing.T) {
	t.Parallel()

	_, url := testutil.StartRedis(t)
	c, err := cache.New(context.Background(), url)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	_ = c.Close()

	for name, limiter := range map[string]LoginLimiter{"stub": brokenLimiter{}, "closed redis": c} {
		handler := RateLimitLogin(RateLimitConfig{
			Logger:    discardLogger(),
			Limiter:   limiter,
			Enabled:   true,
			PerMinute: 1,
			Burst:     1,
		})(okHandler())

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("%s attempt %d: status = %d, want 200", name, i+1, rec.Code)
			}
		}
	}
}

func TestRateLimitHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	setRateLimitHeaders(rec, 10, 4, time.Unix(1700000000, 0))

	if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
		t.Errorf("X-RateLimit-Limit = %s, want 10", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "4" {
		t.Errorf("X-RateLimit-Remaining = %s, want 4", got)
	}
	if got := rec.Header().Get("X-RateLimit-Reset"); got != "1700000000" {
		t.Errorf("X-RateLimit-Reset = %s, want 1700000000", got)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.9", "192.0.2.9"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		if got := getClientIP(req); got != tt.want {
			t.Errorf("getClientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
