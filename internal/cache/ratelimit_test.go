package cache

import (
	"context"
	"testing"
)

func TestCheckLoginRateLimit_Burst(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(t)
	ctx := context.Background()

	const burst = 3
	for i := 0; i < burst; i++ {
		res, err := c.CheckLoginRateLimit(ctx, "10.0.0.1", 10, burst)
		if err != nil {
			t.Fatalf("CheckLoginRateLimit failed: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	res, err := c.CheckLoginRateLimit(ctx, "10.0.0.1", 10, burst)
	if err != nil {
		t.Fatalf("CheckLoginRateLimit failed: %v", err)
	}
	if res.Allowed {
		t.Error("attempt beyond burst should be denied")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %s, want positive", res.RetryAfter)
	}

	// Other clients keep their own budget.
	res, err = c.CheckLoginRateLimit(ctx, "10.0.0.2", 10, burst)
	if err != nil {
		t.Fatalf("CheckLoginRateLimit failed: %v", err)
	}
	if !res.Allowed {
		t.Error("a different IP should not be limited")
	}
}

func TestCheckLoginRateLimit_StoreUnavailable(t *testing.T) {
	t.Parallel()
	c, mr := newTestCache(t)

	mr.Close()

	res, err := c.CheckLoginRateLimit(context.Background(), "10.0.0.1", 10, 1)
	if err == nil {
		t.Fatal("CheckLoginRateLimit should report a store error when Redis is down")
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
}

func TestHashIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip1  string
		ip2  string
	}{
		{"different IPv4", "192.168.1.1", "192.168.1.2"},
		{"IPv4 vs IPv6", "127.0.0.1", "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if hashIP(tt.ip1) == hashIP(tt.ip2) {
				t.Errorf("%q and %q should hash differently", tt.ip1, tt.ip2)
			}
			if hashIP(tt.ip1) != hashIP(tt.ip1) {
				t.Error("hashIP should be deterministic")
			}
			if len(hashIP(tt.ip1)) != 16 {
				t.Errorf("hashIP length = %d, want 16", len(hashIP(tt.ip1)))
			}
		})
	}
}
