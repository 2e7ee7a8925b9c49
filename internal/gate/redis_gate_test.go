package gate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisGate, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	g, err := NewRedisGate("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis gate: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })
	return g, s
}

func TestNewRedisGate(t *testing.T) {
	g, _ := setupTestRedis(t)
	if err := g.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNewRedisGateRejectsBadURL(t *testing.T) {
	if _, err := NewRedisGate("not a url"); err == nil {
		t.Fatal("expected error for invalid redis url")
	}
}

func TestRedisGateAllowsOncePerInterval(t *testing.T) {
	g, s := setupTestRedis(t)
	ctx := context.Background()

	ok, err := g.Allow(ctx, "user-1", time.Hour)
	if err != nil || !ok {
		t.Fatalf("first Allow = %v, %v; want true", ok, err)
	}
	ok, err = g.Allow(ctx, "user-1", time.Hour)
	if err != nil || ok {
		t.Fatalf("second Allow = %v, %v; want false", ok, err)
	}
	if ttl := s.TTL("cleanup:user-1"); ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", ttl)
	}

	s.FastForward(time.Hour + time.Second)

	ok, err = g.Allow(ctx, "user-1", time.Hour)
	if err != nil || !ok {
		t.Fatalf("Allow after expiry = %v, %v; want true", ok, err)
	}
}

func TestRedisGateIsolatesKeys(t *testing.T) {
	g, _ := setupTestRedis(t)
	ctx := context.Background()

	if ok, _ := g.Allow(ctx, "user-1", time.Hour); !ok {
		t.Fatal("user-1 should be allowed")
	}
	if ok, _ := g.Allow(ctx, "user-2", time.Hour); !ok {
		t.Fatal("user-2 should be allowed independently")
	}
}

func TestRedisGateReset(t *testing.T) {
	g, _ := setupTestRedis(t)
	ctx := context.Background()

	_, _ = g.Allow(ctx, "user-1", time.Hour)
	if err := g.Reset(ctx, "user-1"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if ok, _ := g.Allow(ctx, "user-1", time.Hour); !ok {
		t.Fatal("expected gate to reopen after Reset")
	}
	// Resetting a missing key is not an error.
	if err := g.Reset(ctx, "nobody"); err != nil {
		t.Errorf("Reset missing key failed: %v", err)
	}
}

func TestRedisGateZeroIntervalAlwaysAllows(t *testing.T) {
	g, s := setupTestRedis(t)
	for i := 0; i < 3; i++ {
		if ok, err := g.Allow(context.Background(), "user-1", 0); err != nil || !ok {
			t.Fatalf("Allow(0) = %v, %v", ok, err)
		}
	}
	if s.Exists("cleanup:user-1") {
		t.Error("zero interval should not write a key")
	}
}

func TestRedisGateReportsConnectionErrors(t *testing.T) {
	g, s := setupTestRedis(t)
	s.Close()
	if _, err := g.Allow(context.Background(), "user-1", time.Hour); err == nil {
		t.Fatal("expected error when redis is down")
	}
}

func TestMemoryGate(t *testing.T) {
	now := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	g := NewMemoryGate(func() time.Time { return now })
	ctx := context.Background()

	if ok, _ := g.Allow(ctx, "user-1", time.Hour); !ok {
		t.Fatal("first Allow should pass")
	}
	if ok, _ := g.Allow(ctx, "user-1", time.Hour); ok {
		t.Fatal("second Allow within interval should be refused")
	}
	now = now.Add(time.Hour)
	if ok, _ := g.Allow(ctx, "user-1", time.Hour); !ok {
		t.Fatal("Allow after interval should pass")
	}
	_ = g.Reset(ctx, "user-1")
	if ok, _ := g.Allow(ctx, "user-1", time.Hour); !ok {
		t.Fatal("Allow after Reset should pass")
	}
}
