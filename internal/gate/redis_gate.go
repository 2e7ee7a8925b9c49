// Package gate provides "at most once per interval" gates keyed by user, used to
// throttle retention cleanup.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Gate admits a key at most once per interval.
type Gate interface {
	// Allow reports whether key may run now and, if so, closes the gate for interval.
	Allow(ctx context.Context, key string, interval time.Duration) (bool, error)
}

// RedisGate stores open gates as expiring Redis keys, so every API replica shares them.
type RedisGate struct {
	client *redis.Client
	prefix string
}

// NewRedisGate connects to redisURL and verifies the connection.
func NewRedisGate(redisURL string) (*RedisGate, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisGateWithClient(client), nil
}

// NewRedisGateWithClient creates a gate from an existing Redis client.
func NewRedisGateWithClient(client *redis.Client) *RedisGate {
	return &RedisGate{
		client: client,
		prefix: "cleanup:",
	}
}

func (g *RedisGate) key(key string) string {
	return g.prefix + key
}

// Allow uses SET NX with a TTL; the key expiring reopens the gate.
func (g *RedisGate) Allow(ctx context.Context, key string, interval time.Duration) (bool, error) {
	if interval <= 0 {
		return true, nil
	}
	ok, err := g.client.SetNX(ctx, g.key(key), time.Now().UTC().Format(time.RFC3339), interval).Result()
	if err != nil {
		return false, fmt.Errorf("gate %s: %w", key, err)
	}
	return ok, nil
}

// Reset reopens the gate for key.
func (g *RedisGate) Reset(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.key(key)).Err(); err != nil {
		return fmt.Errorf("reset gate %s: %w", key, err)
	}
	return nil
}

func (g *RedisGate) Close() error {
	return g.client.Close()
}

func (g *RedisGate) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}
