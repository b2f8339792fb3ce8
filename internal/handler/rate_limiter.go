package handler

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter gates requests by client key (remote address).
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// Simple in-memory token bucket per key. Suited to a single instance;
// use the Redis limiter when running more than one.
type tokenBucket struct {
	tokens float64
	last   time.Time
}

type MemoryRateLimiter struct {
	buckets map[string]*tokenBucket
	mu      sync.Mutex
	rate    float64
	burst   float64
}

func NewMemoryRateLimiter(rate, burst float64) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		buckets: make(map[string]*tokenBucket),
		rate:    rate,
		burst:   burst,
	}
}

func (s *MemoryRateLimiter) Allow(_ context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	now := time.Now()
	if !ok {
		s.buckets[key] = &tokenBucket{tokens: s.burst - 1, last: now}
		return true
	}
	elapsed := now.Sub(b.last).Seconds()
	b.tokens += elapsed * s.rate
	if b.tokens > s.burst {
		b.tokens = s.burst
	}
	b.last = now
	if b.tokens >= 1 {
		b.tokens -= 1
		return true
	}
	return false
}

// RedisRateLimiter counts requests per key in a fixed window via INCR.
// The window key expires on first hit, so the counter resets itself.
type RedisRateLimiter struct {
	Client *redis.Client
	Limit  int64
	Window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, limit int64, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{Client: client, Limit: limit, Window: window}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	k := "ratelimit:" + key
	n, err := l.Client.Incr(ctx, k).Result()
	if err != nil {
		// fail open: a Redis outage must not take the API down
		return true
	}
	if n == 1 {
		_ = l.Client.Expire(ctx, k, l.Window).Err()
	}
	return n <= l.Limit
}
