package infrastructure

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterCleanupTick = 5 * time.Minute
	limiterIdleTTL     = 10 * time.Minute
)

// ReplyRateLimiter caps automated replies per conversation key
type ReplyRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	limit    rate.Limit
	burst    int
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewReplyRateLimiter allows perMinute replies per key with the given burst.
// Idle keys are dropped until ctx is done.
func NewReplyRateLimiter(ctx context.Context, perMinute float64, burst int) *ReplyRateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &ReplyRateLimiter{
		limiters: make(map[string]*keyedLimiter),
		limit:    rate.Limit(perMinute / 60),
		burst:    burst,
	}
	go rl.cleanup(ctx)
	return rl
}

// Allow consumes one token for key if available
func (rl *ReplyRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &keyedLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (rl *ReplyRateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

func (rl *ReplyRateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(rl.limiters, key)
		}
	}
}

// Stats returns limiter statistics
func (rl *ReplyRateLimiter) Stats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"active_conversations": len(rl.limiters),
		"rate_per_second":      float64(rl.limit),
		"burst":                rl.burst,
	}
}
