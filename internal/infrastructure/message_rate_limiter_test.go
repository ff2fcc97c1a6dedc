package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReplyRateLimiterBurstPerKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewReplyRateLimiter(ctx, 1, 2)

	assert.True(t, rl.Allow("acme|5527992980043"))
	assert.True(t, rl.Allow("acme|5527992980043"))
	assert.False(t, rl.Allow("acme|5527992980043"))

	// other conversations keep their own budget
	assert.True(t, rl.Allow("acme|5511988887777"))
	assert.Equal(t, 2, rl.Stats()["active_conversations"])
}

func TestReplyRateLimiterEvictsIdleKeys(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewReplyRateLimiter(ctx, 6, 1)

	rl.Allow("a")
	rl.evictIdle(time.Now().Add(limiterIdleTTL + time.Second))
	assert.Equal(t, 0, rl.Stats()["active_conversations"])
	assert.True(t, rl.Allow("a"))
}
