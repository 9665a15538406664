package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRateLimiter(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewMemoryRateLimiter()
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "user:1", 2, time.Second)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, _ := limiter.Allow(ctx, "user:1", 2, time.Second)
	assert.False(t, allowed)

	allowed, _ = limiter.Allow(ctx, "user:2", 2, time.Second)
	assert.True(t, allowed)

	now = now.Add(time.Second)
	allowed, _ = limiter.Allow(ctx, "user:1", 2, time.Second)
	assert.True(t, allowed)

	_, err := limiter.Allow(ctx, "user:1", 0, time.Second)
	assert.Error(t, err)
}

func TestMemoryRateLimiter_EvictsIdleBuckets(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewMemoryRateLimiter()
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		_, err := limiter.Allow(ctx, fmt.Sprintf("user:%d", i), 5, time.Second)
		require.NoError(t, err)
	}
	_, _ = limiter.Allow(ctx, "user:slow", 1, time.Hour)
	assert.Equal(t, 101, limiter.size())

	now = now.Add(sweepInterval + time.Second)
	_, err := limiter.Allow(ctx, "user:fresh", 5, time.Second)
	require.NoError(t, err)

	// the hour-long bucket is still inside its window
	assert.Equal(t, 2, limiter.size())

	allowed, _ := limiter.Allow(ctx, "user:slow", 1, time.Hour)
	assert.False(t, allowed)
}
