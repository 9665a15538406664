package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const sweepInterval = time.Minute

// MemoryRateLimiter is a process-local limiter. Each key gets a token bucket
// that refills limit tokens per window, so bursts up to limit are allowed.
// Buckets idle for a whole window are full again and get dropped.
type MemoryRateLimiter struct {
	buckets   sync.Map
	lastSweep atomic.Int64
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	window   time.Duration
	lastSeen atomic.Int64
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{now: time.Now}
}

func (r *MemoryRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return false, fmt.Errorf("invalid rate limit %d per %s", limit, window)
	}

	now := r.now()
	r.maybeSweep(now)

	// a bucket is sized for one limit and window
	bucketKey := fmt.Sprintf("%s|%d|%s", key, limit, window)
	val, ok := r.buckets.Load(bucketKey)
	if !ok {
		val, _ = r.buckets.LoadOrStore(bucketKey, &bucket{
			limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit),
			window:  window,
		})
	}
	b := val.(*bucket)
	b.lastSeen.Store(now.UnixNano())
	return b.limiter.AllowN(now, 1), nil
}

func (r *MemoryRateLimiter) maybeSweep(now time.Time) {
	last := r.lastSweep.Load()
	if now.UnixNano()-last < int64(sweepInterval) || !r.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	r.buckets.Range(func(k, v any) bool {
		b := v.(*bucket)
		if now.Sub(time.Unix(0, b.lastSeen.Load())) >= b.window {
			r.buckets.Delete(k)
		}
		return true
	})
}

func (r *MemoryRateLimiter) size() int {
	n := 0
	r.buckets.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
