package api

import (
	"context"
	"sync"

	"shareit/internal/config"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultBurst = 5

// clientLimiter keeps one token bucket per gRPC caller.
type clientLimiter struct {
	buckets sync.Map
	limit   rate.Limit
	burst   int
}

func newClientLimiter(cfg config.APIRateLimitConfig) *clientLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	return &clientLimiter{limit: rate.Limit(cfg.RPS), burst: burst}
}

func (l *clientLimiter) allow(key string) bool {
	if l.limit <= 0 {
		return true
	}
	v, ok := l.buckets.Load(key)
	if !ok {
		v, _ = l.buckets.LoadOrStore(key, rate.NewLimiter(l.limit, l.burst))
	}
	return v.(*rate.Limiter).Allow()
}

// Interceptor throttles per authenticated client, or per peer address
// when auth is off.
func (l *clientLimiter) Interceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		key := "peer:" + peerAddr(ctx)
		if client, ok := callerFromContext(ctx); ok {
			key = "client:" + client.Key
		}
		if !l.allow(key) {
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}
