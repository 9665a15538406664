package api

import (
	"context"
	"runtime/debug"
	"time"

	"shareit/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const requestIDMetadataKey = "x-request-id"

// requestLogger tags every call with a request id, puts the tagged logger
// into the context and records the outcome.
func requestLogger(base zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := incomingRequestID(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadataKey, id))

		log := base.With().Str("request_id", id).Logger()
		started := time.Now()
		resp, err := handler(log.WithContext(ctx), req)

		code := status.Code(err)
		metrics.IncGRPC(info.FullMethod, code.String())

		var event *zerolog.Event
		switch code {
		case codes.OK:
			event = log.Info()
		case codes.Internal, codes.Unknown:
			event = log.Error().Err(err)
		default:
			event = log.Warn().Str("reason", status.Convert(err).Message())
		}
		event.
			Str("method", info.FullMethod).
			Str("peer", peerAddr(ctx)).
			Str("code", code.String()).
			Dur("duration", time.Since(started)).
			Msg("grpc request")

		return resp, err
	}
}

// recoverPanics turns a handler panic into codes.Internal.
func recoverPanics(base zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				base.Error().
					Interface("panic", r).
					Str("method", info.FullMethod).
					Bytes("stack", debug.Stack()).
					Msg("grpc handler panicked")
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

func incomingRequestID(ctx context.Context) string {
	md, _ := metadata.FromIncomingContext(ctx)
	if id := firstValue(md, requestIDMetadataKey); id != "" {
		return id
	}
	return uuid.NewString()
}

func peerAddr(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	return p.Addr.String()
}
