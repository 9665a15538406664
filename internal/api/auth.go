package api

import (
	"context"
	"crypto/subtle"
	"slices"
	"strings"

	"shareit/internal/config"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	permReadBookings = "read:bookings"
	permReadItems    = "read:items"
)

type clientCtxKey struct{}

// APIKeyAuth authenticates gRPC callers by an API key plus a shared extra
// secret and checks the permission each method requires.
type APIKeyAuth struct {
	keyHeader   string
	extraHeader string
	clients     map[string]config.APIClientKey
}

func NewAPIKeyAuth(cfg config.APIAuthConfig) *APIKeyAuth {
	a := &APIKeyAuth{
		keyHeader:   headerName(cfg.HeaderAPIKey, "x-api-key"),
		extraHeader: headerName(cfg.HeaderExtra, "x-api-extra"),
		clients:     make(map[string]config.APIClientKey, len(cfg.APIKeys)),
	}
	for _, k := range cfg.APIKeys {
		a.clients[k.Key] = k
	}
	return a
}

// Interceptor rejects unauthenticated calls and stores the caller in the context.
func (a *APIKeyAuth) Interceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		client, err := a.authenticate(md)
		if err != nil {
			return nil, err
		}
		if !permitted(client, info.FullMethod) {
			return nil, status.Errorf(codes.PermissionDenied, "client %s may not call %s", client.Name, info.FullMethod)
		}
		return handler(context.WithValue(ctx, clientCtxKey{}, client), req)
	}
}

func (a *APIKeyAuth) authenticate(md metadata.MD) (config.APIClientKey, error) {
	key := firstValue(md, a.keyHeader)
	extra := firstValue(md, a.extraHeader)
	if key == "" || extra == "" {
		return config.APIClientKey{}, status.Error(codes.Unauthenticated, "missing api key headers")
	}

	client, ok := a.clients[key]
	if !ok || subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return config.APIClientKey{}, status.Error(codes.Unauthenticated, "invalid api credentials")
	}
	return client, nil
}

// permitted reports whether client may call method. A client without a
// permission list may call everything.
func permitted(client config.APIClientKey, method string) bool {
	required := requiredPermission(method)
	if required == "" || len(client.Permissions) == 0 {
		return true
	}
	return slices.ContainsFunc(client.Permissions, func(p string) bool {
		return strings.TrimSpace(p) == required
	})
}

func requiredPermission(method string) string {
	switch method {
	case methodGetBooking, methodListBookings:
		return permReadBookings
	case methodGetItem:
		return permReadItems
	}
	return ""
}

// callerFromContext returns the client stored by the auth interceptor.
func callerFromContext(ctx context.Context) (config.APIClientKey, bool) {
	client, ok := ctx.Value(clientCtxKey{}).(config.APIClientKey)
	return client, ok
}

func headerName(configured, def string) string {
	h := strings.ToLower(strings.TrimSpace(configured))
	if h == "" {
		return def
	}
	return h
}

func firstValue(md metadata.MD, key string) string {
	vals := md.Get(key)
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}
