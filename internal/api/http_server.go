package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/export"
	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/service"
	"shareit/internal/validation"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-Id"

// Services bundles the business operations exposed over HTTP.
type Services struct {
	Bookings *service.BookingService
	Items    *service.ItemService
	Comments *service.CommentService
	Users    *service.UserService
	Exporter *export.Exporter
}

// HealthChecker reports whether a dependency can serve requests.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HTTPServer struct {
	svc      Services
	validate *validation.Validator
	limiter  domain.RateLimiter
	health   HealthChecker
	rate     config.APIRateLimitConfig
	booking  config.BookingConfig
	location *time.Location
	logger   *zerolog.Logger
	server   *http.Server
}

func NewHTTPServer(
	cfg *config.Config,
	svc Services,
	limiter domain.RateLimiter,
	health HealthChecker,
	logger *zerolog.Logger,
) *HTTPServer {
	loc, err := cfg.Booking.Location()
	if err != nil {
		loc = time.UTC
	}
	pageSize := cfg.Booking
	if pageSize.DefaultPageSize <= 0 {
		pageSize.DefaultPageSize = models.DefaultPageSize
	}

	s := &HTTPServer{
		svc:      svc,
		validate: validation.New(),
		limiter:  limiter,
		health:   health,
		rate:     cfg.API.RateLimit,
		booking:  pageSize,
		location: loc,
		logger:   logger,
	}

	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, domain.NotFound("Route %s %s not found", r.Method, r.URL.Path))
	})
	s.routes(router)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.HTTP.Port),
		Handler:           s.requestID(s.logging(s.rateLimit(router))),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

func (s *HTTPServer) routes(router *httprouter.Router) {
	handle := func(method, path string, h httprouter.Handle) {
		router.Handle(method, path, instrument(path, h))
	}

	handle(http.MethodGet, "/healthz", s.handleHealthz)
	handle(http.MethodGet, "/readyz", s.handleReadyz)

	handle(http.MethodPost, "/bookings", s.handleCreateBooking)
	handle(http.MethodGet, "/bookings", s.handleListBookerBookings)
	handle(http.MethodPatch, "/bookings/:bookingId", s.handleApproveBooking)
	// GET /bookings/owner shares the wildcard segment with GET /bookings/:bookingId
	handle(http.MethodGet, "/bookings/:bookingId", s.handleGetBooking)
	handle(http.MethodGet, "/bookings/:bookingId/export", s.handleExportOwnerBookings)

	handle(http.MethodPost, "/users", s.handleCreateUser)
	handle(http.MethodGet, "/users", s.handleListUsers)
	handle(http.MethodGet, "/users/:userId", s.handleGetUser)
	handle(http.MethodPatch, "/users/:userId", s.handleUpdateUser)
	handle(http.MethodDelete, "/users/:userId", s.handleDeleteUser)

	handle(http.MethodPost, "/items", s.handleCreateItem)
	handle(http.MethodGet, "/items", s.handleListOwnerItems)
	// GET /items/search shares the wildcard segment with GET /items/:itemId
	handle(http.MethodGet, "/items/:itemId", s.handleGetItem)
	handle(http.MethodPatch, "/items/:itemId", s.handleUpdateItem)
	handle(http.MethodPost, "/items/:itemId/comment", s.handleAddComment)
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// requestID tags the request context logger with an id taken from the
// caller or generated.
func (s *HTTPServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		logger := s.logger.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

func (s *HTTPServer) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		zerolog.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// rateLimit caps requests per acting user, or per remote host for
// anonymous calls. Limiter failures let the request through.
func (s *HTTPServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil || s.rate.UserLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := s.limiter.Allow(r.Context(), rateLimitKey(r), s.rate.UserLimit, s.rate.UserWindow)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Code: "RATE_LIMITED", Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func rateLimitKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(models.SharerUserHeader)); id != "" {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "ip:" + host
	}
	return "ip:unknown"
}

func instrument(route string, h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(recorder, r, ps)
		metrics.IncHTTP(r.Method+" "+route, recorder.status)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// actingUser reads the id of the calling user from the sharer header.
func actingUser(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(models.SharerUserHeader))
	if raw == "" {
		return 0, domain.Validation("%s header is required", models.SharerUserHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.Validation("%s header must be an integer, got %q", models.SharerUserHeader, raw)
	}
	return id, nil
}

func pathID(ps httprouter.Params, name string) (int64, error) {
	raw := ps.ByName(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.Validation("%s must be an integer, got %q", name, raw)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validation("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}
