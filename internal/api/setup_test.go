package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/export"
	"shareit/internal/models"
	"shareit/internal/service"
	"shareit/internal/validation"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db     *database.DB
	svc    Services
	cfg    *config.Config
	server *HTTPServer
	ts     *httptest.Server
	owner  *models.User
	booker *models.User
	item   *models.Item
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			HTTP: config.APIHTTPConfig{Port: 8080},
			GRPC: config.APIGRPCConfig{Port: 8081},
		},
		Booking: config.BookingConfig{DefaultPageSize: models.DefaultPageSize},
	}
}

func newTestServices(t *testing.T, db *database.DB) Services {
	t.Helper()
	logger := testLogger()
	v := validation.New()
	return Services{
		Bookings: service.NewBookingService(db, db, db, logger),
		Items:    service.NewItemService(db, db, db, db, v, logger),
		Comments: service.NewCommentService(db, db, db, db, v, logger),
		Users:    service.NewUserService(db, v, logger),
		Exporter: export.NewExporter(time.UTC, logger),
	}
}

func newTestEnv(t *testing.T, opts ...func(*testEnv)) *testEnv {
	t.Helper()
	db, err := database.NewDB(":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{db: db, cfg: testConfig()}
	env.svc = newTestServices(t, db)
	for _, opt := range opts {
		opt(env)
	}

	env.server = NewHTTPServer(env.cfg, env.svc, nil, db, testLogger())
	env.ts = httptest.NewServer(env.server.Handler())
	t.Cleanup(env.ts.Close)

	ctx := context.Background()
	env.owner = &models.User{Name: "Owner", Email: "owner@example.com"}
	env.booker = &models.User{Name: "Booker", Email: "booker@example.com"}
	require.NoError(t, db.CreateUser(ctx, env.owner))
	require.NoError(t, db.CreateUser(ctx, env.booker))
	env.item = &models.Item{Name: "Drill", Description: "Cordless drill", Available: true, OwnerID: env.owner.ID}
	require.NoError(t, db.CreateItem(ctx, env.item))
	return env
}

// do sends a request as userID; zero means no acting user header.
func (e *testEnv) do(t *testing.T, method, path string, userID int64, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set(models.SharerUserHeader, strconv.FormatInt(userID, 10))
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (e *testEnv) insertBooking(t *testing.T, start, end time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{ItemID: e.item.ID, BookerID: e.booker.ID, Start: start, End: end, Status: status}
	require.NoError(t, e.db.CreateBooking(context.Background(), b))
	return b
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
