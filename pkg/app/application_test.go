package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"surfaura/internal/bookings/handler"
	"surfaura/internal/bookings/repository"
	"surfaura/internal/bookings/service"
	"surfaura/internal/bookings/validator"
	"surfaura/internal/catalog"
	"surfaura/internal/diagnostics"
	"surfaura/pkg/client"
	"surfaura/pkg/config"
	"surfaura/pkg/logger"
	"surfaura/pkg/metrics"
	"surfaura/pkg/store"
	"surfaura/pkg/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const annBooking = `{"name":"Ann","email":"a@x.com","phone":"555","package":"starter-surf","date":"2025-12-03","participants":2}`

func testConfig() *config.Config {
	return &config.Config{
		StoreDriver:       config.StoreDriverMemory,
		Port:              "0",
		MongoConnTimeout:  time.Second,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
		IdempotencyTTL:    time.Hour,
		MaxRequestSize:    1024,
		CORSMaxAge:        time.Minute,
		ReadTimeout:       time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       time.Second,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
		Client:            client.NewClient(),
		Store:             memory.New(),
	}
}

func newTestApplication(t *testing.T, cfg *config.Config) (*Application, http.Handler) {
	t.Helper()

	m := metrics.New()
	repo := repository.NewBookingRepository(cfg.Store)
	bookingService := service.NewBookingService(repo, validator.NewBookingValidator(cfg.Log), nil, m, cfg.Log)

	cat, err := catalog.Default()
	require.NoError(t, err)

	a := NewApplication(cfg, m)
	a.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		catalog.NewHandler(cat, cfg.Log),
		diagnostics.NewHandler(cfg.Store, func(string) (string, bool) { return "", false }, cfg.Log),
	)
	t.Cleanup(a.stopWorkers)

	return a, a.Handler()
}

func postBooking(h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, handler.BookingsPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestApplication_BookingFlow(t *testing.T) {
	_, h := newTestApplication(t, testConfig())

	w := postBooking(h, annBooking, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created struct {
		Status string `json:"status"`
		ID     string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "success", created.Status)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(h, "/api/bookings?limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var listed handler.ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Bookings, 1)
	assert.Equal(t, created.ID, listed.Bookings[0].ID)
	assert.Equal(t, "starter-surf", listed.Bookings[0].Package)
	assert.Equal(t, 2, listed.Bookings[0].Participants)
}

func TestApplication_RejectsInvalidParticipants(t *testing.T) {
	cfg := testConfig()
	_, h := newTestApplication(t, cfg)

	w := postBooking(h, strings.Replace(annBooking, `"participants":2`, `"participants":25`, 1), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "participants must be at most 20")

	docs, err := cfg.Store.List(context.Background(), repository.CollectionName, 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestApplication_PublicEndpoints(t *testing.T) {
	_, h := newTestApplication(t, testConfig())

	tests := []struct {
		path     string
		contains string
	}{
		{path: "/", contains: `"message":"SurfAura Beach Club API Running"`},
		{path: "/api/packages", contains: `"id":"starter-surf"`},
		{path: "/api/events", contains: `"id":"night-surf"`},
		{path: "/test", contains: `"backend":"✅ Running"`},
		{path: "/health", contains: `"status":"ok"`},
		{path: "/ready", contains: `"status":"ready"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(h, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestApplication_Metrics(t *testing.T) {
	_, h := newTestApplication(t, testConfig())

	get(h, "/api/packages")
	get(h, "/no/such/route")

	w := get(h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `surfaura_http_requests_total{method="GET",route="/api/packages",status="200"} 1`)
	assert.Contains(t, body, `route="unmatched"`)
	assert.NotContains(t, body, "/no/such/route")
}

func TestApplication_CORSPreflight(t *testing.T) {
	_, h := newTestApplication(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, handler.BookingsPath, nil)
	req.Header.Set("Origin", "https://surfaura.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://surfaura.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodPost, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestApplication_IdempotentReplay(t *testing.T) {
	cfg := testConfig()
	_, h := newTestApplication(t, cfg)
	headers := map[string]string{"Idempotency-Key": "ann-2025-12-03"}

	first := postBooking(h, annBooking, headers)
	second := postBooking(h, annBooking, headers)

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))

	docs, err := cfg.Store.List(context.Background(), repository.CollectionName, 10)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

type slowStore struct {
	*memory.Store
	delay time.Duration
}

func (s slowStore) Create(ctx context.Context, collection string, record store.Document) (string, error) {
	time.Sleep(s.delay)
	return s.Store.Create(ctx, collection, record)
}

func TestApplication_ConcurrentIdempotentRequestsStoreOnce(t *testing.T) {
	cfg := testConfig()
	cfg.Store = slowStore{Store: memory.New(), delay: 50 * time.Millisecond}
	_, h := newTestApplication(t, cfg)
	headers := map[string]string{"Idempotency-Key": "k1"}

	const n = 4
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = postBooking(h, annBooking, headers).Code
		}()
	}
	wg.Wait()

	assert.Contains(t, codes, http.StatusOK)
	for _, code := range codes {
		assert.Contains(t, []int{http.StatusOK, http.StatusConflict}, code)
	}

	docs, err := cfg.Store.List(context.Background(), repository.CollectionName, 10)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	replay := postBooking(h, annBooking, headers)
	assert.Equal(t, http.StatusOK, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("Idempotent-Replayed"))
}

func TestApplication_RateLimitsByPhone(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 2
	_, h := newTestApplication(t, cfg)

	assert.Equal(t, http.StatusOK, postBooking(h, annBooking, nil).Code)
	assert.Equal(t, http.StatusOK, postBooking(h, annBooking, nil).Code)

	w := postBooking(h, annBooking, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	other := strings.Replace(annBooking, `"phone":"555"`, `"phone":"556"`, 1)
	assert.Equal(t, http.StatusOK, postBooking(h, other, nil).Code)
}

func TestApplication_OversizedBody(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRequestSize = 64
	_, h := newTestApplication(t, cfg)

	w := postBooking(h, annBooking, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestApplication_ShutdownHooks(t *testing.T) {
	a, _ := newTestApplication(t, testConfig())

	var order []string
	a.OnShutdown("first", func(ctx context.Context) error {
		order = append(order, "first")
		return errors.New("producer already closed")
	})
	a.OnShutdown("second", func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	a.gracefulShutdown()

	assert.Equal(t, []string{"first", "second"}, order)
}
