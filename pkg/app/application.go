package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"surfaura/internal/bookings/handler"
	"surfaura/internal/diagnostics"
	"surfaura/pkg/config"
	"surfaura/pkg/contracts"
	"surfaura/pkg/metrics"
	"surfaura/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

const (
	unmatchedRoute = "unmatched"
	preflightRoute = "preflight"
)

type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

type Application struct {
	cfg              *config.Config
	metrics          *metrics.Metrics
	server           *http.Server
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.PhoneRateLimiter
	healthHandler    http.Handler
	appHttpHandler   http.Handler
	hooks            []shutdownHook
}

func NewApplication(cfg *config.Config, m *metrics.Metrics) *Application {
	return &Application{cfg: cfg, metrics: m}
}

// OnShutdown registers fn to run after the HTTP server stops, in registration order.
func (a *Application) OnShutdown(name string, fn func(ctx context.Context) error) {
	a.hooks = append(a.hooks, shutdownHook{name: name, fn: fn})
}

func (a *Application) SetApp(appHandlers ...contracts.Handler) {
	a.setHealthHandler()
	a.setAppHandler(appHandlers)
	a.setAppServer()
}

// Handler is the root handler served by the HTTP server. SetApp must run first.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	diagnostics.NewHealthHandler(a.cfg.Store, a.cfg.Log).RegisterRoutes(healthRouter)
	a.metrics.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log, a.metrics)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(appHandlers []contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range appHandlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = a.newIdempotencyStore()
	a.rateLimiter = middleware.NewPhoneRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.BookingPhoneExtractor(http.MethodPost, handler.BookingsPath),
		a.cfg.Log,
	)

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = middleware.Idempotency(a.idempotencyStore, middleware.DefaultIdempotencyHeader, a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHttpHandler)
	appHttpHandler = middleware.PhoneRateLimit(a.rateLimiter, a.metrics)(appHttpHandler)
	appHttpHandler = middleware.ContentTypeValidation(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(appHttpHandler)
	appHttpHandler = middleware.CORS(a.cfg.CORSMaxAge)(appHttpHandler)
	appHttpHandler = middleware.Metrics(a.metrics, routeLabeler(appRouter))(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.Recovery(a.cfg.Log, a.metrics)(appHttpHandler)
	a.appHttpHandler = appHttpHandler
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
}

// newIdempotencyStore prefers Redis when configured and reachable, so replicas
// share replays. Otherwise responses are cached in process.
func (a *Application) newIdempotencyStore() middleware.IdempotencyStore {
	if a.cfg.IdempotencyRedisAddr == "" {
		return middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	}

	redisStore := middleware.NewRedisIdempotencyStore(a.cfg.IdempotencyRedisAddr, a.cfg.IdempotencyTTL)
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.MongoConnTimeout)
	defer cancel()

	if err := redisStore.Ping(ctx); err != nil {
		a.cfg.Log.Warn("Redis idempotency store unreachable; falling back to in-memory store", "error", err)
		if stopErr := redisStore.Stop(); stopErr != nil {
			a.cfg.Log.Warn("Failed to close Redis client", "error", stopErr)
		}
		return middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	}

	a.cfg.Log.Info("Using Redis idempotency store")
	return redisStore
}

// routeLabeler keeps metric cardinality bounded: only registered paths are
// used as labels.
func routeLabeler(router *httprouter.Router) middleware.RouteLabeler {
	return func(r *http.Request) string {
		if r.Method == http.MethodOptions {
			return preflightRoute
		}
		if h, _, _ := router.Lookup(r.Method, r.URL.Path); h != nil {
			return r.URL.Path
		}
		return unmatchedRoute
	}
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/metrics", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.gracefulShutdown()
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}
	a.cfg.Log.Info("Server stopped")

	a.cfg.Log.Info("Stopping background workers...")
	a.stopWorkers()
	a.cfg.Log.Info("Background workers stopped")

	for _, hook := range a.hooks {
		if err := hook.fn(ctx); err != nil {
			a.cfg.Log.Error("Shutdown hook failed", "hook", hook.name, "error", err)
		}
	}

	a.cfg.GracefulShutdown(ctx)
	a.cfg.Log.Info("Shutdown complete")
}

func (a *Application) stopWorkers() {
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if a.idempotencyStore != nil {
		if err := a.idempotencyStore.Stop(); err != nil {
			a.cfg.Log.Error("Failed to stop idempotency store", "error", err)
		}
	}
}
