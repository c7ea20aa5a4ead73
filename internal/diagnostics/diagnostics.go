// Package diagnostics serves the service banner, the /test connectivity report
// and the liveness/readiness probes.
package diagnostics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	httputil "surfaura/pkg/http"
	"surfaura/pkg/logger"
	"surfaura/pkg/store"

	"github.com/julienschmidt/httprouter"
)

const (
	WelcomeMessage = "SurfAura Beach Club API Running"

	maxCollections = 10
	maxErrorDetail = 50
	checkTimeout   = 5 * time.Second
)

const (
	backendRunning = "✅ Running"

	databaseNotAvailable   = "❌ Not Available"
	databaseNotInitialized = "⚠️  Available but not initialized"
	databaseAvailable      = "✅ Available"
	databaseWorking        = "✅ Connected & Working"
	databaseWarnPrefix     = "⚠️  Connected but Error: "
	databaseErrorPrefix    = "❌ Error: "

	connectionNotConnected = "Not Connected"
	connectionConnected    = "Connected"

	envSet    = "✅ Set"
	envNotSet = "❌ Not Set"
	envConfig = "✅ Configured"
)

// Report is the /test response body. Nullable fields stay nil until a check fills them.
type Report struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      *string  `json:"database_url"`
	DatabaseName     *string  `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

type LookupEnvFunc func(key string) (string, bool)

type Handler struct {
	inspector store.Inspector
	lookupEnv LookupEnvFunc
	log       *logger.Logger
}

// NewHandler accepts a nil inspector; the report then shows the database as unavailable.
func NewHandler(inspector store.Inspector, lookupEnv LookupEnvFunc, log *logger.Logger) *Handler {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	return &Handler{
		inspector: inspector,
		lookupEnv: lookupEnv,
		log:       log,
	}
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, httputil.MessageResponse{Message: WelcomeMessage}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Root", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) Test(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report := h.Check(r.Context())
	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Test", "operation", "WriteSuccess", "error", err)
	}
}

// Check never fails. Each step recovers its own panic and records it in the report.
func (h *Handler) Check(ctx context.Context) *Report {
	report := &Report{
		Backend:          backendRunning,
		Database:         databaseNotAvailable,
		ConnectionStatus: connectionNotConnected,
		Collections:      []string{},
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if h.isolate(report, "store", func() { h.checkStore(report) }) {
		h.isolate(report, "collections", func() { h.checkCollections(ctx, report) })
	}
	h.isolate(nil, "environment", func() { h.checkEnvironment(report) })

	return report
}

func (h *Handler) checkStore(report *Report) {
	if h.inspector == nil {
		return
	}
	if !h.inspector.Available() {
		// Configured with a URL but the connection was never established.
		if url, ok := h.lookupEnv("DATABASE_URL"); ok && url != "" {
			report.Database = databaseNotInitialized
		}
		return
	}
	report.Database = databaseAvailable
	report.DatabaseURL = ptr(envConfig)
	report.DatabaseName = ptr(h.inspector.Name())
	report.ConnectionStatus = connectionConnected
}

func (h *Handler) checkCollections(ctx context.Context, report *Report) {
	if report.ConnectionStatus != connectionConnected {
		return
	}

	names, err := h.inspector.CollectionNames(ctx)
	if err != nil {
		h.log.Warn("Diagnostic collection listing failed", "error", err)
		report.Database = databaseWarnPrefix + truncate(err.Error(), maxErrorDetail)
		return
	}

	if len(names) > maxCollections {
		names = names[:maxCollections]
	}
	report.Collections = names
	report.Database = databaseWorking
}

func (h *Handler) checkEnvironment(report *Report) {
	report.DatabaseURL = ptr(h.envStatus("DATABASE_URL"))
	report.DatabaseName = ptr(h.envStatus("DATABASE_NAME"))
}

func (h *Handler) envStatus(key string) string {
	if v, ok := h.lookupEnv(key); ok && v != "" {
		return envSet
	}
	return envNotSet
}

// isolate runs check and reports whether it completed. A panic is logged and,
// when report is not nil, surfaced in its database field.
func (h *Handler) isolate(report *Report, name string, check func()) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error("Diagnostic check panicked", "check", name, "panic", rec)
			if report != nil {
				report.Database = databaseErrorPrefix + truncate(fmt.Sprint(rec), maxErrorDetail)
			}
			ok = false
		}
	}()
	check()
	return true
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func ptr(s string) *string {
	return &s
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/", h.Root)
	router.GET("/test", h.Test)
}
