package httpserver

import (
	"net/http"

	"github.com/yndnr/sipkv/internal/infra/buildinfo"
	"github.com/yndnr/sipkv/internal/telemetry/logger"
	"github.com/yndnr/sipkv/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Registry is served on /metrics. Nil disables the endpoint.
	Registry *metric.Registry

	// Ready reports whether the query listener is serving. Nil means always
	// ready.
	Ready func() bool

	Logger logger.Logger

	// GlobalRateLimit is the per-client request rate (requests/second).
	// Zero disables limiting.
	GlobalRateLimit int

	// EnableAudit logs every request.
	EnableAudit bool
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		GlobalRateLimit: 50,
		EnableAudit:     true,
	}
}

// NewRouter creates the admin router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := logger.OrDefault(cfg.Logger).With("component", "httpserver")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil && !cfg.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})
	if cfg.Registry != nil {
		mux.Handle("GET /metrics", cfg.Registry.Handler())
	}

	// Order: Recover -> RequestID -> RateLimit -> Audit -> mux
	var h http.Handler = mux
	if cfg.EnableAudit {
		h = Audit(log)(h)
	}
	if cfg.GlobalRateLimit > 0 {
		h = RateLimit(cfg.GlobalRateLimit)(h)
	}
	return Chain(h, Recover(log), RequestID())
}
