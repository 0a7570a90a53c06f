// Package httpapi assembles the storefront's HTTP surface. Feature handlers
// own their routes; this package only decides which guard each group sits
// behind and adds the operational endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/httputil"
	"farmshop/pkg/platform/middleware/metadata"
	"farmshop/pkg/platform/middleware/request"
	"farmshop/pkg/platform/middleware/requesttime"
	"farmshop/pkg/requestcontext"
)

const healthCheckTimeout = 2 * time.Second

// RouteFunc mounts a handler's routes on r.
type RouteFunc func(r chi.Router)

// HealthCheck probes one backend.
type HealthCheck func(ctx context.Context) error

// Config lists everything the router mounts. Nil guards are not allowed when
// the matching route group is non-empty.
type Config struct {
	Logger *slog.Logger

	RequireAuth  func(http.Handler) http.Handler
	RequireAdmin func(http.Handler) http.Handler

	Public        []RouteFunc
	Authenticated []RouteFunc
	Admin         []RouteFunc

	HealthChecks map[string]HealthCheck
	// Metrics defaults to the Prometheus default registry.
	Metrics http.Handler
}

// NewRouter builds the root handler.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(chimw.Recoverer)
	r.Use(accessLog(logger))

	r.Get("/healthz", healthHandler(cfg.HealthChecks, logger))
	metricsHandler := cfg.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	for _, mount := range cfg.Public {
		mount(r)
	}

	if len(cfg.Authenticated) > 0 || len(cfg.Admin) > 0 {
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireAuth)
			for _, mount := range cfg.Authenticated {
				mount(r)
			}
			if len(cfg.Admin) == 0 {
				return
			}
			r.Group(func(r chi.Router) {
				r.Use(cfg.RequireAdmin)
				for _, mount := range cfg.Admin {
					mount(r)
				}
			})
		})
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})

	return otelhttp.NewHandler(r, "farmshop",
		otelhttp.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != "/healthz" && req.URL.Path != "/metrics"
		}),
	)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}

func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				return
			}
			ctx := r.Context()
			logger.InfoContext(ctx, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", requestcontext.RequestID(ctx),
			)
		})
	}
}
