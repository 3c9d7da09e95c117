package shop

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"JSONShop/internal/cart"
	"JSONShop/internal/catalog"
	"JSONShop/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	Products catalog.Store
	Carts    cart.Store

	// WritesPerMinute limits mutating requests per client IP; 0 disables it.
	WritesPerMinute int
}

const (
	readyTimeout = 1 * time.Second
	limitWindow  = 60 * time.Second
)

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	var writes func(http.Handler) http.Handler
	if deps.WritesPerMinute > 0 {
		writes = kit.NewIPRateLimiter(deps.WritesPerMinute, limitWindow).Middleware
	}

	products := &catalog.Server{Store: deps.Products, Log: httpDeps.Log, Writes: writes}
	carts := &cart.Server{Store: deps.Carts, Log: httpDeps.Log, Writes: writes}

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Mount("/products", products.Routes())
	r.Mount("/carts", carts.Routes())

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Products.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readyz failed: products", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "products not ready", nil)
			return
		}

		if err := deps.Carts.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readyz failed: carts", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "carts not ready", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
