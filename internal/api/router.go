package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ricirt/breed-query-worker/internal/api/handler"
	apimw "github.com/ricirt/breed-query-worker/internal/api/middleware"
	"github.com/ricirt/breed-query-worker/internal/domain"
	"github.com/ricirt/breed-query-worker/internal/queue"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
// onEnqueued is optional.
func NewRouter(
	svc handler.Submitter,
	depth queue.DepthReporter,
	db handler.Pinger,
	reg prometheus.Gatherer,
	onEnqueued func(domain.RequestType),
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)             // recover panics, return 500
	r.Use(chimw.RealIP)                // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(64 << 10)) // 64 KB max request body
	r.Use(apimw.CorrelationID)         // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	ih := handler.NewIntakeHandler(svc, logger, onEnqueued)
	mh := handler.NewMetricsHandler(depth)
	hh := handler.NewHealthHandler(db)

	// --- routes ---
	r.Get("/health", hh.Health)
	r.Get("/health/ready", hh.Ready)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/async/breeds", func(r chi.Router) {
			r.Post("/all", ih.ListAll)
			r.Post("/by-id", ih.ByID)
			r.Post("/by-temperament", ih.ByTemperament)
			r.Post("/by-origin", ih.ByOrigin)
		})

		// JSON metrics snapshot
		r.Get("/metrics", mh.GetMetrics)
	})

	return r
}
