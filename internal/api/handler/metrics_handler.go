package handler

import (
	"net/http"

	"github.com/ricirt/breed-query-worker/internal/queue"
)

// MetricsHandler serves a human-readable JSON queue snapshot.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type MetricsHandler struct {
	q queue.DepthReporter
}

func NewMetricsHandler(q queue.DepthReporter) *MetricsHandler {
	return &MetricsHandler{q: q}
}

// GetMetrics handles GET /api/v1/metrics
//
// @Summary  Real-time queue depth snapshot
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Failure  503  {object}  map[string]string
// @Router   /api/v1/metrics [get]
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	d, err := h.q.Depth(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "queue depth unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"queue_depth": map[string]int{
			"visible":   d.Visible,
			"in_flight": d.InFlight,
			"total":     d.Visible + d.InFlight,
		},
	})
}
