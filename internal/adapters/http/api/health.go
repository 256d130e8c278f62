package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wrpfuk/records/internal/adapters/dataset"
	"github.com/wrpfuk/records/pkg/metrics"
)

// StatusProvider reports the dataset snapshot state.
type StatusProvider interface {
	Status() dataset.Status
}

// HealthHandler handles health and readiness requests.
type HealthHandler struct {
	status StatusProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(status StatusProvider) *HealthHandler {
	return &HealthHandler{status: status}
}

// HandleHealth handles GET /healthz with the Prometheus exposition of the
// service registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

type readyResponse struct {
	Status  string         `json:"status"`
	Dataset dataset.Status `json:"dataset"`
}

// HandleReady handles GET /readyz. It answers 503 until a snapshot is loaded.
// A stale snapshot still serves, so it is reported as degraded with 200.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	st := h.status.Status()
	switch {
	case !st.Loaded:
		writeJSON(w, http.StatusServiceUnavailable, readyResponse{Status: "unavailable", Dataset: st})
	case st.Stale:
		writeJSON(w, http.StatusOK, readyResponse{Status: "degraded", Dataset: st})
	default:
		writeJSON(w, http.StatusOK, readyResponse{Status: "ok", Dataset: st})
	}
}
