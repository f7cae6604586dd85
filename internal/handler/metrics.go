package handler

import (
	"fmt"
	"net/http"

	"github.com/partnerhub/partnerhub/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "partnerhub_users_created_total %d\n", snap.UsersCreated)
	writeMetric(w, "partnerhub_projects_created_total %d\n", snap.ProjectsCreated)

	writeMetric(w, "partnerhub_signups_published_total{status=\"success\"} %d\n", snap.SignupPublishedSuccess)
	writeMetric(w, "partnerhub_signups_published_total{status=\"dropped\"} %d\n", snap.SignupPublishedDropped)

	writeMetric(w, "partnerhub_signups_processed_total{status=\"success\"} %d\n", snap.SignupProcessedSuccess)
	writeMetric(w, "partnerhub_signups_processed_total{status=\"failed\"} %d\n", snap.SignupProcessedFailed)
	writeMetric(w, "partnerhub_signups_processed_total{status=\"dead_lettered\"} %d\n", snap.SignupProcessedDeadLetters)

	writeMetric(w, "partnerhub_signup_queue_depth %d\n", snap.SignupQueueDepth)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
