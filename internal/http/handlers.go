package http

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.uptime).String(),
		"metrics": map[string]int64{
			"reports":       atomic.LoadInt64(&s.metrics.reportCount),
			"exports":       atomic.LoadInt64(&s.metrics.exportCount),
			"charts":        atomic.LoadInt64(&s.metrics.chartCount),
			"sheets_queued": atomic.LoadInt64(&s.metrics.sheetsQueued),
			"requests":      s.tracer.GetMetrics().TotalRequests,
			"suspicious":    s.detector.GetMetrics().SuspiciousRequests,
		},
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(ctx); err != nil {
			checks["ledger"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["ledger"] = "ok"
		}
	}

	if s.deps.Exports != nil && s.deps.Exports.Enabled() {
		checks["export_queue"] = "configured"
	} else {
		checks["export_queue"] = "disabled"
	}

	NewJSONResponse().
		Status(httpStatus).
		Body(map[string]any{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"checks":    checks,
		}).
		Write(w)
}
