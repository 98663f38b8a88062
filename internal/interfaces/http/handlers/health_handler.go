package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks one backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves liveness and readiness probes. Readiness checks
// every registered dependency with a short per-check timeout.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler builds a HealthHandler over named dependency checks.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Liveness reports whether the process is up.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness reports whether every backing dependency answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	type checkResult struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}

	results := make(map[string]checkResult, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := check.Ping(ctx)
		cancel()
		if err != nil {
			healthy = false
			results[name] = checkResult{Status: "unhealthy", Error: err.Error()}
			continue
		}
		results[name] = checkResult{Status: "ok"}
	}

	status, overall := http.StatusOK, "ok"
	if !healthy {
		status, overall = http.StatusServiceUnavailable, "degraded"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": overall,
		"checks": results,
	})
}
