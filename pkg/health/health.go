package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/OlegEV/moysklad-autoproduction/pkg/httputil"
)

// Checker reports whether a single dependency is usable.
type Checker func(ctx context.Context) error

// Status is the serialized health report for one check.
type Status struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health aggregates named readiness checks.
type Health struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	timeout  time.Duration
}

// New creates a Health registry with a per-check timeout.
func New(timeout time.Duration) *Health {
	return &Health{
		checkers: make(map[string]Checker),
		timeout:  timeout,
	}
}

// Register adds a named readiness check. A failing check makes the
// service not ready.
func (h *Health) Register(name string, c Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = c
}

// LivenessHandler reports that the process is up. It never fails.
func (h *Health) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadinessHandler runs every registered check and returns 503 if any fails.
func (h *Health) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.RLock()
		checkers := make(map[string]Checker, len(h.checkers))
		for name, c := range h.checkers {
			checkers[name] = c
		}
		h.mu.RUnlock()

		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		results := make(map[string]Status, len(checkers))
		healthy := true
		for name, c := range checkers {
			if err := c(ctx); err != nil {
				results[name] = Status{Status: "unhealthy", Error: err.Error()}
				healthy = false
				continue
			}
			results[name] = Status{Status: "ok"}
		}

		status := http.StatusOK
		overall := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}

		httputil.WriteJSON(w, status, map[string]any{
			"status": overall,
			"checks": results,
		})
	}
}
