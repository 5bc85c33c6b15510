package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OlegEV/moysklad-autoproduction/pkg/health"
	"github.com/OlegEV/moysklad-autoproduction/pkg/middleware"
)

const serviceName = "autoproduction"

// NewRouter wires the handler into a chi router with the standard
// middleware chain.
func NewRouter(h *Handler, hc *health.Health, l *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(l))
	r.Use(middleware.RequestLogging(l))
	r.Use(middleware.PrometheusMetrics(serviceName))

	r.Get("/health/live", hc.LivenessHandler())
	r.Get("/health/ready", hc.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhook", h.Webhook)
	r.Post("/documents/{id}/process", h.ProcessDocument)
	r.Get("/config", h.Config)
	r.Post("/cache/reset", h.ResetCaches)

	return r
}
