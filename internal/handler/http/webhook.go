package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/OlegEV/moysklad-autoproduction/internal/config"
	"github.com/OlegEV/moysklad-autoproduction/internal/domain"
	"github.com/OlegEV/moysklad-autoproduction/pkg/httputil"
	"github.com/OlegEV/moysklad-autoproduction/pkg/logger"
	"github.com/OlegEV/moysklad-autoproduction/pkg/validator"
)

// DocumentProcessor runs the replenishment workflow for one document.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, documentID string) ([]domain.ProcessingResult, error)
	ResetCaches()
}

// Handler serves the webhook and operational endpoints.
type Handler struct {
	processor DocumentProcessor
	cfg       *config.Config
	logger    *slog.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(processor DocumentProcessor, cfg *config.Config, l *slog.Logger) *Handler {
	return &Handler{processor: processor, cfg: cfg, logger: l}
}

type webhookParams struct {
	ID   string `validate:"required"`
	Type string `validate:"required"`
}

// Webhook receives MoySklad webhook notifications. MoySklad calls
// POST /webhook?id={documentID}&type={entityType}. Events for entity
// types other than the configured trigger are acknowledged and ignored.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.FromContext(ctx)

	params := webhookParams{
		ID:   r.URL.Query().Get("id"),
		Type: r.URL.Query().Get("type"),
	}
	if err := validator.Validate(params); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	documentID := params.ID
	entityType := strings.ToLower(params.Type)

	l.InfoContext(ctx, "webhook received",
		slog.String("document_id", documentID),
		slog.String("entity_type", entityType),
	)

	if entityType != h.cfg.TriggerEntity {
		l.InfoContext(ctx, "ignoring event", slog.String("entity_type", entityType))
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "ignored",
			"message": fmt.Sprintf("not a %s event (type=%s)", h.cfg.TriggerEntity, entityType),
		})
		return
	}

	h.process(w, r, documentID)
}

// ProcessDocument triggers the workflow manually for one document.
func (h *Handler) ProcessDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "id")
	logger.FromContext(r.Context()).InfoContext(r.Context(), "manual processing requested",
		slog.String("document_id", documentID),
	)
	h.process(w, r, documentID)
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request, documentID string) {
	// Detached from request cancellation: once processing starts, a client
	// disconnect must not abort the remote side effects mid-workflow.
	ctx := context.WithoutCancel(r.Context())
	l := logger.FromContext(ctx)

	results, err := h.processor.ProcessDocument(ctx, documentID)
	if err != nil {
		l.ErrorContext(ctx, "document processing failed",
			slog.String("document_id", documentID),
			slog.String("error", err.Error()),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"status":      "error",
			"document_id": documentID,
			"message":     err.Error(),
		})
		return
	}

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
	}
	l.InfoContext(ctx, "document processed",
		slog.String("document_id", documentID),
		slog.Int("positions", len(results)),
		slog.Int("succeeded", succeeded),
	)

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":      "processed",
		"document_id": documentID,
		"results":     results,
	})
}

// Config echoes the active replenishment settings. The token is never
// included.
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"store_name":           h.cfg.StoreName,
		"tech_card_field_name": h.cfg.TechCardFieldName,
		"min_stock_threshold":  h.cfg.MinStockThreshold,
		"trigger_entity":       h.cfg.TriggerEntity,
	})
}

// ResetCaches drops the cached store and organization references.
func (h *Handler) ResetCaches(w http.ResponseWriter, r *http.Request) {
	h.processor.ResetCaches()
	logger.FromContext(r.Context()).InfoContext(r.Context(), "caches reset")
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
