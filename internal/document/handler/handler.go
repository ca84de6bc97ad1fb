package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/YashDiwan-16/algorand-sub001/internal/document/models"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/metrics"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/middleware"
	respond "github.com/YashDiwan-16/algorand-sub001/internal/transport/http/json"
	"github.com/YashDiwan-16/algorand-sub001/internal/transport/http/shared"
	dErrors "github.com/YashDiwan-16/algorand-sub001/pkg/domain-errors"
)

// Service defines the document operations the handler exposes over HTTP.
type Service interface {
	Create(ctx context.Context, owner, name, docType string, size int64, contentHash string) (*models.Document, error)
	ListByOwner(ctx context.Context, owner string) ([]*models.Document, error)
}

// Handler exposes the document reference endpoints.
type Handler struct {
	logger    *slog.Logger
	documents Service
	metrics   *metrics.Metrics
}

// createRequest is the POST /documents payload.
type createRequest struct {
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	ContentHash string `json:"contentHash"`
}

// New creates a document Handler.
func New(documents Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		documents: documents,
		metrics:   m,
	}
}

// Register registers the document routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/documents", h.handleCreate)
	r.Get("/documents/{owner}", h.handleListByOwner)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("document_create", time.Now())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create document request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	doc, err := h.documents.Create(ctx, req.Owner, req.Name, req.Type, req.Size, req.ContentHash)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to register document",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleListByOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("document_list", time.Now())

	docs, err := h.documents.ListByOwner(ctx, chi.URLParam(r, "owner"))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to list documents",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, docs)
}

func (h *Handler) observe(endpoint string, start time.Time) {
	if h.metrics != nil {
		h.metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}
