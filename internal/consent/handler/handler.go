package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/YashDiwan-16/algorand-sub001/internal/consent/models"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/metrics"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/middleware"
	respond "github.com/YashDiwan-16/algorand-sub001/internal/transport/http/json"
	"github.com/YashDiwan-16/algorand-sub001/internal/transport/http/shared"
	dErrors "github.com/YashDiwan-16/algorand-sub001/pkg/domain-errors"
)

// Service defines the consent operations the handler exposes over HTTP.
type Service interface {
	CreateRequest(ctx context.Context, req models.Request) (*models.HydratedRequest, error)
	GetRequest(ctx context.Context, id string) (*models.HydratedRequest, error)
	ListRequestsByParticipant(ctx context.Context, address string) ([]*models.HydratedRequest, error)
	UpdateRequest(ctx context.Context, id string, patch models.Patch) (*models.HydratedRequest, error)
	ListRequestDocuments(ctx context.Context, id string) (*models.RequestDocuments, error)
}

// Handler exposes the consent request lifecycle endpoints.
type Handler struct {
	logger  *slog.Logger
	consent Service
	metrics *metrics.Metrics
}

// New creates a consent Handler.
func New(consent Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		consent: consent,
		metrics: m,
	}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/consent", h.handleCreate)
	r.Get("/consent/user/{address}", h.handleListByParticipant)
	r.Get("/consent/{id}", h.handleGet)
	r.Put("/consent/{id}", h.handleUpdate)
	r.Get("/consent/{id}/documents", h.handleListDocuments)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("consent_create", time.Now())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create consent request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	created, err := h.consent.CreateRequest(ctx, req.toModel())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create consent request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("consent_get", time.Now())

	found, err := h.consent.GetRequest(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to fetch consent request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) handleListByParticipant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("consent_list", time.Now())

	requests, err := h.consent.ListRequestsByParticipant(ctx, chi.URLParam(r, "address"))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to list consent requests",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, requests)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("consent_update", time.Now())

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode update consent request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	updated, err := h.consent.UpdateRequest(ctx, chi.URLParam(r, "id"), patch)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update consent request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("consent_documents", time.Now())

	summary, err := h.consent.ListRequestDocuments(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to list consent request documents",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) observe(endpoint string, start time.Time) {
	if h.metrics != nil {
		h.metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}
