package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/YashDiwan-16/algorand-sub001/internal/document/models"
	"github.com/YashDiwan-16/algorand-sub001/internal/document/store"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/metrics"
	dErrors "github.com/YashDiwan-16/algorand-sub001/pkg/domain-errors"
)

// Service registers and resolves document references.
type Service struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService constructs a document service.
func NewService(st store.Store, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{store: st, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Create validates required fields and registers a new document reference.
func (s *Service) Create(ctx context.Context, owner, name, docType string, size int64, contentHash string) (*models.Document, error) {
	now := time.Now().UTC()
	doc := &models.Document{
		ID:          fmt.Sprintf("doc_%s", uuid.New().String()),
		Owner:       owner,
		Name:        name,
		Type:        docType,
		Size:        size,
		ContentHash: contentHash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if missing := doc.MissingFields(); len(missing) > 0 {
		return nil, dErrors.New(dErrors.CodeValidation,
			"missing required fields: "+strings.Join(missing, ", "))
	}

	if err := s.store.Create(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save document")
	}
	if s.metrics != nil {
		s.metrics.DocumentsRegistered.Inc()
	}
	s.logger.InfoContext(ctx, "document registered",
		"document_id", doc.ID,
		"owner", owner,
		"type", docType,
	)
	return doc, nil
}

// ListByOwner returns all documents for owner, newest first.
func (s *Service) ListByOwner(ctx context.Context, owner string) ([]*models.Document, error) {
	docs, err := s.store.FindByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

// Resolve returns the documents for the given ids; unknown ids are dropped.
func (s *Service) Resolve(ctx context.Context, ids []string) ([]*models.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	docs, err := s.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve documents")
	}
	return docs, nil
}
