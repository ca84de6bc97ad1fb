package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/YashDiwan-16/algorand-sub001/internal/consent/models"
	"github.com/YashDiwan-16/algorand-sub001/internal/consent/store"
	docmodels "github.com/YashDiwan-16/algorand-sub001/internal/document/models"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/metrics"
	"github.com/YashDiwan-16/algorand-sub001/internal/sentinel"
	dErrors "github.com/YashDiwan-16/algorand-sub001/pkg/domain-errors"
)

const (
	// hydrationCacheSize bounds the document cache shared across requests.
	hydrationCacheSize = 1024

	// hydrationConcurrency caps parallel hydration during list operations.
	hydrationConcurrency = 4
)

// DocumentResolver resolves document ids to full records. Unknown ids are
// dropped, never errored.
type DocumentResolver interface {
	Resolve(ctx context.Context, ids []string) ([]*docmodels.Document, error)
}

// Service owns the consent request lifecycle. It persists through the
// request store and hydrates document references through the resolver;
// it never talks to the ledger.
type Service struct {
	store     store.Store
	documents DocumentResolver
	cache     *lru.Cache[string, *docmodels.Document]
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithMetrics attaches prometheus instrumentation to the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService builds a consent service over the given store and resolver.
func NewService(st store.Store, documents DocumentResolver, logger *slog.Logger, opts ...Option) *Service {
	cache, _ := lru.New[string, *docmodels.Document](hydrationCacheSize)
	s := &Service{
		store:     st,
		documents: documents,
		cache:     cache,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest records a new consent request in the pending state and
// returns it hydrated (trivially, with no documents attached yet).
func (s *Service) CreateRequest(ctx context.Context, req models.Request) (*models.HydratedRequest, error) {
	if missing := missingRequestFields(req); len(missing) > 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required fields: "+strings.Join(missing, ", "))
	}

	now := time.Now().UTC()
	req.ID = uuid.NewString()
	req.RequestID = "req_" + uuid.NewString()
	req.Status = models.StatusPending
	req.CreatedAt = now
	req.GrantedAt = nil
	req.RevokedAt = nil
	req.Documents = nil

	if err := s.store.Create(ctx, &req); err != nil {
		return nil, s.translate(err, "create consent request")
	}

	if s.metrics != nil {
		s.metrics.RequestsCreated.Inc()
	}
	s.logger.Info("consent request created",
		slog.String("request_id", req.RequestID),
		slog.String("sender", req.Sender),
		slog.String("recipient", req.Recipient))

	return &models.HydratedRequest{Request: req, Documents: []*docmodels.Document{}}, nil
}

// GetRequest returns a single request, hydrated, by requestId or internal id.
func (s *Service) GetRequest(ctx context.Context, id string) (*models.HydratedRequest, error) {
	req, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, s.translate(err, "find consent request")
	}
	return s.hydrate(ctx, req)
}

// ListRequestsByParticipant returns every request where the address is
// sender or recipient, each hydrated.
func (s *Service) ListRequestsByParticipant(ctx context.Context, address string) ([]*models.HydratedRequest, error) {
	if address == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required fields: address")
	}

	reqs, err := s.store.FindByParticipant(ctx, address)
	if err != nil {
		return nil, s.translate(err, "list consent requests")
	}

	hydrated := make([]*models.HydratedRequest, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrationConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			h, err := s.hydrate(gctx, req)
			if err != nil {
				return err
			}
			hydrated[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hydrated, nil
}

// UpdateRequest merges the patch into the stored request, enforcing the
// lifecycle rules, and returns the updated request hydrated.
func (s *Service) UpdateRequest(ctx context.Context, id string, patch models.Patch) (*models.HydratedRequest, error) {
	updated, err := s.store.Update(ctx, id, func(current models.Request) (models.Request, error) {
		p := patch
		// Stamp transition timestamps unless the caller supplied them.
		// Re-asserting the current status keeps the original timestamp.
		if p.Status != nil && *p.Status != current.Status {
			now := time.Now().UTC()
			if *p.Status == models.StatusGranted && p.GrantedAt == nil {
				p.GrantedAt = &now
			}
			if *p.Status == models.StatusRevoked && p.RevokedAt == nil {
				p.RevokedAt = &now
			}
		}
		return current.Apply(p)
	})
	if err != nil {
		return nil, s.translate(err, "update consent request")
	}

	if s.metrics != nil && patch.Status != nil {
		switch *patch.Status {
		case models.StatusGranted:
			s.metrics.RequestsGranted.Inc()
		case models.StatusRevoked:
			s.metrics.RequestsRevoked.Inc()
		}
	}
	s.logger.Info("consent request updated",
		slog.String("request_id", updated.RequestID),
		slog.String("status", string(updated.Status)))

	return s.hydrate(ctx, updated)
}

// ListRequestDocuments returns the documents attached to a request along
// with the request status and a count.
func (s *Service) ListRequestDocuments(ctx context.Context, id string) (*models.RequestDocuments, error) {
	h, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.RequestDocuments{
		RequestID:     h.RequestID,
		Status:        h.Status,
		DocumentCount: len(h.Documents),
		Documents:     h.Documents,
	}, nil
}

// hydrate resolves the request's document ids, serving from the LRU cache
// where possible. Ids that resolve to nothing are dropped silently.
func (s *Service) hydrate(ctx context.Context, req *models.Request) (*models.HydratedRequest, error) {
	docs := make([]*docmodels.Document, 0, len(req.Documents))
	resolved := make(map[string]*docmodels.Document, len(req.Documents))

	var misses []string
	for _, id := range req.Documents {
		if doc, ok := s.cache.Get(id); ok {
			resolved[id] = doc
			if s.metrics != nil {
				s.metrics.HydrationCacheHits.Inc()
			}
			continue
		}
		misses = append(misses, id)
		if s.metrics != nil {
			s.metrics.HydrationCacheMisses.Inc()
		}
	}

	if len(misses) > 0 {
		fetched, err := s.documents.Resolve(ctx, misses)
		if err != nil {
			return nil, s.translate(err, "hydrate documents")
		}
		for _, doc := range fetched {
			resolved[doc.ID] = doc
			s.cache.Add(doc.ID, doc)
		}
	}

	for _, id := range req.Documents {
		if doc, ok := resolved[id]; ok {
			docs = append(docs, doc)
		}
	}

	return &models.HydratedRequest{Request: *req, Documents: docs}, nil
}

func missingRequestFields(req models.Request) []string {
	var missing []string
	if req.Sender == "" {
		missing = append(missing, "sender")
	}
	if req.Recipient == "" {
		missing = append(missing, "recipient")
	}
	if len(req.DocumentTypes) == 0 {
		missing = append(missing, "documentTypes")
	}
	return missing
}

// translate lifts store sentinel errors into domain errors. Errors that
// already carry a domain code pass through untouched.
func (s *Service) translate(err error, op string) error {
	var dErr *dErrors.Error
	if errors.As(err, &dErr) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "consent request not found")
	case errors.Is(err, sentinel.ErrDuplicate):
		return dErrors.Wrap(err, dErrors.CodeConflict, "consent request already exists")
	default:
		s.logger.Error(op+" failed", slog.String("error", err.Error()))
		return dErrors.Wrap(err, dErrors.CodeInternal, "consent request storage failure")
	}
}
