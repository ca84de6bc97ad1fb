package store

import (
	"context"
	"sync"

	"github.com/YashDiwan-16/algorand-sub001/internal/consent/models"
	"github.com/YashDiwan-16/algorand-sub001/internal/sentinel"
)

// InMemoryStore stores consent requests in memory. It backs tests and
// development runs without a database.
type InMemoryStore struct {
	mu         sync.RWMutex
	byRequest  map[string]*models.Request
	internalID map[string]string
}

// NewMemory constructs an empty in-memory consent request store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		byRequest:  make(map[string]*models.Request),
		internalID: make(map[string]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byRequest[req.RequestID]; ok {
		return sentinel.ErrDuplicate
	}
	copyReq := cloneRequest(*req)
	s.byRequest[req.RequestID] = &copyReq
	s.internalID[req.ID] = req.RequestID
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, idOrRequestID string) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.lookup(idOrRequestID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyReq := cloneRequest(*req)
	return &copyReq, nil
}

// Update applies merge under the store lock so the read-merge-write cycle is
// a single compare-and-set per requestId.
func (s *InMemoryStore) Update(_ context.Context, idOrRequestID string, merge func(models.Request) (models.Request, error)) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.lookup(idOrRequestID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	merged, err := merge(cloneRequest(*current))
	if err != nil {
		return nil, err
	}
	copyReq := cloneRequest(merged)
	s.byRequest[current.RequestID] = &copyReq
	result := cloneRequest(merged)
	return &result, nil
}

func (s *InMemoryStore) FindByParticipant(_ context.Context, address string) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []*models.Request
	for _, req := range s.byRequest {
		if req.IsParticipant(address) {
			copyReq := cloneRequest(*req)
			matches = append(matches, &copyReq)
		}
	}
	return matches, nil
}

// lookup tries the external requestId first, then the internal id.
func (s *InMemoryStore) lookup(idOrRequestID string) (*models.Request, bool) {
	if req, ok := s.byRequest[idOrRequestID]; ok {
		return req, true
	}
	if requestID, ok := s.internalID[idOrRequestID]; ok {
		if req, ok := s.byRequest[requestID]; ok {
			return req, true
		}
	}
	return nil, false
}

// cloneRequest deep-copies slices so callers can't reach stored state.
func cloneRequest(r models.Request) models.Request {
	r.DocumentTypes = append([]string(nil), r.DocumentTypes...)
	r.Documents = append([]string(nil), r.Documents...)
	return r
}
