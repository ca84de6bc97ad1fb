package store

import (
	"context"
	"sort"
	"sync"

	"github.com/YashDiwan-16/algorand-sub001/internal/document/models"
	"github.com/YashDiwan-16/algorand-sub001/internal/sentinel"
)

// InMemoryStore stores document references in memory.
type InMemoryStore struct {
	mu        sync.RWMutex
	documents map[string]*models.Document
}

// NewMemory constructs an empty in-memory document store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{documents: make(map[string]*models.Document)}
}

func (s *InMemoryStore) Create(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; ok {
		return sentinel.ErrDuplicate
	}
	copyDoc := *doc
	s.documents[doc.ID] = &copyDoc
	return nil
}

func (s *InMemoryStore) FindByOwner(_ context.Context, owner string) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []*models.Document
	for _, doc := range s.documents {
		if doc.Owner == owner {
			copyDoc := *doc
			matches = append(matches, &copyDoc)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// FindByIDs returns existing matches in input order; unknown ids are dropped.
func (s *InMemoryStore) FindByIDs(_ context.Context, ids []string) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []*models.Document
	for _, id := range ids {
		if doc, ok := s.documents[id]; ok {
			copyDoc := *doc
			matches = append(matches, &copyDoc)
		}
	}
	return matches, nil
}
