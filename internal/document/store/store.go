package store

import (
	"context"

	"github.com/YashDiwan-16/algorand-sub001/internal/document/models"
)

// Store persists document references.
//
// Error Contract:
// - Create returns sentinel.ErrDuplicate when the document id already exists
// - FindByIDs silently drops unknown ids; it never errors on them
// - FindByOwner returns documents newest first
type Store interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByOwner(ctx context.Context, owner string) ([]*models.Document, error)
	FindByIDs(ctx context.Context, ids []string) ([]*models.Document, error)
}
