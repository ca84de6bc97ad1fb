package store

import (
	"context"

	"github.com/YashDiwan-16/algorand-sub001/internal/consent/models"
)

// Store persists consent requests.
//
// Error Contract:
// - Create returns sentinel.ErrDuplicate when the requestId already exists
// - Find and Update return sentinel.ErrNotFound when nothing resolves
// - Other failures are wrapped infrastructure errors
//
// Update runs the merge function under the store's per-key atomicity: the
// stored record is read, merged, and written back as a single compare-and-set
// keyed by requestId. Concurrent updates to the same id never produce a torn
// write; last-committed-wins on overlapping fields.
type Store interface {
	Create(ctx context.Context, req *models.Request) error
	Find(ctx context.Context, idOrRequestID string) (*models.Request, error)
	Update(ctx context.Context, idOrRequestID string, merge func(models.Request) (models.Request, error)) (*models.Request, error)
	FindByParticipant(ctx context.Context, address string) ([]*models.Request, error)
}
