package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YashDiwan-16/algorand-sub001/internal/document/models"
	"github.com/YashDiwan-16/algorand-sub001/internal/sentinel"
)

func newDocument(id, owner string, createdAt time.Time) *models.Document {
	return &models.Document{
		ID:          id,
		Owner:       owner,
		Name:        id + ".pdf",
		Type:        "pdf",
		Size:        1000,
		ContentHash: "hash-" + id,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestMemoryStoreCreate(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newDocument("D1", "S1", time.Now())))
	err := s.Create(ctx, newDocument("D1", "S1", time.Now()))
	require.ErrorIs(t, err, sentinel.ErrDuplicate)
}

func TestMemoryStoreFindByOwnerNewestFirst(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, s.Create(ctx, newDocument("D1", "S1", base)))
	require.NoError(t, s.Create(ctx, newDocument("D2", "S1", base.Add(time.Minute))))
	require.NoError(t, s.Create(ctx, newDocument("D3", "other", base.Add(2*time.Minute))))

	docs, err := s.FindByOwner(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "D2", docs[0].ID)
	assert.Equal(t, "D1", docs[1].ID)

	none, err := s.FindByOwner(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreFindByIDsDropsUnknown(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Create(ctx, newDocument("D1", "S1", now)))
	require.NoError(t, s.Create(ctx, newDocument("D2", "S1", now)))

	docs, err := s.FindByIDs(ctx, []string{"D2", "ghost", "D1"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// input order preserved, unknown id silently dropped
	assert.Equal(t, "D2", docs[0].ID)
	assert.Equal(t, "D1", docs[1].ID)

	empty, err := s.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newDocument("D1", "S1", time.Now())))

	docs, err := s.FindByIDs(ctx, []string{"D1"})
	require.NoError(t, err)
	docs[0].Owner = "tampered"

	again, err := s.FindByIDs(ctx, []string{"D1"})
	require.NoError(t, err)
	assert.Equal(t, "S1", again[0].Owner)
}
