package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YashDiwan-16/algorand-sub001/internal/consent/models"
	"github.com/YashDiwan-16/algorand-sub001/internal/consent/store"
	docmodels "github.com/YashDiwan-16/algorand-sub001/internal/document/models"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/logger"
	dErrors "github.com/YashDiwan-16/algorand-sub001/pkg/domain-errors"
)

// stubResolver serves a fixed document set and counts Resolve calls so
// cache behavior can be asserted.
type stubResolver struct {
	docs  map[string]*docmodels.Document
	calls int
}

func (r *stubResolver) Resolve(_ context.Context, ids []string) ([]*docmodels.Document, error) {
	r.calls++
	var out []*docmodels.Document
	for _, id := range ids {
		if doc, ok := r.docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, resolver *stubResolver) (*Service, store.Store) {
	t.Helper()
	if resolver == nil {
		resolver = &stubResolver{}
	}
	st := store.NewMemory()
	return NewService(st, resolver, logger.New()), st
}

func validRequest() models.Request {
	return models.Request{
		Sender:        "0xSENDER",
		Recipient:     "0xRECIPIENT",
		DocumentTypes: []string{"passport"},
		Reason:        "kyc onboarding",
	}
}

func TestCreateRequest(t *testing.T) {
	svc, _ := newTestService(t, nil)

	created, err := svc.CreateRequest(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Regexp(t, `^req_[0-9a-f-]{36}$`, created.RequestID)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Nil(t, created.GrantedAt)
	assert.Empty(t, created.Documents)
}

func TestCreateRequestValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)

	tests := []struct {
		name   string
		mutate func(*models.Request)
	}{
		{"missing sender", func(r *models.Request) { r.Sender = "" }},
		{"missing recipient", func(r *models.Request) { r.Recipient = "" }},
		{"missing document types", func(r *models.Request) { r.DocumentTypes = nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.CreateRequest(context.Background(), req)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestGetRequestNotFound(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.GetRequest(context.Background(), "req_missing")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestUpdateRequestGrantAndHydrate(t *testing.T) {
	resolver := &stubResolver{docs: map[string]*docmodels.Document{
		"doc_a": {ID: "doc_a", Name: "passport.pdf"},
		"doc_b": {ID: "doc_b", Name: "license.pdf"},
	}}
	svc, _ := newTestService(t, resolver)

	created, err := svc.CreateRequest(context.Background(), validRequest())
	require.NoError(t, err)

	granted := models.StatusGranted
	docs := []string{"doc_a", "doc_b", "doc_unknown"}
	updated, err := svc.UpdateRequest(context.Background(), created.RequestID, models.Patch{
		Status:    &granted,
		Documents: &docs,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusGranted, updated.Status)
	require.Len(t, updated.Documents, 2, "unknown document ids are dropped")
	assert.Equal(t, "doc_a", updated.Documents[0].ID)
	assert.Equal(t, "doc_b", updated.Documents[1].ID)
}

func TestUpdateRequestBackwardTransition(t *testing.T) {
	svc, _ := newTestService(t, nil)

	created, err := svc.CreateRequest(context.Background(), validRequest())
	require.NoError(t, err)

	granted := models.StatusGranted
	_, err = svc.UpdateRequest(context.Background(), created.RequestID, models.Patch{Status: &granted})
	require.NoError(t, err)

	pending := models.StatusPending
	_, err = svc.UpdateRequest(context.Background(), created.RequestID, models.Patch{Status: &pending})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	// The failed merge must leave the stored request untouched.
	got, err := svc.GetRequest(context.Background(), created.RequestID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusGranted, got.Status)
}

func TestHydrationCache(t *testing.T) {
	resolver := &stubResolver{docs: map[string]*docmodels.Document{
		"doc_a": {ID: "doc_a"},
	}}
	svc, _ := newTestService(t, resolver)

	created, err := svc.CreateRequest(context.Background(), validRequest())
	require.NoError(t, err)

	docs := []string{"doc_a"}
	_, err = svc.UpdateRequest(context.Background(), created.RequestID, models.Patch{Documents: &docs})
	require.NoError(t, err)
	require.Equal(t, 1, resolver.calls)

	// Second read serves the document from the cache.
	_, err = svc.GetRequest(context.Background(), created.RequestID)
	require.NoError(t, err)
	assert.Equal(t, 1, resolver.calls)
}

func TestListRequestsByParticipant(t *testing.T) {
	svc, _ := newTestService(t, nil)

	first, err := svc.CreateRequest(context.Background(), validRequest())
	require.NoError(t, err)

	other := validRequest()
	other.Sender = "0xOTHER"
	_, err = svc.CreateRequest(context.Background(), other)
	require.NoError(t, err)

	asSender, err := svc.ListRequestsByParticipant(context.Background(), "0xSENDER")
	require.NoError(t, err)
	require.Len(t, asSender, 1)
	assert.Equal(t, first.RequestID, asSender[0].RequestID)

	asRecipient, err := svc.ListRequestsByParticipant(context.Background(), "0xRECIPIENT")
	require.NoError(t, err)
	assert.Len(t, asRecipient, 2)

	_, err = svc.ListRequestsByParticipant(context.Background(), "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestListRequestDocuments(t *testing.T) {
	resolver := &stubResolver{docs: map[string]*docmodels.Document{
		"doc_a": {ID: "doc_a"},
	}}
	svc, _ := newTestService(t, resolver)

	created, err := svc.CreateRequest(context.Background(), validRequest())
	require.NoError(t, err)

	docs := []string{"doc_a"}
	_, err = svc.UpdateRequest(context.Background(), created.RequestID, models.Patch{Documents: &docs})
	require.NoError(t, err)

	summary, err := svc.ListRequestDocuments(context.Background(), created.RequestID)
	require.NoError(t, err)
	assert.Equal(t, created.RequestID, summary.RequestID)
	assert.Equal(t, models.StatusPending, summary.Status)
	assert.Equal(t, 1, summary.DocumentCount)
	require.Len(t, summary.Documents, 1)
}
