package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YashDiwan-16/algorand-sub001/internal/consent/handler"
	"github.com/YashDiwan-16/algorand-sub001/internal/consent/service"
	"github.com/YashDiwan-16/algorand-sub001/internal/consent/store"
	docservice "github.com/YashDiwan-16/algorand-sub001/internal/document/service"
	docstore "github.com/YashDiwan-16/algorand-sub001/internal/document/store"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/logger"
)

// newTestServer wires the consent handler over in-memory stores, exactly
// as cmd/server does when no database is configured.
func newTestServer(t *testing.T) (*httptest.Server, *docservice.Service) {
	t.Helper()

	log := logger.New()
	documents := docservice.NewService(docstore.NewMemory(), log)
	consent := service.NewService(store.NewMemory(), documents, log)

	r := chi.NewRouter()
	handler.New(consent, log, nil).Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, documents
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func putJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func createConsent(t *testing.T, srv *httptest.Server) map[string]any {
	t.Helper()
	resp := postJSON(t, srv.URL+"/consent", map[string]any{
		"sender":        "0xSENDER",
		"recipient":     "0xRECIPIENT",
		"documentTypes": []string{"passport"},
		"reason":        "kyc onboarding",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body map[string]any
	decodeBody(t, resp, &body)
	return body
}

func TestCreateConsent(t *testing.T) {
	srv, _ := newTestServer(t)

	body := createConsent(t, srv)
	assert.Regexp(t, `^req_`, body["requestId"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, []any{}, body["documents"])
}

func TestCreateConsentValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/consent", map[string]any{
		"recipient": "0xRECIPIENT",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "validation_failed", body["error"])
	assert.Contains(t, body["error_description"], "sender")
}

func TestCreateConsentMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/consent", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetConsentNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/consent/req_missing")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "not_found", body["error"])
}

func TestGrantAndHydrate(t *testing.T) {
	srv, documents := newTestServer(t)
	created := createConsent(t, srv)
	requestID := created["requestId"].(string)

	doc, err := documents.Create(t.Context(), "0xSENDER", "passport.pdf", "passport", 2048, "abc123")
	require.NoError(t, err)

	resp := putJSON(t, fmt.Sprintf("%s/consent/%s", srv.URL, requestID), map[string]any{
		"status":    "granted",
		"documents": []string{doc.ID, "doc_unknown"},
		"permissions": map[string]bool{
			"view":     true,
			"download": true,
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, "granted", body["status"])
	assert.NotEmpty(t, body["grantedAt"])

	docs := body["documents"].([]any)
	require.Len(t, docs, 1, "unknown document ids are dropped")
	assert.Equal(t, doc.ID, docs[0].(map[string]any)["id"])
}

func TestUpdateCallerSuppliedTimestamps(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createConsent(t, srv)
	requestID := created["requestId"].(string)

	grantedAt := "2020-01-02T03:04:05Z"
	resp := putJSON(t, fmt.Sprintf("%s/consent/%s", srv.URL, requestID), map[string]any{
		"status":    "granted",
		"grantedAt": grantedAt,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, grantedAt, body["grantedAt"], "caller-supplied grantedAt is honored")

	revokedAt := "2021-06-07T08:09:10Z"
	resp = putJSON(t, fmt.Sprintf("%s/consent/%s", srv.URL, requestID), map[string]any{
		"status":    "revoked",
		"revokedAt": revokedAt,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	decodeBody(t, resp, &body)
	assert.Equal(t, revokedAt, body["revokedAt"])
	assert.Equal(t, grantedAt, body["grantedAt"], "earlier timestamp is untouched")
}

func TestUpdateInvalidTransition(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createConsent(t, srv)
	requestID := created["requestId"].(string)

	resp := putJSON(t, fmt.Sprintf("%s/consent/%s", srv.URL, requestID), map[string]any{"status": "granted"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = putJSON(t, fmt.Sprintf("%s/consent/%s", srv.URL, requestID), map[string]any{"status": "pending"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "invalid_transition", body["error"])
}

func TestUpdateUnknownStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createConsent(t, srv)

	resp := putJSON(t, fmt.Sprintf("%s/consent/%s", srv.URL, created["requestId"]), map[string]any{"status": "approved"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestListByParticipant(t *testing.T) {
	srv, _ := newTestServer(t)
	createConsent(t, srv)
	createConsent(t, srv)

	resp, err := http.Get(srv.URL + "/consent/user/0xSENDER")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []map[string]any
	decodeBody(t, resp, &body)
	assert.Len(t, body, 2)

	resp, err = http.Get(srv.URL + "/consent/user/0xNOBODY")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var empty []map[string]any
	decodeBody(t, resp, &empty)
	assert.Empty(t, empty)
}

func TestListRequestDocuments(t *testing.T) {
	srv, documents := newTestServer(t)
	created := createConsent(t, srv)
	requestID := created["requestId"].(string)

	doc, err := documents.Create(t.Context(), "0xSENDER", "passport.pdf", "passport", 2048, "abc123")
	require.NoError(t, err)

	resp := putJSON(t, fmt.Sprintf("%s/consent/%s", srv.URL, requestID), map[string]any{
		"documents": []string{doc.ID},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(fmt.Sprintf("%s/consent/%s/documents", srv.URL, requestID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, requestID, body["requestId"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, float64(1), body["documentCount"])
}
