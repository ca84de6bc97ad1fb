package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YashDiwan-16/algorand-sub001/internal/document/handler"
	"github.com/YashDiwan-16/algorand-sub001/internal/document/service"
	"github.com/YashDiwan-16/algorand-sub001/internal/document/store"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.New()
	documents := service.NewService(store.NewMemory(), log)

	r := chi.NewRouter()
	handler.New(documents, log, nil).Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func TestCreateDocument(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/documents", map[string]any{
		"owner":       "0xOWNER",
		"name":        "passport.pdf",
		"type":        "passport",
		"size":        2048,
		"contentHash": "abc123",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Regexp(t, `^doc_`, body["id"])
	assert.Equal(t, "passport.pdf", body["name"])
	assert.NotEmpty(t, body["createdAt"])
}

func TestCreateDocumentValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/documents", map[string]any{
		"owner": "0xOWNER",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "validation_failed", body["error"])
	assert.Contains(t, body["error_description"], "name")
}

func TestListDocumentsByOwner(t *testing.T) {
	srv := newTestServer(t)

	for _, name := range []string{"passport.pdf", "license.pdf"} {
		resp := postJSON(t, srv.URL+"/documents", map[string]any{
			"owner":       "0xOWNER",
			"name":        name,
			"type":        "identity",
			"contentHash": "abc123",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/documents/0xOWNER")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var docs []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&docs))
	assert.Len(t, docs, 2)

	resp, err = http.Get(srv.URL + "/documents/0xNOBODY")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
