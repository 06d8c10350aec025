package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/dispatcher"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/document/gist"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/document/gisttest"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/logger"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/syncer"
)

func newTestRouter(t *testing.T, tokenHash string) (http.Handler, *gisttest.Server) {
	t.Helper()
	remote := gisttest.NewServer()
	remote.Token = "test-token"
	t.Cleanup(remote.Close)

	log := logger.NewTestLogger()
	d := dispatcher.New(syncer.NewState(remote.BaseURL(), gist.DefaultDescription), gist.Factory{}, log)
	return NewRouter(d, tokenHash, log), remote
}

func post(t *testing.T, h http.Handler, body, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	t.Parallel()
	h, _ := newTestRouter(t, "")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestMessages(t *testing.T) {
	t.Parallel()
	h, remote := newTestRouter(t, "")
	remote.Put("abc123", map[string]string{"project-viewer-default.json": `{"projects":[]}`})

	w := post(t, h, `[{"token":"test-token","gistId":"abc123","action":"fetch"}]`, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dispatcher.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dispatcher.TypeSuccess, resp.Type)
	assert.JSONEq(t, `{"projects":[]}`, string(resp.DB))

	w = post(t, h, `[{"action":"update","value":{"projects":[1]}}]`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Successfully backed up the DB.")
}

func TestMessagesWithoutResponse(t *testing.T) {
	t.Parallel()
	h, remote := newTestRouter(t, "")

	for _, body := range []string{``, `[]`, `[{"token":"x"}]`, `[{"action":"noop"}]`} {
		w := post(t, h, body, "")
		assert.Equal(t, http.StatusNoContent, w.Code, body)
		assert.Empty(t, w.Body.String())
	}
	assert.Zero(t, remote.TotalCalls())
}

func TestMessagesMethodNotAllowed(t *testing.T) {
	t.Parallel()
	h, _ := newTestRouter(t, "")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("agent-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name       string
		auth       string
		wantStatus int
	}{
		{name: "missing header", auth: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", auth: "token agent-secret", wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", auth: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "valid secret", auth: "Bearer agent-secret", wantStatus: http.StatusOK},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h, remote := newTestRouter(t, string(hash))

			w := post(t, h, `[{"action":"fetch"}]`, tc.auth)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Zero(t, remote.TotalCalls())
		})
	}
}

func TestHealthIsPublic(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("agent-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	h, _ := newTestRouter(t, string(hash))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
