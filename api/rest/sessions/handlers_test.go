package sessions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apierrors "codeberg.org/forgeui/server/internal/errors"
	"codeberg.org/forgeui/server/internal/history"
	"codeberg.org/forgeui/server/internal/sessions"
	"codeberg.org/forgeui/server/internal/technology"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *sessions.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mgr := sessions.NewManager(time.Hour)
	t.Cleanup(mgr.Close)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), mgr)

	return router, mgr
}

func do(router http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func seed(mgr *sessions.Manager) (*sessions.Session, history.Entry) {
	session := mgr.CreateSession()
	entry := history.NewEntry("toggle", "<script>let on;</script>", technology.Svelte, "llama3.1:latest", time.Now())
	session.History.Add(entry)

	return session, entry
}

func TestCreateSession(t *testing.T) {
	router, mgr := newTestRouter(t)

	w := do(router, http.MethodPost, "/api/v1/sessions")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	_, ok := mgr.GetSession(resp.SessionID)
	assert.True(t, ok)
}

func TestHistory(t *testing.T) {
	router, mgr := newTestRouter(t)
	session, entry := seed(mgr)

	w := do(router, http.MethodGet, "/api/v1/sessions/"+session.ID+"/history")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, session.ID, resp.SessionID)
	assert.Equal(t, []history.Entry{entry}, resp.Entries)
	assert.Equal(t, 1, resp.Pagination.Total)
	assert.False(t, resp.Pagination.HasMore)
}

func TestHistoryWindow(t *testing.T) {
	router, mgr := newTestRouter(t)
	session, first := seed(mgr)

	second := history.NewEntry("tabs", "<p>tabs</p>", technology.HTML, "llama3.1:latest", time.Now())
	session.History.Add(second)

	w := do(router, http.MethodGet, "/api/v1/sessions/"+session.ID+"/history?limit=1&offset=1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []history.Entry{first}, resp.Entries)
	assert.Equal(t, 2, resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.Limit)
	assert.False(t, resp.Pagination.HasMore)
}

func TestEntryAndDownload(t *testing.T) {
	router, mgr := newTestRouter(t)
	session, entry := seed(mgr)

	base := "/api/v1/sessions/" + session.ID + "/history/" + entry.ID

	w := do(router, http.MethodGet, base)
	require.Equal(t, http.StatusOK, w.Code)

	var got history.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, entry, got)

	w = do(router, http.MethodGet, base+"/download")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="generated-component.svelte"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, entry.Code, w.Body.String())
}

func TestClearHistory(t *testing.T) {
	router, mgr := newTestRouter(t)
	session, _ := seed(mgr)

	w := do(router, http.MethodDelete, "/api/v1/sessions/"+session.ID+"/history")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, session.History.Len())
}

func TestLookupFailures(t *testing.T) {
	router, mgr := newTestRouter(t)
	session, _ := seed(mgr)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"malformed id", "/api/v1/sessions/abc/history", http.StatusBadRequest, apierrors.CodeBadRequest},
		{"unknown session", "/api/v1/sessions/" + sessions.GenerateSessionID() + "/history", http.StatusNotFound, apierrors.CodeSessionNotFound},
		{"unknown entry", "/api/v1/sessions/" + session.ID + "/history/missing", http.StatusNotFound, apierrors.CodeNotFound},
		{"unknown download", "/api/v1/sessions/" + session.ID + "/history/missing/download", http.StatusNotFound, apierrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodGet, tt.path)
			assert.Equal(t, tt.wantStatus, w.Code)

			var body apierrors.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error)
		})
	}
}
