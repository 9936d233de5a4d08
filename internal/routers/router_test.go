package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/haierkeys/fast-note-service/internal/app"
	"github.com/haierkeys/fast-note-service/internal/dao"
	"github.com/haierkeys/fast-note-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiRes struct {
	Code    int             `json:"code"`
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details string          `json:"details"`
}

type testServer struct {
	t       *testing.T
	engine  *gin.Engine
	private *gin.Engine
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	body := "database:\n  path: " + filepath.Join(dir, "db.sqlite3") + "\nsecurity:\n  auth-token-key: router-test\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0600))

	cfg, _, err := app.LoadConfig(cfgPath)
	require.NoError(t, err)

	db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), zap.NewNop())
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	uni, err := SetupValidator()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics, err := middleware.NewMetrics(reg)
	require.NoError(t, err)

	return &testServer{
		t:       t,
		engine:  NewRouter(a, uni, metrics),
		private: NewPrivateRouter("release", reg, zap.NewNop()),
	}
}

func (s *testServer) do(method, path string, body interface{}) (*httptest.ResponseRecorder, apiRes) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var res apiRes
	if w.Header().Get("Content-Type") != "" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	}
	return w, res
}

func (s *testServer) decode(res apiRes, v interface{}) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(res.Data, v))
}

func TestRouter_NoteFlow(t *testing.T) {
	s := newTestServer(t)

	// anonymous requests reach the service and fail authentication
	_, res := s.do(http.MethodGet, "/api/notes", nil)
	assert.Equal(t, 401, res.Code)
	assert.False(t, res.Status)

	_, res = s.do(http.MethodPost, "/api/user/register", map[string]string{
		"email": "flow@example.com", "password": "password123", "displayName": "Flow",
	})
	require.Equal(t, 1, res.Code, res.Details)
	var user struct {
		UID   string `json:"uid"`
		Token string `json:"token"`
	}
	s.decode(res, &user)
	require.NotEmpty(t, user.Token)

	_, res = s.do(http.MethodPost, "/api/user/login", map[string]string{
		"email": "flow@example.com", "password": "password123",
	})
	require.Equal(t, 1, res.Code)
	s.decode(res, &user)
	s.token = user.Token

	_, res = s.do(http.MethodPost, "/api/folder", map[string]string{"name": "Work"})
	require.Equal(t, 1, res.Code, res.Details)
	var folder struct {
		ID        string `json:"id"`
		IsDefault bool   `json:"isDefault"`
	}
	s.decode(res, &folder)

	_, res = s.do(http.MethodPost, "/api/folder", map[string]string{"name": "Work"})
	assert.Equal(t, 422, res.Code)

	_, res = s.do(http.MethodPost, "/api/note", map[string]interface{}{
		"content": "Quarterly planning. Budget and hiring.", "folderId": folder.ID,
	})
	require.Equal(t, 1, res.Code, res.Details)
	var note struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		ViewCount int64  `json:"viewCount"`
		WordCount int64  `json:"wordCount"`
	}
	s.decode(res, &note)
	assert.Equal(t, "Quarterly planning.", note.Title)
	assert.Equal(t, int64(5), note.WordCount)

	_, res = s.do(http.MethodGet, "/api/note?id="+note.ID, nil)
	require.Equal(t, 1, res.Code)
	s.decode(res, &note)
	assert.Equal(t, int64(1), note.ViewCount)

	_, res = s.do(http.MethodGet, "/api/note/search?q="+url.QueryEscape("budget"), nil)
	require.Equal(t, 1, res.Code, res.Details)
	var list struct {
		List  []json.RawMessage `json:"list"`
		Pager struct {
			TotalRows int `json:"totalRows"`
		} `json:"pager"`
	}
	s.decode(res, &list)
	assert.Len(t, list.List, 1)
	assert.Equal(t, 1, list.Pager.TotalRows)

	_, res = s.do(http.MethodGet, "/api/note/search?q=%20", nil)
	assert.Equal(t, 433, res.Code)

	_, res = s.do(http.MethodPut, "/api/note/pin", map[string]string{"id": note.ID})
	require.Equal(t, 1, res.Code)

	_, res = s.do(http.MethodDelete, "/api/folder?id="+folder.ID, nil)
	require.Equal(t, 1, res.Code)
	var deleted struct {
		DetachedNotes int64 `json:"detachedNotes"`
	}
	s.decode(res, &deleted)
	assert.Equal(t, int64(1), deleted.DetachedNotes)

	_, res = s.do(http.MethodDelete, "/api/note?id="+note.ID, nil)
	require.Equal(t, 1, res.Code)
	_, res = s.do(http.MethodGet, "/api/note?id="+note.ID, nil)
	assert.Equal(t, 430, res.Code)
}

func TestRouter_ValidationAndMisc(t *testing.T) {
	s := newTestServer(t)

	_, res := s.do(http.MethodPost, "/api/user/register", map[string]string{"email": "not-an-email"})
	assert.Equal(t, 400, res.Code)
	assert.NotEmpty(t, res.Details)

	_, res = s.do(http.MethodGet, "/api/health", nil)
	require.Equal(t, 1, res.Code)
	var health struct {
		Status        string `json:"status"`
		Database      string `json:"database"`
		Authenticated bool   `json:"authenticated"`
	}
	s.decode(res, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.Database)
	assert.False(t, health.Authenticated)

	_, res = s.do(http.MethodGet, "/api/version", nil)
	assert.Equal(t, 1, res.Code)

	w, res := s.do(http.MethodGet, "/api/nowhere", nil)
	assert.Equal(t, 404, res.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.DefaultTraceIDHeader))

	_, res = s.do(http.MethodGet, "/api/notes?lang=zh", nil)
	assert.Equal(t, 401, res.Code)
	assert.Equal(t, "身份验证失败", res.Message)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mw := httptest.NewRecorder()
	s.private.ServeHTTP(mw, req)
	assert.Equal(t, http.StatusOK, mw.Code)
	assert.Contains(t, mw.Body.String(), "fast_note_http_requests_total")
}
