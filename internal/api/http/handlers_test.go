package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarinaBrowser/marina/shell/internal/domain/gesture"
	"github.com/MarinaBrowser/marina/shell/internal/domain/nav"
	"github.com/MarinaBrowser/marina/shell/internal/domain/org"
	"github.com/MarinaBrowser/marina/shell/internal/domain/session"
	"github.com/MarinaBrowser/marina/shell/internal/domain/shell"
	"github.com/MarinaBrowser/marina/shell/internal/domain/surface"
	"github.com/MarinaBrowser/marina/shell/internal/shared/errs"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

type nullFactory struct{}

func (nullFactory) Create(context.Context, string) (surface.Surface, error) {
	return nil, errs.New(errs.InvalidState, "no surfaces in this test")
}

type fakePersister struct {
	mu     sync.Mutex
	saves  int
	loaded *types.SidebarState
	files  map[string]types.SidebarState
}

func (f *fakePersister) Save(types.SidebarState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	return nil
}

func (f *fakePersister) Load() (*types.SidebarState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded, nil
}

func (f *fakePersister) Export(state types.SidebarState, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.files == nil {
		f.files = make(map[string]types.SidebarState)
	}
	f.files[path] = state
	return nil
}

func (f *fakePersister) Import(path string) (*types.SidebarState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.files[path]
	if !ok {
		return nil, errs.New(errs.NotFound, "no export at %s", path)
	}
	return &state, nil
}

func (f *fakePersister) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

type fixture struct {
	store    *org.Store
	sh       *shell.Shell
	sessions *session.Manager
	disk     *fakePersister
	router   *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := org.NewStore()
	tracker := nav.NewTracker(nav.Config{})
	coord := surface.New(store, tracker, nullFactory{}, surface.Config{MountTimeout: time.Second})
	sh := shell.New(store, tracker, coord, gesture.New(gesture.Config{}), shell.Config{})

	disk := &fakePersister{}
	sessions := session.NewManager(store, disk, time.Hour, nil, nil)

	h := NewHandlers(sh, sessions, nil, nil, nil, nil)

	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/state", h.State)
	router.GET("/tabs", h.Tabs)
	router.GET("/tabs/active", h.ActiveTab)
	router.GET("/stats", h.Stats)
	router.GET("/gestures/stats", h.GestureStats)
	router.GET("/session/stats", h.SessionStats)
	router.POST("/session/save", h.SaveSession)
	router.POST("/session/export", h.ExportSession)
	router.POST("/session/import", h.ImportSession)
	router.POST("/logs/stream", h.StreamLogs)

	return &fixture{store: store, sh: sh, sessions: sessions, disk: disk, router: router}
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) post(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "marina-shell", body["service"])
}

func TestStateAndTabs(t *testing.T) {
	f := newFixture(t)
	realm, err := f.store.CreateRealm("Work", "", "")
	require.NoError(t, err)
	_, err = f.store.CreateTab(realm.ID, nil, "https://example.com")
	require.NoError(t, err)
	_, err = f.store.CreateTab(realm.ID, nil, "https://example.org")
	require.NoError(t, err)

	w := f.get(t, "/state")
	require.Equal(t, http.StatusOK, w.Code)
	var state types.SidebarState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Len(t, state.Tabs, 2)

	w = f.get(t, "/tabs")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 2, body["count"])
}

func TestActiveTab(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/tabs/active")
	assert.Equal(t, http.StatusNotFound, w.Code)

	realm, err := f.store.CreateRealm("Work", "", "")
	require.NoError(t, err)
	tab, err := f.store.CreateTab(realm.ID, nil, "https://example.com")
	require.NoError(t, err)

	w = f.get(t, "/tabs/active")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, tab.ID, body["id"])
}

func TestStatsIncludesComponents(t *testing.T) {
	f := newFixture(t)
	realm, err := f.store.CreateRealm("Work", "", "")
	require.NoError(t, err)
	_, err = f.store.CreateTab(realm.ID, nil, "")
	require.NoError(t, err)

	w := f.get(t, "/stats")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Contains(t, body, "shell")
	require.Contains(t, body, "session")

	shellStats := body["shell"].(map[string]interface{})
	orgStats := shellStats["org"].(map[string]interface{})
	assert.EqualValues(t, 1, orgStats["total_tabs"])
}

func TestGestureStatsZeroed(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/gestures/stats")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 0, body["back"])
	assert.EqualValues(t, 0, body["forward"])
}

func TestSaveSessionFlushesNow(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.CreateRealm("Work", "", "")
	require.NoError(t, err)

	w := f.post(t, "/session/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.disk.saveCount())
}

func TestExportSessionValidatesPath(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, "/session/export", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.post(t, "/session/export", map[string]string{"path": "backup.json"})
	require.Equal(t, http.StatusOK, w.Code)

	f.disk.mu.Lock()
	_, ok := f.disk.files["backup.json"]
	f.disk.mu.Unlock()
	assert.True(t, ok)
}

func TestImportSessionRestores(t *testing.T) {
	source := org.NewStore()
	realm, err := source.CreateRealm("Import", "", "")
	require.NoError(t, err)
	_, err = source.CreateTab(realm.ID, nil, "https://example.com")
	require.NoError(t, err)
	exported := source.Snapshot()

	f := newFixture(t)
	f.disk.mu.Lock()
	f.disk.files = map[string]types.SidebarState{"saved.json": exported}
	f.disk.mu.Unlock()

	w := f.post(t, "/session/import", map[string]string{"path": "saved.json"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Len(t, f.store.Snapshot().Tabs, 1)

	w = f.post(t, "/session/import", map[string]string{"path": "missing.json"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamLogsValidation(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, "/logs/stream", UILogStreamRequest{Source: "other", Entries: []UILogEntry{{Message: "x"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.post(t, "/logs/stream", UILogStreamRequest{Source: "ui"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.post(t, "/logs/stream", UILogStreamRequest{
		Source: "ui",
		Entries: []UILogEntry{
			{ID: "1", Level: "info", Message: "renderer ready"},
			{ID: "2", Level: "error", Message: "paint failed", Context: map[string]interface{}{"frame": 3.0}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 2, body["entries_received"])
}
