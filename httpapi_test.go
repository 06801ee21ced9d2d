package modregistry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandlerListModules(t *testing.T) {
	registry := newTestRegistry(t)
	require.NoError(t, registry.Register(moduleConfig("core")))
	require.NoError(t, registry.Register(moduleConfig("grades", "core")))

	rec := doRequest(t, registry.Handler(), "/modules")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var views []moduleView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "core", views[0].Config.Name)
}

func TestHandlerGetModule(t *testing.T) {
	registry := newTestRegistry(t)
	require.NoError(t, registry.Register(moduleConfig("core")))

	rec := doRequest(t, registry.Handler(), "/modules/core")
	require.Equal(t, http.StatusOK, rec.Code)

	var view moduleView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "core", view.Config.Name)
	assert.Equal(t, StatusLoaded, view.Status)
}

func TestHandlerGetModuleNotFound(t *testing.T) {
	registry := newTestRegistry(t)
	rec := doRequest(t, registry.Handler(), "/modules/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerGetModuleExposesRegistrationError(t *testing.T) {
	registry := newTestRegistry(t)
	require.ErrorIs(t, registry.Register(moduleConfig("broken", "missing")), ErrDependencyNotFound)

	rec := doRequest(t, registry.Handler(), "/modules/broken")
	require.Equal(t, http.StatusOK, rec.Code)

	var view moduleView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, StatusError, view.Status)
	assert.Contains(t, view.Error, "missing")
}

func TestHandlerStatistics(t *testing.T) {
	registry := newTestRegistry(t)
	require.NoError(t, registry.Register(moduleConfig("core")))

	rec := doRequest(t, registry.Handler(), "/statistics")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Enabled)
}

func TestHandlerHealth(t *testing.T) {
	registry := newTestRegistry(t)
	require.NoError(t, registry.Register(moduleConfig("core")))
	require.NoError(t, registry.Register(moduleConfig("grades", "core")))

	rec := doRequest(t, registry.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Degrade the graph and poll again
	registry.mu.Lock()
	registry.entries["core"].Config.Enabled = false
	registry.mu.Unlock()

	rec = doRequest(t, registry.Handler(), "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var results map[string]HealthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Equal(t, HealthUnhealthy, results["grades"].Status)
}
