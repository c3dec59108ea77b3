package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noznum/tracklab/internal/config"
	"github.com/noznum/tracklab/internal/service"
	"github.com/noznum/tracklab/internal/storage"
)

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	cfg := &config.Config{Port: ":0", OutputDir: store.Dir(), MapZoom: 13}
	return SetupRouter(cfg, service.NewTrackService(store, nil, cfg.MapZoom))
}

func TestHealth(t *testing.T) {
	r := newEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Track segmenter API is running"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	r := newEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/tracks/load", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRoutes(t *testing.T) {
	r := newEngine(t)

	routes := map[string]bool{}
	for _, info := range r.Routes() {
		routes[info.Method+" "+info.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/tracks/load",
		"GET /api/v1/tracks/current",
		"GET /api/v1/tracks/route",
		"GET /api/v1/tracks/map",
		"GET /api/v1/tracks/series/:name",
		"GET /api/v1/tracks/chart/:name",
		"GET /api/v1/tracks/hover",
		"POST /api/v1/tracks/click",
		"POST /api/v1/tracks/locate",
		"GET /api/v1/selection",
		"POST /api/v1/selection/begin",
		"POST /api/v1/selection/label",
		"POST /api/v1/selection/save",
		"POST /api/v1/selection/cancel",
		"GET /api/v1/segments",
		"GET /api/v1/segments/:uuid",
	} {
		assert.True(t, routes[want], want)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tracks/current", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	r := newEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/laps", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":404,"message":"Route not found"}`, w.Body.String())
}
