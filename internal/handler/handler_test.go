package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noznum/tracklab/internal/models"
	"github.com/noznum/tracklab/internal/render"
	"github.com/noznum/tracklab/internal/selection"
	"github.com/noznum/tracklab/internal/service"
	"github.com/noznum/tracklab/internal/storage"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Wire shape of a selection snapshot; the state travels as its name
type snapshot struct {
	State   string          `json:"state"`
	Label   string          `json:"label"`
	Pending []int           `json:"pending"`
	Segment *models.Segment `json:"segment"`
}

type clickResult struct {
	Row       int             `json:"row"`
	Marker    models.Location `json:"marker"`
	Selection snapshot        `json:"selection"`
}

func writeTrack(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2">
<Activities><Activity Sport="Running"><Lap StartTime="2023-04-01T09:00:00Z"><Track>
`)
	alt := []int{100, 105, 110, 108, 102}
	dist := []int{0, 30, 65, 95, 120}
	for i := range alt {
		fmt.Fprintf(&b, `<Trackpoint><Time>2023-04-01T09:00:%02d.000Z</Time>
<Position><LatitudeDegrees>%.2f</LatitudeDegrees><LongitudeDegrees>%.2f</LongitudeDegrees></Position>
<AltitudeMeters>%d</AltitudeMeters><DistanceMeters>%d</DistanceMeters>
<HeartRateBpm><Value>%d</Value></HeartRateBpm></Trackpoint>
`, i*10, 48.10+float64(i)/100, -1.60-float64(i)/100, alt[i], dist[i], 120+10*i)
	}
	b.WriteString(`</Track></Lap></Activity></Activities></TrainingCenterDatabase>`)

	path := filepath.Join(t.TempDir(), "run.tcx")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func newRouter(t *testing.T) (*gin.Engine, *storage.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	svc := service.NewTrackService(store, nil, render.DefaultZoom)

	tracks := NewTrackHandler(svc, render.NewECharts(""), render.NewPNG())
	selections := NewSelectionHandler(svc)
	segments := NewSegmentHandler(svc)

	r := gin.New()
	r.POST("/tracks/load", tracks.Load)
	r.GET("/tracks/current", tracks.GetCurrent)
	r.GET("/tracks/route", tracks.GetRoute)
	r.GET("/tracks/map", tracks.GetMap)
	r.GET("/tracks/series/:name", tracks.GetSeries)
	r.GET("/tracks/chart/:name", tracks.GetChart)
	r.GET("/tracks/hover", tracks.Hover)
	r.POST("/tracks/click", tracks.Click)
	r.POST("/tracks/locate", tracks.Locate)
	r.GET("/selection", selections.GetSelection)
	r.POST("/selection/begin", selections.Begin)
	r.POST("/selection/label", selections.ConfirmLabel)
	r.POST("/selection/save", selections.Save)
	r.POST("/selection/cancel", selections.Cancel)
	r.GET("/segments", segments.GetSegments)
	r.GET("/segments/:uuid", segments.GetSegment)
	return r, store
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func load(t *testing.T, r http.Handler) {
	t.Helper()
	w := do(t, r, http.MethodPost, "/tracks/load", fmt.Sprintf(`{"path":%q}`, writeTrack(t)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestEndpointsWithoutTrack(t *testing.T) {
	r, _ := newRouter(t)

	for _, path := range []string{"/tracks/current", "/tracks/route", "/tracks/map", "/tracks/series/heart_rate", "/selection"} {
		w := do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestLoadBadRequests(t *testing.T) {
	r, _ := newRouter(t)

	w := do(t, r, http.MethodPost, "/tracks/load", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := filepath.Join(t.TempDir(), "bad.tcx")
	require.NoError(t, os.WriteFile(bad, []byte(`<TrainingCenterDatabase><Activities/></TrainingCenterDatabase>`), 0o644))
	w = do(t, r, http.MethodPost, "/tracks/load", fmt.Sprintf(`{"path":%q}`, bad))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLoadRejectsNonFiniteValues(t *testing.T) {
	r, _ := newRouter(t)
	load(t, r)

	content, err := os.ReadFile(writeTrack(t))
	require.NoError(t, err)
	nan := filepath.Join(t.TempDir(), "nan.tcx")
	broken := strings.Replace(string(content), "<AltitudeMeters>105</AltitudeMeters>", "<AltitudeMeters>NaN</AltitudeMeters>", 1)
	require.NoError(t, os.WriteFile(nan, []byte(broken), 0o644))

	w := do(t, r, http.MethodPost, "/tracks/load", fmt.Sprintf(`{"path":%q}`, nan))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// The previous track still serves hover, click and summary
	for _, req := range []struct{ method, path, body string }{
		{http.MethodGet, "/tracks/current", ""},
		{http.MethodGet, "/tracks/hover?x=3", ""},
		{http.MethodPost, "/tracks/click", `{"row":1}`},
	} {
		w := do(t, r, req.method, req.path, req.body)
		require.Equal(t, http.StatusOK, w.Code, req.path)
		var data map[string]interface{}
		decode(t, w, &data)
		assert.NotEmpty(t, data, req.path)
	}
}

func TestLoadAndRoute(t *testing.T) {
	r, _ := newRouter(t)
	load(t, r)

	var summary struct {
		Rows      int `json:"rows"`
		MapCenter struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"map_center"`
	}
	decode(t, do(t, r, http.MethodGet, "/tracks/current", ""), &summary)
	assert.Equal(t, 5, summary.Rows)
	assert.InDelta(t, 48.12, summary.MapCenter.Lat, 1e-9)
	assert.InDelta(t, -1.62, summary.MapCenter.Lon, 1e-9)

	var view render.MapView
	decode(t, do(t, r, http.MethodGet, "/tracks/route?zoom=40", ""), &view)
	assert.Equal(t, render.MaxZoom, view.Zoom)
	assert.Len(t, view.Route, 5)

	w := do(t, r, http.MethodGet, "/tracks/route?zoom=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMapAndChartFormats(t *testing.T) {
	r, _ := newRouter(t)
	load(t, r)

	w := do(t, r, http.MethodGet, "/tracks/map", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "echarts")

	w = do(t, r, http.MethodGet, "/tracks/chart/altitude?format=png", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = do(t, r, http.MethodGet, "/tracks/chart/cadence", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeries(t *testing.T) {
	r, _ := newRouter(t)
	load(t, r)

	var series SeriesResponse
	decode(t, do(t, r, http.MethodGet, "/tracks/series/heart_rate", ""), &series)
	require.Len(t, series.Y, 5)
	assert.Equal(t, 140.0, float64(series.Y[2]))
	assert.Equal(t, 40.0, float64(series.X[4]))
	assert.Equal(t, -1, series.Selected)
}

func TestHover(t *testing.T) {
	r, _ := newRouter(t)
	load(t, r)

	var hover service.HoverResult
	decode(t, do(t, r, http.MethodGet, "/tracks/hover?x=14", ""), &hover)
	assert.Equal(t, 1, hover.Row)
	assert.InDelta(t, 134, hover.HeartRate, 1e-9)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/tracks/hover?x=left", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/tracks/hover?x=NaN", "").Code)
}

func TestClickAndLocate(t *testing.T) {
	r, _ := newRouter(t)
	load(t, r)

	var click clickResult
	decode(t, do(t, r, http.MethodPost, "/tracks/click", `{"row":0}`), &click)
	assert.Equal(t, 0, click.Row)
	assert.Equal(t, 48.10, click.Marker.Lat)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/tracks/click", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/tracks/click", `{"row":7}`).Code)

	decode(t, do(t, r, http.MethodPost, "/tracks/locate", `{"lat":48.131,"lon":-1.629}`), &click)
	assert.Equal(t, 3, click.Row)
}

func TestSelectionFlow(t *testing.T) {
	r, store := newRouter(t)
	load(t, r)

	var snap snapshot
	decode(t, do(t, r, http.MethodPost, "/selection/begin", ""), &snap)
	assert.Equal(t, selection.AwaitingLabel.String(), snap.State)

	w := do(t, r, http.MethodPost, "/selection/label", `{"label":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	decode(t, w, &snap)
	assert.Equal(t, selection.AwaitingLabel.String(), snap.State)

	decode(t, do(t, r, http.MethodPost, "/selection/label", `{"label":"lap1"}`), &snap)
	assert.Equal(t, selection.CollectingClicks.String(), snap.State)

	// Degenerate second click resets the pending clicks
	do(t, r, http.MethodPost, "/tracks/click", `{"row":2}`)
	w = do(t, r, http.MethodPost, "/tracks/click", `{"row":2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var click clickResult
	decode(t, w, &click)
	assert.Equal(t, selection.CollectingClicks.String(), click.Selection.State)
	assert.Empty(t, click.Selection.Pending)

	do(t, r, http.MethodPost, "/tracks/click", `{"row":3}`)
	decode(t, do(t, r, http.MethodPost, "/tracks/click", `{"row":1}`), &click)
	assert.Equal(t, selection.Complete.String(), click.Selection.State)
	require.NotNil(t, click.Selection.Segment)
	assert.Equal(t, 1, click.Selection.Segment.StartRow)

	var saved service.SaveResult
	decode(t, do(t, r, http.MethodPost, "/selection/save", ""), &saved)
	assert.Equal(t, filepath.Join(store.Dir(), "lap1.csv"), saved.Path)
	assert.Equal(t, "00:00:20", saved.Stats.Segment.Duration)
	assert.FileExists(t, store.StatsPath())

	decode(t, do(t, r, http.MethodGet, "/selection", ""), &snap)
	assert.Equal(t, selection.Idle.String(), snap.State)

	// Saving again without a selection is a conflict
	assert.Equal(t, http.StatusConflict, do(t, r, http.MethodPost, "/selection/save", "").Code)

	// The label is taken now
	do(t, r, http.MethodPost, "/selection/begin", "")
	assert.Equal(t, http.StatusConflict, do(t, r, http.MethodPost, "/selection/label", `{"label":"lap1"}`).Code)

	decode(t, do(t, r, http.MethodPost, "/selection/cancel", ""), &snap)
	assert.Equal(t, selection.Idle.String(), snap.State)
}

func TestSegmentsWithoutCatalog(t *testing.T) {
	r, _ := newRouter(t)

	w := do(t, r, http.MethodGet, "/segments?page=2&pageSize=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data     []interface{} `json:"data"`
		Page     int           `json:"page"`
		PageSize int           `json:"pageSize"`
	}
	decode(t, w, &list)
	assert.Empty(t, list.Data)
	assert.Equal(t, 2, list.Page)
	assert.Equal(t, 5, list.PageSize)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/segments/abc", "").Code)
}
