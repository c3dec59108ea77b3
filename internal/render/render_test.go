package render

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noznum/tracklab/internal/models"
)

func testCurve() Curve {
	return Curve{
		Name:     "altitude",
		X:        []float64{0, 10, 20, 30, 40},
		Y:        []float64{100, 105, math.NaN(), 108, 102},
		XLabel:   "Elapsed (s)",
		YLabel:   "Altitude (m)",
		Selected: 3,
	}
}

func testView() MapView {
	return MapView{
		Center: models.Location{Lat: 48.12, Lon: -1.62},
		Zoom:   13,
		Route:  []models.Location{{Lat: 48.10, Lon: -1.60}, {Lat: 48.12, Lon: -1.62}, {Lat: 48.14, Lon: -1.64}},
		Marker: models.Location{Lat: 48.12, Lon: -1.62},
	}
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, MinZoom, ClampZoom(0))
	assert.Equal(t, 13, ClampZoom(13))
	assert.Equal(t, MaxZoom, ClampZoom(25))
}

func TestWindow(t *testing.T) {
	view := MapView{Center: models.Location{Lat: 0, Lon: 10}, Zoom: 3}
	minLon, maxLon, minLat, maxLat := Window(view, 2, 2)
	assert.InDelta(t, 10-45, minLon, 1e-9)
	assert.InDelta(t, 10+45, maxLon, 1e-9)
	assert.InDelta(t, -45, minLat, 1e-9)
	assert.InDelta(t, 45, maxLat, 1e-9)

	view.Zoom = 4
	minLon, maxLon, _, _ = Window(view, 2, 2)
	assert.InDelta(t, 45, maxLon-minLon, 1e-9)
}

func TestEChartsRenderCurve(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewECharts("").RenderCurve(&buf, testCurve()))

	html := buf.String()
	assert.True(t, strings.Contains(html, "echarts"))
	assert.Contains(t, html, "altitude")
	assert.Contains(t, html, "selected")
}

func TestEChartsRenderMap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewECharts("http://assets.local/").RenderMap(&buf, testView()))

	html := buf.String()
	assert.Contains(t, html, "http://assets.local/")
	assert.Contains(t, html, "marker")
	assert.Contains(t, html, "zoom=13")
}

func TestRenderErrors(t *testing.T) {
	renderers := map[string]interface {
		ChartRenderer
		MapRenderer
	}{
		"echarts": NewECharts(""),
		"png":     NewPNG(),
	}

	for name, r := range renderers {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			err := r.RenderCurve(&buf, Curve{Name: "empty", X: []float64{math.NaN()}, Y: []float64{1}})
			assert.ErrorIs(t, err, ErrNoPoints)

			err = r.RenderCurve(&buf, Curve{Name: "bad", X: []float64{1, 2}, Y: []float64{1}})
			assert.Error(t, err)

			err = r.RenderMap(&buf, MapView{Zoom: 13})
			assert.ErrorIs(t, err, ErrNoPoints)
		})
	}
}

func TestPNGRender(t *testing.T) {
	pngMagic := []byte("\x89PNG\r\n\x1a\n")

	var curve bytes.Buffer
	require.NoError(t, NewPNG().RenderCurve(&curve, testCurve()))
	assert.True(t, bytes.HasPrefix(curve.Bytes(), pngMagic))

	var route bytes.Buffer
	require.NoError(t, NewPNG().RenderMap(&route, testView()))
	assert.True(t, bytes.HasPrefix(route.Bytes(), pngMagic))
}
