package render

import (
	"errors"
	"io"
	"math"

	"github.com/noznum/tracklab/internal/models"
)

// Map zoom levels accepted by the map renderers
const (
	MinZoom     = 3
	MaxZoom     = 18
	DefaultZoom = 13
)

// ErrNoPoints is returned when there is nothing finite to draw
var ErrNoPoints = errors.New("nothing to render")

// MapView is everything a map renderer needs. Moving the marker is a
// re-render of the same view with a new Marker.
type MapView struct {
	Title  string            `json:"title,omitempty"`
	Center models.Location   `json:"center"`
	Zoom   int               `json:"zoom"`
	Route  []models.Location `json:"route"`
	Marker models.Location   `json:"marker"`
}

// Curve is one plotted series. Selected marks a row with a distinct symbol,
// -1 for none.
type Curve struct {
	Title    string    `json:"title,omitempty"`
	Name     string    `json:"name"`
	X        []float64 `json:"x"`
	Y        []float64 `json:"y"`
	XLabel   string    `json:"x_label"`
	YLabel   string    `json:"y_label"`
	Selected int       `json:"selected"`
}

// MapRenderer draws a route with a marker
type MapRenderer interface {
	RenderMap(w io.Writer, view MapView) error
}

// ChartRenderer draws an x/y curve
type ChartRenderer interface {
	RenderCurve(w io.Writer, curve Curve) error
}

// ClampZoom limits zoom to [MinZoom, MaxZoom]
func ClampZoom(zoom int) int {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}

// Window returns the longitude and latitude extent shown around the center
// at a zoom level, following the web map convention of 360/2^zoom degrees
// of longitude per 256px tile
func Window(view MapView, widthTiles, heightTiles float64) (minLon, maxLon, minLat, maxLat float64) {
	span := 360 / math.Exp2(float64(ClampZoom(view.Zoom)))
	halfLon := span * widthTiles / 2
	halfLat := span * heightTiles / 2 * math.Cos(view.Center.Lat*math.Pi/180)
	return view.Center.Lon - halfLon, view.Center.Lon + halfLon,
		view.Center.Lat - halfLat, view.Center.Lat + halfLat
}

type point struct {
	row  int
	x, y float64
}

// finitePoints pairs up x and y, dropping rows where either is NaN or infinite
func finitePoints(xs, ys []float64) ([]point, error) {
	if len(xs) != len(ys) {
		return nil, errors.New("x and y lengths differ")
	}
	out := make([]point, 0, len(xs))
	for i := range xs {
		if finite(xs[i]) && finite(ys[i]) {
			out = append(out, point{row: i, x: xs[i], y: ys[i]})
		}
	}
	if len(out) == 0 {
		return nil, ErrNoPoints
	}
	return out, nil
}

func routePoints(route []models.Location) ([]point, error) {
	xs := make([]float64, len(route))
	ys := make([]float64, len(route))
	for i, loc := range route {
		xs[i], ys[i] = loc.Lon, loc.Lat
	}
	return finitePoints(xs, ys)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
