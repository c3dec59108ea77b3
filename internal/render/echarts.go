package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ECharts renders interactive HTML pages with go-echarts. AssetsHost
// overrides where the echarts scripts are loaded from; empty keeps the
// library default.
type ECharts struct {
	AssetsHost string
	Width      string
	Height     string
}

// NewECharts returns an HTML renderer
func NewECharts(assetsHost string) *ECharts {
	return &ECharts{AssetsHost: assetsHost, Width: "1100px", Height: "600px"}
}

func (e *ECharts) initOpts(title string) opts.Initialization {
	o := opts.Initialization{PageTitle: title, Width: e.Width, Height: e.Height}
	if e.AssetsHost != "" {
		o.AssetsHost = e.AssetsHost
	}
	return o
}

// RenderCurve renders the curve as a line chart over a numeric x axis
func (e *ECharts) RenderCurve(w io.Writer, curve Curve) error {
	pts, err := finitePoints(curve.X, curve.Y)
	if err != nil {
		return fmt.Errorf("failed to render curve %s: %w", curve.Name, err)
	}

	data := make([]opts.LineData, 0, len(pts))
	for _, p := range pts {
		data = append(data, opts.LineData{Value: []interface{}{p.x, p.y, p.row}})
	}

	title := curve.Title
	if title == "" {
		title = curve.Name
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(e.initOpts(title)),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("points=%d", len(pts))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: curve.XLabel, NameLocation: "middle", NameGap: 25, Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: curve.YLabel, NameLocation: "middle", NameGap: 40, Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	line.AddSeries(curve.Name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	if curve.Selected >= 0 && curve.Selected < len(curve.X) && finite(curve.X[curve.Selected]) && finite(curve.Y[curve.Selected]) {
		selected := charts.NewScatter()
		selected.AddSeries("selected", []opts.ScatterData{{Value: []interface{}{curve.X[curve.Selected], curve.Y[curve.Selected], curve.Selected}}},
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff5252"}))
		line.Overlap(selected)
	}

	return line.Render(w)
}

// RenderMap renders the route as a lon/lat polyline framed around the view
// center at the view's zoom level, with the marker on top
func (e *ECharts) RenderMap(w io.Writer, view MapView) error {
	pts, err := routePoints(view.Route)
	if err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}

	data := make([]opts.LineData, 0, len(pts))
	for _, p := range pts {
		data = append(data, opts.LineData{Value: []interface{}{p.x, p.y, p.row}})
	}

	title := view.Title
	if title == "" {
		title = "Route"
	}
	minLon, maxLon, minLat, maxLat := Window(view, 4, 2.2)

	route := charts.NewLine()
	route.SetGlobalOptions(
		charts.WithInitializationOpts(e.initOpts(title)),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("zoom=%d points=%d", ClampZoom(view.Zoom), len(pts))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Longitude", NameLocation: "middle", NameGap: 25, Min: minLon, Max: maxLon}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Latitude", NameLocation: "middle", NameGap: 40, Min: minLat, Max: maxLat}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	route.AddSeries("route", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#3e4989"}))

	marker := charts.NewScatter()
	marker.AddSeries("marker", []opts.ScatterData{{Value: []interface{}{view.Marker.Lon, view.Marker.Lat}}},
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff5252"}))
	route.Overlap(marker)

	return route.Render(w)
}
