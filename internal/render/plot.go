package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	lineColor   = color.RGBA{R: 0x3e, G: 0x49, B: 0x89, A: 0xff}
	markerColor = color.RGBA{R: 0xff, G: 0x52, B: 0x52, A: 0xff}
)

// PNG renders static images with gonum/plot
type PNG struct {
	Width  vg.Length
	Height vg.Length
}

// NewPNG returns a PNG renderer sized like a wide strip chart
func NewPNG() *PNG {
	return &PNG{Width: 14 * vg.Inch, Height: 6 * vg.Inch}
}

// RenderCurve draws the curve as a line, with the selected row marked
func (r *PNG) RenderCurve(w io.Writer, curve Curve) error {
	pts, err := finitePoints(curve.X, curve.Y)
	if err != nil {
		return fmt.Errorf("failed to render curve %s: %w", curve.Name, err)
	}

	p := plot.New()
	p.Title.Text = curve.Title
	if p.Title.Text == "" {
		p.Title.Text = curve.Name
	}
	p.X.Label.Text = curve.XLabel
	p.Y.Label.Text = curve.YLabel
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.x, Y: pt.y}
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = lineColor
	line.Width = vg.Points(1)
	p.Add(line)

	if curve.Selected >= 0 && curve.Selected < len(curve.X) && finite(curve.X[curve.Selected]) && finite(curve.Y[curve.Selected]) {
		if err := addMarker(p, curve.X[curve.Selected], curve.Y[curve.Selected]); err != nil {
			return err
		}
	}

	return r.write(p, w)
}

// RenderMap draws the route in lon/lat framed at the view's zoom level
func (r *PNG) RenderMap(w io.Writer, view MapView) error {
	pts, err := routePoints(view.Route)
	if err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}

	p := plot.New()
	p.Title.Text = view.Title
	if p.Title.Text == "" {
		p.Title.Text = fmt.Sprintf("Route (zoom %d)", ClampZoom(view.Zoom))
	}
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = Window(view, 4, 2.2)
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.x, Y: pt.y}
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = lineColor
	line.Width = vg.Points(1.5)
	p.Add(line)

	if err := addMarker(p, view.Marker.Lon, view.Marker.Lat); err != nil {
		return err
	}

	return r.write(p, w)
}

func addMarker(p *plot.Plot, x, y float64) error {
	marker, err := plotter.NewScatter(plotter.XYs{{X: x, Y: y}})
	if err != nil {
		return err
	}
	marker.GlyphStyle.Color = markerColor
	marker.GlyphStyle.Radius = vg.Points(4)
	marker.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(marker)
	return nil
}

func (r *PNG) write(p *plot.Plot, w io.Writer) error {
	wt, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}
