// Command tcxexport converts a TCX activity into a flat CSV table and can
// draw its heart rate, altitude and route as PNG images.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/noznum/tracklab/internal/models"
	"github.com/noznum/tracklab/internal/render"
	"github.com/noznum/tracklab/internal/table"
	"github.com/noznum/tracklab/internal/tcx"
	"github.com/noznum/tracklab/internal/track"
)

func main() {
	in := flag.String("in", "", "TCX file to convert")
	out := flag.String("o", "", "output CSV path (default: input with .csv extension)")
	pngDir := flag.String("png", "", "directory to write PNG plots into (optional)")
	zoom := flag.Int("zoom", render.DefaultZoom, "map zoom for the route plot")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *out == "" {
		*out = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".csv"
	}

	if err := run(*in, *out, *pngDir, *zoom); err != nil {
		log.Fatalf("tcxexport: %v", err)
	}
}

func run(in, out, pngDir string, zoom int) error {
	samples, err := tcx.Parse(in)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := table.WriteSamples(&buf, samples); err != nil {
		return fmt.Errorf("failed to encode %s: %w", in, err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.Printf("Wrote %d rows to %s", len(samples), out)

	if pngDir == "" {
		return nil
	}
	return writePlots(in, samples, pngDir, zoom)
}

func writePlots(in string, samples []models.Sample, dir string, zoom int) error {
	dataset, err := track.Load(samples)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	name := filepath.Base(in)
	png := render.NewPNG()
	for _, series := range []struct{ name, label string }{
		{track.SeriesHeartRate, "Heart rate (bpm)"},
		{track.SeriesAltitude, "Altitude (m)"},
	} {
		ys, err := dataset.Series(series.name)
		if err != nil {
			return err
		}
		curve := render.Curve{
			Title:    fmt.Sprintf("%s - %s", name, series.name),
			Name:     series.name,
			X:        dataset.Elapsed(),
			Y:        ys,
			XLabel:   "Elapsed (s)",
			YLabel:   series.label,
			Selected: -1,
		}
		if err := writePNG(filepath.Join(dir, series.name+".png"), func(buf *bytes.Buffer) error {
			return png.RenderCurve(buf, curve)
		}); err != nil {
			return err
		}
	}

	view := render.MapView{
		Title:  name,
		Center: dataset.MapCenter(),
		Zoom:   render.ClampZoom(zoom),
		Route:  dataset.Route(),
		Marker: dataset.Marker(),
	}
	return writePNG(filepath.Join(dir, "route.png"), func(buf *bytes.Buffer) error {
		return png.RenderMap(buf, view)
	})
}

func writePNG(path string, draw func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Printf("Wrote %s", path)
	return nil
}
