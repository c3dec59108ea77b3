package track

import (
	"fmt"
	"sync"

	"github.com/noznum/tracklab/internal/models"
	"github.com/noznum/tracklab/internal/spatial"
)

// Series names accepted by Dataset.Series
const (
	SeriesElapsed       = "elapsed"
	SeriesTimeInSeconds = "time_in_seconds"
	SeriesHeartRate     = "heart_rate"
	SeriesAltitude      = "altitude"
	SeriesLatitude      = "latitude"
	SeriesLongitude     = "longitude"
	SeriesDistance      = "distance"
)

// Dataset is one loaded track. Everything except the marker is derived
// once in Load and never changes; a new file load builds a new Dataset.
type Dataset struct {
	samples []models.Sample
	elapsed []float64
	route   []models.Location

	bounds     models.BoundingBox
	center     models.Location
	start      models.Location
	end        models.Location
	pathLength float64

	mu     sync.RWMutex
	marker models.Location
}

// Load builds a dataset from ordered samples. Row order is kept as given.
func Load(samples []models.Sample) (*Dataset, error) {
	if len(samples) == 0 {
		return nil, &models.EmptyTrackError{}
	}

	d := &Dataset{
		samples: make([]models.Sample, len(samples)),
		elapsed: make([]float64, len(samples)),
		route:   make([]models.Location, len(samples)),
	}

	t0 := samples[0].TimeInSeconds
	for i, s := range samples {
		s.ElapsedSeconds = s.TimeInSeconds - t0
		d.samples[i] = s
		d.elapsed[i] = s.ElapsedSeconds
		d.route[i] = s.Location()
	}

	d.bounds = spatial.Bounds(d.route)
	d.center = d.bounds.Center()
	d.start = d.route[0]
	d.end = d.route[len(d.route)-1]
	d.marker = d.start
	d.pathLength = spatial.PathLength(d.route)

	return d, nil
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.samples)
}

// Sample returns row i
func (d *Dataset) Sample(i int) (models.Sample, error) {
	if i < 0 || i >= len(d.samples) {
		return models.Sample{}, fmt.Errorf("row %d: %w", i, models.ErrRowOutOfRange)
	}
	return d.samples[i], nil
}

// Samples returns a copy of all rows
func (d *Dataset) Samples() []models.Sample {
	out := make([]models.Sample, len(d.samples))
	copy(out, d.samples)
	return out
}

// Rows returns a copy of the inclusive row range [from, to]
func (d *Dataset) Rows(from, to int) ([]models.Sample, error) {
	if from > to {
		from, to = to, from
	}
	if from < 0 || to >= len(d.samples) {
		return nil, fmt.Errorf("rows [%d, %d]: %w", from, to, models.ErrRowOutOfRange)
	}
	out := make([]models.Sample, to-from+1)
	copy(out, d.samples[from:to+1])
	return out, nil
}

// Elapsed returns the elapsed-time series. The slice is shared; callers
// must not modify it.
func (d *Dataset) Elapsed() []float64 {
	return d.elapsed
}

// Series returns a copy of the named column
func (d *Dataset) Series(name string) ([]float64, error) {
	var pick func(models.Sample) float64
	switch name {
	case SeriesElapsed:
		pick = func(s models.Sample) float64 { return s.ElapsedSeconds }
	case SeriesTimeInSeconds:
		pick = func(s models.Sample) float64 { return s.TimeInSeconds }
	case SeriesHeartRate:
		pick = func(s models.Sample) float64 { return s.HeartRate }
	case SeriesAltitude:
		pick = func(s models.Sample) float64 { return s.Altitude }
	case SeriesLatitude:
		pick = func(s models.Sample) float64 { return s.Latitude }
	case SeriesLongitude:
		pick = func(s models.Sample) float64 { return s.Longitude }
	case SeriesDistance:
		pick = func(s models.Sample) float64 { return s.Distance }
	default:
		return nil, fmt.Errorf("%q: %w", name, models.ErrUnknownSeries)
	}

	out := make([]float64, len(d.samples))
	for i, s := range d.samples {
		out[i] = pick(s)
	}
	return out, nil
}

// Route returns the ordered coordinates for drawing the polyline
func (d *Dataset) Route() []models.Location {
	out := make([]models.Location, len(d.route))
	copy(out, d.route)
	return out
}

// Bounds returns the bounding box of all coordinates
func (d *Dataset) Bounds() models.BoundingBox { return d.bounds }

// MapCenter returns the midpoint of the bounding box
func (d *Dataset) MapCenter() models.Location { return d.center }

// StartLocation returns the first row's coordinates
func (d *Dataset) StartLocation() models.Location { return d.start }

// EndLocation returns the last row's coordinates
func (d *Dataset) EndLocation() models.Location { return d.end }

// PathLength returns the great-circle length of the route in meters
func (d *Dataset) PathLength() float64 { return d.pathLength }

// Marker returns the current marker location
func (d *Dataset) Marker() models.Location {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.marker
}

// SetMarker moves the marker
func (d *Dataset) SetMarker(loc models.Location) {
	d.mu.Lock()
	d.marker = loc
	d.mu.Unlock()
}

// MarkerAt moves the marker to row i and returns that row
func (d *Dataset) MarkerAt(i int) (models.Sample, error) {
	s, err := d.Sample(i)
	if err != nil {
		return s, err
	}
	d.SetMarker(s.Location())
	return s, nil
}

// Summary describes the dataset for display
type Summary struct {
	FileName       string             `json:"file_name"`
	DirName        string             `json:"dir_name"`
	Rows           int                `json:"rows"`
	StartLocation  models.Location    `json:"start_location"`
	EndLocation    models.Location    `json:"end_location"`
	BoundingBox    models.BoundingBox `json:"bounding_box"`
	MapCenter      models.Location    `json:"map_center"`
	Centroid       models.Location    `json:"centroid"`
	Marker         models.Location    `json:"marker"`
	Duration       float64            `json:"duration"`        // Last elapsed value, seconds
	PathLength     float64            `json:"path_length"`     // Great-circle meters
	DeviceDistance float64            `json:"device_distance"` // Max cumulative distance
	Monotonic      bool               `json:"monotonic"`       // False when elapsed time decreases
}

// Summary reports the derived values of the dataset
func (d *Dataset) Summary() Summary {
	first := d.samples[0]
	sum := Summary{
		FileName:      first.FileName,
		DirName:       first.DirName,
		Rows:          len(d.samples),
		StartLocation: d.start,
		EndLocation:   d.end,
		BoundingBox:   d.bounds,
		MapCenter:     d.center,
		Centroid:      spatial.Centroid(d.route),
		Marker:        d.Marker(),
		Duration:      d.elapsed[len(d.elapsed)-1],
		PathLength:    d.pathLength,
		Monotonic:     true,
	}
	for i, s := range d.samples {
		if s.Distance > sum.DeviceDistance {
			sum.DeviceDistance = s.Distance
		}
		if i > 0 && d.elapsed[i] < d.elapsed[i-1] {
			sum.Monotonic = false
		}
	}
	return sum
}
