package track

import (
	"fmt"
	"math"

	"github.com/noznum/tracklab/internal/models"
)

// Segment builds the segment spanning rows a and b, in either order
func (d *Dataset) Segment(a, b int, label string) (models.Segment, error) {
	if a > b {
		a, b = b, a
	}
	if a < 0 || b >= len(d.samples) {
		return models.Segment{}, fmt.Errorf("rows [%d, %d]: %w", a, b, models.ErrRowOutOfRange)
	}

	first, last := d.samples[a], d.samples[b]
	return models.Segment{
		StartRow: a,
		EndRow:   b,
		Label:    label,
		Distance: math.Abs(last.Distance - first.Distance),
		Duration: math.Abs(last.ElapsedSeconds - first.ElapsedSeconds),
	}, nil
}

// SegmentRows returns the segment's rows with label and speed joined in.
// Speed at row i is the distance gained since track row i-1 over the time
// step; it is NaN for the first track row and for zero or negative steps.
func (d *Dataset) SegmentRows(seg models.Segment) ([]models.Sample, error) {
	rows, err := d.Rows(seg.StartRow, seg.EndRow)
	if err != nil {
		return nil, err
	}

	for k := range rows {
		i := seg.StartRow + k
		rows[k].Label = seg.Label
		rows[k].Speed = d.speedAt(i)
	}
	return rows, nil
}

func (d *Dataset) speedAt(i int) models.Float {
	if i == 0 {
		return models.NaN()
	}
	dt := d.elapsed[i] - d.elapsed[i-1]
	if dt <= 0 {
		return models.NaN()
	}
	return models.Float((d.samples[i].Distance - d.samples[i-1].Distance) / dt)
}
