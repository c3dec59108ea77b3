package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/noznum/tracklab/internal/models"
)

// Provenance identifies the segment a statistics record describes
type Provenance struct {
	FileName string
	DirName  string
	Label    string
	StartRow int
	EndRow   int
}

// Compute summarizes a segment and its whole track side by side. The segment
// must span a positive duration and a positive distance.
func Compute(segmentRows, trackRows []models.Sample, src Provenance) (models.StatsRecord, error) {
	if len(segmentRows) == 0 {
		return models.StatsRecord{}, &models.EmptyTrackError{Source: "segment " + src.Label}
	}
	if len(trackRows) == 0 {
		return models.StatsRecord{}, &models.EmptyTrackError{Source: src.FileName}
	}

	if r := Range(column(segmentRows, distanceOf)); r == 0 {
		return models.StatsRecord{}, degenerate(src, "zero distance")
	}

	seg, err := Summarize(segmentRows)
	if err != nil {
		return models.StatsRecord{}, degenerate(src, err.Error())
	}
	global, err := Summarize(trackRows)
	if err != nil {
		return models.StatsRecord{}, fmt.Errorf("failed to summarize track %s: %w", src.FileName, err)
	}

	return models.StatsRecord{
		FileName: src.FileName,
		DirName:  src.DirName,
		Label:    src.Label,
		Segment:  seg,
		Global:   global,
	}, nil
}

// ErrZeroDuration is returned by Summarize for rows sharing one elapsed time
var ErrZeroDuration = errors.New("zero duration")

// Summarize computes the statistics of one sample sequence. Distance is the
// largest cumulative distance in the sequence, not last minus first: some
// devices report a near-zero cumulative distance on the final sample.
func Summarize(rows []models.Sample) (models.Summary, error) {
	elapsed := column(rows, elapsedOf)
	span := Range(elapsed)
	if !(span > 0) {
		return models.Summary{}, ErrZeroDuration
	}

	hr := column(rows, heartRateOf)
	alt := column(rows, altitudeOf)
	distance := Max(column(rows, distanceOf))

	speeds := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.HasSpeed() {
			speeds = append(speeds, float64(r.Speed))
		}
	}

	return models.Summary{
		AvgHeartRate:    models.Float(Mean(hr)),
		StdHeartRate:    models.Float(StdDev(hr)),
		AvgAltitude:     models.Float(Mean(alt)),
		StdAltitude:     models.Float(StdDev(alt)),
		Distance:        distance,
		Duration:        FormatDuration(span),
		DurationSeconds: span,
		AvgSpeed:        models.Float(distance / span),
		StdSpeed:        models.Float(StdDev(speeds)),
	}, nil
}

// FormatDuration renders seconds as HH:MM:SS rounded to the nearest second.
// Hours are not wrapped at 24.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return ""
	}
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	total := int64(math.Round(seconds))
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, total/3600, total/60%60, total%60)
}

func degenerate(src Provenance, reason string) error {
	return &models.DegenerateSegmentError{StartRow: src.StartRow, EndRow: src.EndRow, Reason: reason}
}

func column(rows []models.Sample, pick func(models.Sample) float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = pick(r)
	}
	return out
}

func elapsedOf(s models.Sample) float64   { return s.ElapsedSeconds }
func heartRateOf(s models.Sample) float64 { return s.HeartRate }
func altitudeOf(s models.Sample) float64  { return s.Altitude }
func distanceOf(s models.Sample) float64  { return s.Distance }
