package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/noznum/tracklab/internal/models"
)

// Columns is the header of the flat sample table
var Columns = []string{
	"file_name", "dir_name", "time", "time_in_hours", "time_in_seconds",
	"latitude", "longitude", "altitude", "distance", "heart_rate",
}

// SegmentColumns is the header of an exported segment: the flat table plus
// the label and derived speed
var SegmentColumns = append(append([]string{}, Columns...), "label", "speed")

// ReadSamplesFile loads a flat table from disk
func ReadSamplesFile(path string) ([]models.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &models.IOError{Path: path, Err: err}
	}
	defer file.Close()

	samples, err := ReadSamples(file)
	if err != nil {
		var mte *models.MalformedTrackError
		if errors.As(err, &mte) {
			mte.Path = path
			return nil, mte
		}
		var ioErr *models.IOError
		if errors.As(err, &ioErr) {
			ioErr.Path = path
			return nil, ioErr
		}
		return nil, err
	}
	return samples, nil
}

// ReadSamples reads samples from a flat table. The header is required and
// columns may appear in any order; label and speed are read when present.
// Elapsed time is left to the dataset.
func ReadSamples(r io.Reader) ([]models.Sample, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	head, err := reader.Read()
	if err == io.EOF {
		return nil, &models.MalformedTrackError{Reason: "missing header"}
	}
	if err != nil {
		return nil, readError(err)
	}

	index := make(map[string]int, len(head))
	for i, name := range head {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range Columns {
		if _, ok := index[name]; !ok {
			return nil, &models.MalformedTrackError{Reason: fmt.Sprintf("missing column %s", name)}
		}
	}

	var samples []models.Sample
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(err)
		}

		s, err := decodeRow(record, index)
		if err != nil {
			return nil, &models.MalformedTrackError{Reason: fmt.Sprintf("line %d", line), Err: err}
		}
		samples = append(samples, s)
	}

	return samples, nil
}

func decodeRow(record []string, index map[string]int) (models.Sample, error) {
	field := func(name string) string {
		return strings.TrimSpace(record[index[name]])
	}
	num := func(name string) (float64, error) {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("invalid %s %q", name, field(name))
		}
		return v, nil
	}

	s := models.Sample{
		FileName: field("file_name"),
		DirName:  field("dir_name"),
		Time:     field("time"),
		Speed:    models.NaN(),
	}

	var err error
	if s.TimeInSeconds, err = num("time_in_seconds"); err != nil {
		return s, err
	}
	if s.Latitude, err = num("latitude"); err != nil {
		return s, err
	}
	if s.Longitude, err = num("longitude"); err != nil {
		return s, err
	}
	if s.Altitude, err = num("altitude"); err != nil {
		return s, err
	}
	if s.Distance, err = num("distance"); err != nil {
		return s, err
	}
	if s.HeartRate, err = num("heart_rate"); err != nil {
		return s, err
	}

	if _, ok := index["label"]; ok {
		s.Label = field("label")
	}
	if _, ok := index["speed"]; ok && field("speed") != "" {
		v, err := num("speed")
		if err != nil {
			return s, err
		}
		s.Speed = models.Float(v)
	}

	return s, nil
}

// readError classifies csv failures: parse errors mean a malformed table,
// anything else came from the reader
func readError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &models.MalformedTrackError{Reason: fmt.Sprintf("line %d", pe.Line), Err: err}
	}
	return &models.IOError{Err: err}
}

// WriteSamples writes samples as a flat table with header
func WriteSamples(w io.Writer, samples []models.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, s := range samples {
		if err := cw.Write(sampleRecord(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSegment writes segment rows with label and speed columns
func WriteSegment(w io.Writer, rows []models.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SegmentColumns); err != nil {
		return err
	}
	for _, s := range rows {
		record := append(sampleRecord(s), s.Label, FormatFloat(float64(s.Speed)))
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// StatsRecord flattens a statistics record in StatsColumns order
func StatsRecord(rec models.StatsRecord) []string {
	row := []string{rec.FileName, rec.DirName, rec.Label}
	row = append(row, summaryRecord(rec.Segment)...)
	return append(row, summaryRecord(rec.Global)...)
}

// WriteStats writes statistics rows, with the header when header is true
func WriteStats(w io.Writer, records []models.StatsRecord, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(models.StatsColumns); err != nil {
			return err
		}
	}
	for _, rec := range records {
		if err := cw.Write(StatsRecord(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func summaryRecord(s models.Summary) []string {
	return []string{
		FormatFloat(float64(s.AvgHeartRate)),
		FormatFloat(float64(s.StdHeartRate)),
		FormatFloat(float64(s.AvgAltitude)),
		FormatFloat(float64(s.StdAltitude)),
		FormatFloat(s.Distance),
		s.Duration,
		FormatFloat(float64(s.AvgSpeed)),
		FormatFloat(float64(s.StdSpeed)),
	}
}

func sampleRecord(s models.Sample) []string {
	return []string{
		s.FileName,
		s.DirName,
		s.Time,
		FormatFloat(s.TimeInHours()),
		FormatFloat(s.TimeInSeconds),
		FormatFloat(s.Latitude),
		FormatFloat(s.Longitude),
		FormatFloat(s.Altitude),
		FormatFloat(s.Distance),
		FormatFloat(s.HeartRate),
	}
}

// FormatFloat renders v in its shortest exact form; NaN and infinities
// become an empty field
func FormatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
