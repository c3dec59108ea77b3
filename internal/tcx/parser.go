package tcx

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/noznum/tracklab/internal/models"
)

// Source identifies where parsed samples came from
type Source struct {
	Path     string
	FileName string
	DirName  string
}

// SourceFromPath derives provenance from a file path
func SourceFromPath(path string) Source {
	return Source{
		Path:     path,
		FileName: filepath.Base(path),
		DirName:  filepath.Dir(path),
	}
}

// Parse reads a TCX file into an ordered sequence of samples
func Parse(path string) ([]models.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &models.IOError{Path: path, Err: err}
	}
	defer file.Close()

	return ParseReader(file, SourceFromPath(path))
}

// ParseReader parses TCX from an io.Reader. Trackpoints are returned in
// document order. Every Lap/Track of the first activity is concatenated,
// so a multi-lap file yields the whole activity rather than its first lap.
// Non-finite numbers are rejected as malformed.
func ParseReader(r io.Reader, src Source) ([]models.Sample, error) {
	er := &errReader{r: r}
	var doc database
	if err := xml.NewDecoder(er).Decode(&doc); err != nil {
		if er.err != nil {
			return nil, &models.IOError{Path: src.Path, Err: er.err}
		}
		return nil, malformed(src, "invalid XML", err)
	}

	if doc.XMLName.Space != Namespace {
		return nil, malformed(src, fmt.Sprintf("unexpected namespace %q", doc.XMLName.Space), nil)
	}
	if doc.Activities == nil || len(doc.Activities.Activity) == 0 {
		return nil, malformed(src, "missing Activities/Activity", nil)
	}

	act := doc.Activities.Activity[0]
	if len(act.Laps) == 0 {
		return nil, malformed(src, "missing Activity/Lap", nil)
	}

	var tracks []track
	for _, l := range act.Laps {
		tracks = append(tracks, l.Tracks...)
	}
	if len(tracks) == 0 {
		return nil, malformed(src, "missing Lap/Track", nil)
	}

	var samples []models.Sample
	index := 0
	for _, t := range tracks {
		for _, tp := range t.Points {
			if tp.empty() {
				index++
				continue
			}
			s, err := convert(tp, src)
			if err != nil {
				return nil, malformed(src, fmt.Sprintf("trackpoint %d", index), err)
			}
			samples = append(samples, s)
			index++
		}
	}

	return samples, nil
}

func convert(tp trackpoint, src Source) (models.Sample, error) {
	s := models.Sample{
		FileName: src.FileName,
		DirName:  src.DirName,
		Speed:    models.NaN(),
	}

	if tp.Time == nil {
		return s, missing("Time")
	}
	s.Time = strings.TrimSpace(*tp.Time)
	secs, err := SecondsOfDay(s.Time)
	if err != nil {
		return s, err
	}
	s.TimeInSeconds = secs

	if tp.Position == nil {
		return s, missing("Position")
	}
	if s.Latitude, err = number("Position/LatitudeDegrees", tp.Position.Latitude); err != nil {
		return s, err
	}
	if s.Longitude, err = number("Position/LongitudeDegrees", tp.Position.Longitude); err != nil {
		return s, err
	}
	if s.Altitude, err = number("AltitudeMeters", tp.Altitude); err != nil {
		return s, err
	}
	if s.Distance, err = number("DistanceMeters", tp.Distance); err != nil {
		return s, err
	}
	if tp.HeartRate == nil {
		return s, missing("HeartRateBpm")
	}
	if s.HeartRate, err = number("HeartRateBpm/Value", tp.HeartRate.Value); err != nil {
		return s, err
	}

	return s, nil
}

// SecondsOfDay converts the HH:MM:SS part of a YYYY-MM-DDTHH:MM:SS[.fff]Z
// timestamp to seconds since midnight. Fractional seconds and the date are
// dropped, so a track crossing UTC midnight restarts at zero.
func SecondsOfDay(timestamp string) (float64, error) {
	if len(timestamp) < 19 || timestamp[10] != 'T' {
		return 0, fmt.Errorf("invalid timestamp %q", timestamp)
	}
	clock, err := time.Parse("15:04:05", timestamp[11:19])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", timestamp, err)
	}
	return float64(clock.Hour()*3600 + clock.Minute()*60 + clock.Second()), nil
}

func number(field string, raw *string) (float64, error) {
	if raw == nil {
		return 0, missing(field)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q", field, *raw)
	}
	return v, nil
}

func missing(field string) error {
	return fmt.Errorf("missing required element %s", field)
}

func malformed(src Source, reason string, err error) error {
	return &models.MalformedTrackError{Path: src.Path, Reason: reason, Err: err}
}

// errReader remembers a failure of the underlying reader so it can be told
// apart from XML syntax errors
type errReader struct {
	r   io.Reader
	err error
}

func (e *errReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && err != io.EOF {
		e.err = err
	}
	return n, err
}
