package service

import (
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"github.com/noznum/tracklab/internal/models"
	"github.com/noznum/tracklab/internal/nearest"
	"github.com/noznum/tracklab/internal/render"
	"github.com/noznum/tracklab/internal/selection"
	"github.com/noznum/tracklab/internal/stats"
	"github.com/noznum/tracklab/internal/storage"
	"github.com/noznum/tracklab/internal/table"
	"github.com/noznum/tracklab/internal/tcx"
	"github.com/noznum/tracklab/internal/track"
)

// Catalog records saved segments. The CSV files stay the source of truth;
// a catalog failure is reported but does not undo a save.
type Catalog interface {
	SaveSegment(entry *models.SegmentEntry) error
	GetSegments(filter models.SegmentFilter) ([]models.SegmentEntry, int64, error)
	GetSegmentByUUID(uuid string) (*models.SegmentEntry, error)
}

// session is everything bound to one loaded track. A load replaces it whole.
type session struct {
	path     string
	dataset  *track.Dataset
	index    *nearest.Index
	selector *selection.Selector
	lastRow  int
}

// TrackService owns the loaded track, its selector and the segment store
type TrackService struct {
	mu      sync.Mutex
	store   *storage.Store
	catalog Catalog
	zoom    int
	current *session
}

// NewTrackService creates a track service. catalog may be nil.
func NewTrackService(store *storage.Store, catalog Catalog, zoom int) *TrackService {
	return &TrackService{
		store:   store,
		catalog: catalog,
		zoom:    render.ClampZoom(zoom),
	}
}

// HoverResult describes the sample under a cursor position
type HoverResult struct {
	Row       int           `json:"row"`
	Query     float64       `json:"query"`
	Sample    models.Sample `json:"sample"`
	Degraded  bool          `json:"degraded"` // Linear scan over a non-monotonic series
	HeartRate float64       `json:"interpolated_heart_rate"`
	Altitude  float64       `json:"interpolated_altitude"`
}

// ClickResult describes a clicked row and its effect on the selection
type ClickResult struct {
	Row       int                `json:"row"`
	Sample    models.Sample      `json:"sample"`
	Marker    models.Location    `json:"marker"`
	Selection selection.Snapshot `json:"selection"`
}

// SaveResult describes a persisted segment
type SaveResult struct {
	Segment      models.Segment       `json:"segment"`
	Path         string               `json:"path"`
	StatsPath    string               `json:"stats_path"`
	Stats        models.StatsRecord   `json:"stats"`
	Entry        *models.SegmentEntry `json:"entry,omitempty"`
	CatalogError string               `json:"catalog_error,omitempty"`
}

// Load reads a track file and makes it the current track. Files ending in
// .csv are read as flat tables, anything else as TCX. On failure the
// previous track stays current.
func (s *TrackService) Load(path string) (track.Summary, error) {
	var samples []models.Sample
	var err error
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		samples, err = table.ReadSamplesFile(path)
	} else {
		samples, err = tcx.Parse(path)
	}
	if err != nil {
		log.Printf("[TrackService] Failed to load %s: %v", path, err)
		return track.Summary{}, err
	}

	return s.LoadSamples(path, samples)
}

// LoadSamples makes already-parsed samples the current track
func (s *TrackService) LoadSamples(source string, samples []models.Sample) (track.Summary, error) {
	dataset, err := track.Load(samples)
	if err != nil {
		var empty *models.EmptyTrackError
		if errors.As(err, &empty) {
			empty.Source = source
		}
		log.Printf("[TrackService] Failed to load %s: %v", source, err)
		return track.Summary{}, err
	}

	sess := &session{
		path:     source,
		dataset:  dataset,
		index:    nearest.New(dataset.Elapsed()),
		selector: selection.New(dataset.Len()),
		lastRow:  -1,
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	sum := dataset.Summary()
	log.Printf("[TrackService] Loaded %s: %d rows, %.0fs, %.0fm", source, sum.Rows, sum.Duration, sum.DeviceDistance)
	return sum, nil
}

func (s *TrackService) session() (*session, error) {
	if s.current == nil {
		return nil, models.ErrNoTrack
	}
	return s.current, nil
}

// Current returns the summary of the current track
func (s *TrackService) Current() (track.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session()
	if err != nil {
		return track.Summary{}, err
	}
	return sess.dataset.Summary(), nil
}

// MapView returns the map framing of the current track. zoom 0 uses the
// configured default; other values are clamped.
func (s *TrackService) MapView(zoom int) (render.MapView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session()
	if err != nil {
		return render.MapView{}, err
	}
	if zoom == 0 {
		zoom = s.zoom
	}
	return render.MapView{
		Title:  filepath.Base(sess.path),
		Center: sess.dataset.MapCenter(),
		Zoom:   render.ClampZoom(zoom),
		Route:  sess.dataset.Route(),
		Marker: sess.dataset.Marker(),
	}, nil
}

// Curve returns the named series against elapsed time, marking the last
// clicked row
func (s *TrackService) Curve(name string) (render.Curve, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session()
	if err != nil {
		return render.Curve{}, err
	}
	if name == track.SeriesElapsed || name == track.SeriesTimeInSeconds {
		return render.Curve{}, fmt.Errorf("%q is not plotted against elapsed time: %w", name, models.ErrUnknownSeries)
	}
	ys, err := sess.dataset.Series(name)
	if err != nil {
		return render.Curve{}, err
	}

	return render.Curve{
		Title:    fmt.Sprintf("%s - %s", filepath.Base(sess.path), name),
		Name:     name,
		X:        sess.dataset.Elapsed(),
		Y:        ys,
		XLabel:   "Elapsed (s)",
		YLabel:   seriesLabel(name),
		Selected: sess.lastRow,
	}, nil
}

// Hover resolves a cursor position on the elapsed axis to the nearest row.
// It never moves the marker or advances the selection.
func (s *TrackService) Hover(x float64) (HoverResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session()
	if err != nil {
		return HoverResult{}, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return HoverResult{}, fmt.Errorf("hover position %v: %w", x, models.ErrRowOutOfRange)
	}

	row := sess.index.Nearest(x)
	sample, err := sess.dataset.Sample(row)
	if err != nil {
		return HoverResult{}, err
	}

	result := HoverResult{Row: row, Query: x, Sample: sample, Degraded: sess.index.Degraded()}
	hr, err := sess.dataset.Series(track.SeriesHeartRate)
	if err != nil {
		return HoverResult{}, err
	}
	if result.HeartRate, err = sess.index.Interpolate(x, hr); err != nil {
		return HoverResult{}, err
	}
	alt, err := sess.dataset.Series(track.SeriesAltitude)
	if err != nil {
		return HoverResult{}, err
	}
	if result.Altitude, err = sess.index.Interpolate(x, alt); err != nil {
		return HoverResult{}, err
	}
	return result, nil
}

// Click selects an exact row: the marker moves there and, when a selection
// is collecting clicks, the row is registered with it. A degenerate second
// click returns the result together with the DegenerateSegmentError.
func (s *TrackService) Click(row int) (ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session()
	if err != nil {
		return ClickResult{}, err
	}
	return s.click(sess, row)
}

func (s *TrackService) click(sess *session, row int) (ClickResult, error) {
	sample, err := sess.dataset.MarkerAt(row)
	if err != nil {
		return ClickResult{}, err
	}
	sess.lastRow = row

	result := ClickResult{Row: row, Sample: sample, Marker: sess.dataset.Marker()}
	if sess.selector.State() != selection.CollectingClicks {
		result.Selection = sess.selector.Snapshot()
		return result, nil
	}

	snap, err := sess.selector.Click(row)
	result.Selection = snap
	return result, err
}

// Locate clicks the row closest to loc by great-circle distance
func (s *TrackService) Locate(loc models.Location) (ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session()
	if err != nil {
		return ClickResult{}, err
	}
	row := nearest.NearestLocation(sess.dataset.Route(), loc)
	return s.click(sess, row)
}

// BeginSelection starts a new selection on the current track
func (s *TrackService) BeginSelection() (selection.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session()
	if err != nil {
		return selection.Snapshot{}, err
	}
	if err := sess.selector.Begin(); err != nil {
		return sess.selector.Snapshot(), err
	}
	return sess.selector.Snapshot(), nil
}

// ConfirmLabel names the selection. Labels that cannot name a file or that
// are already saved are rejected and the selection keeps waiting.
func (s *TrackService) ConfirmLabel(label string) (selection.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session()
	if err != nil {
		return selection.Snapshot{}, err
	}
	if sess.selector.State() == selection.AwaitingLabel {
		if err := storage.ValidateLabel(label); err != nil {
			return sess.selector.Snapshot(), err
		}
		if s.store.HasSegment(label) {
			return sess.selector.Snapshot(), fmt.Errorf("%q: %w", strings.TrimSpace(label), models.ErrSegmentExists)
		}
	}
	if err := sess.selector.ConfirmLabel(label); err != nil {
		return sess.selector.Snapshot(), err
	}
	return sess.selector.Snapshot(), nil
}

// Selection returns the selection state of the current track
func (s *TrackService) Selection() (selection.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session()
	if err != nil {
		return selection.Snapshot{}, err
	}
	return sess.selector.Snapshot(), nil
}

// CancelSelection abandons the selection in progress
func (s *TrackService) CancelSelection() (selection.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session()
	if err != nil {
		return selection.Snapshot{}, err
	}
	sess.selector.Cancel()
	return sess.selector.Snapshot(), nil
}

// SaveSelection computes statistics for the completed selection and persists
// the segment table and the statistics row. A degenerate segment sends the
// selection back to collecting clicks. A persistence failure keeps the
// selection complete so the save can be retried.
func (s *TrackService) SaveSelection() (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session()
	if err != nil {
		return SaveResult{}, err
	}

	picked, ok := sess.selector.Segment()
	if !ok {
		return SaveResult{}, fmt.Errorf("save while %s: %w", sess.selector.State(), models.ErrInvalidTransition)
	}

	seg, err := sess.dataset.Segment(picked.StartRow, picked.EndRow, picked.Label)
	if err != nil {
		return SaveResult{}, err
	}
	rows, err := sess.dataset.SegmentRows(seg)
	if err != nil {
		return SaveResult{}, err
	}

	sum := sess.dataset.Summary()
	rec, err := stats.Compute(rows, sess.dataset.Samples(), stats.Provenance{
		FileName: sum.FileName,
		DirName:  sum.DirName,
		Label:    seg.Label,
		StartRow: seg.StartRow,
		EndRow:   seg.EndRow,
	})
	if err != nil {
		var degenerate *models.DegenerateSegmentError
		if errors.As(err, &degenerate) {
			if rejectErr := sess.selector.Reject(); rejectErr != nil {
				log.Printf("[TrackService] Failed to reset selection: %v", rejectErr)
			}
		}
		return SaveResult{}, err
	}

	path, err := s.store.AppendSegment(rows, seg.Label)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to save segment %s: %w", seg.Label, err)
	}
	if err := s.store.AppendStats(rec); err != nil {
		if rmErr := s.store.RemoveSegment(seg.Label); rmErr != nil {
			log.Printf("[TrackService] Failed to roll back %s: %v", path, rmErr)
		}
		return SaveResult{}, fmt.Errorf("failed to save stats for %s: %w", seg.Label, err)
	}

	result := SaveResult{Segment: seg, Path: path, StatsPath: s.store.StatsPath(), Stats: rec}
	if s.catalog != nil {
		entry := &models.SegmentEntry{
			Label:       seg.Label,
			FileName:    rec.FileName,
			DirName:     rec.DirName,
			StartRow:    seg.StartRow,
			EndRow:      seg.EndRow,
			SegmentPath: path,
			Distance:    seg.Distance,
			Duration:    seg.Duration,
			Stats:       rec,
		}
		if err := s.catalog.SaveSegment(entry); err != nil {
			log.Printf("[TrackService] Failed to catalog segment %s: %v", seg.Label, err)
			result.CatalogError = err.Error()
		} else {
			result.Entry = entry
		}
	}

	if err := sess.selector.Done(); err != nil {
		log.Printf("[TrackService] Failed to finish selection: %v", err)
	}
	log.Printf("[TrackService] Saved segment %s rows [%d, %d] (%d rows)", seg.Label, seg.StartRow, seg.EndRow, seg.Len())
	return result, nil
}

// ListSegments returns saved segments from the catalog
func (s *TrackService) ListSegments(filter models.SegmentFilter) (*models.SegmentListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}

	if s.catalog == nil {
		return &models.SegmentListResponse{Data: []models.SegmentEntry{}, Page: filter.Page, PageSize: filter.PageSize}, nil
	}

	segments, total, err := s.catalog.GetSegments(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get segments: %w", err)
	}

	return &models.SegmentListResponse{
		Data:       segments,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}, nil
}

// GetSegment returns one catalogued segment
func (s *TrackService) GetSegment(uuid string) (*models.SegmentEntry, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("%s: %w", uuid, models.ErrSegmentNotFound)
	}

	entry, err := s.catalog.GetSegmentByUUID(uuid)
	if err != nil {
		return nil, fmt.Errorf("failed to get segment: %w", err)
	}
	if entry == nil {
		return nil, fmt.Errorf("%s: %w", uuid, models.ErrSegmentNotFound)
	}
	return entry, nil
}

func seriesLabel(name string) string {
	switch name {
	case track.SeriesHeartRate:
		return "Heart rate (bpm)"
	case track.SeriesAltitude:
		return "Altitude (m)"
	case track.SeriesDistance:
		return "Distance (m)"
	case track.SeriesLatitude:
		return "Latitude"
	case track.SeriesLongitude:
		return "Longitude"
	default:
		return name
	}
}
