package selection

import (
	"fmt"
	"strings"
	"sync"

	"github.com/noznum/tracklab/internal/models"
)

// State is a selector state
type State int

const (
	Idle State = iota
	AwaitingLabel
	CollectingClicks
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingLabel:
		return "awaiting_label"
	case CollectingClicks:
		return "collecting_clicks"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a point-in-time copy of the selector
type Snapshot struct {
	State   State           `json:"state"`
	Label   string          `json:"label,omitempty"`
	Pending []int           `json:"pending"`
	Segment *models.Segment `json:"segment,omitempty"`
}

// Selector is the two-click segment selection state machine for one loaded
// track. Every chart view of the track shares the same *Selector, so a click
// on any curve advances the same selection.
type Selector struct {
	mu      sync.Mutex
	rows    int
	state   State
	label   string
	pending []int
	segment models.Segment
}

// New returns an idle selector for a track with the given number of rows
func New(rows int) *Selector {
	return &Selector{rows: rows, pending: make([]int, 0, 2)}
}

// Begin starts a new selection
func (s *Selector) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return s.invalid("begin")
	}
	s.state = AwaitingLabel
	return nil
}

// ConfirmLabel names the selection. A blank label is rejected and the
// selector keeps waiting for one.
func (s *Selector) ConfirmLabel(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != AwaitingLabel {
		return s.invalid("confirm label")
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return models.ErrEmptyLabel
	}

	s.label = label
	s.pending = s.pending[:0]
	s.state = CollectingClicks
	return nil
}

// Click registers a point click on row. The second click completes the
// selection with the rows in ascending order. Clicking the same row twice
// yields a DegenerateSegmentError and clears the pending clicks.
func (s *Selector) Click(row int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != CollectingClicks {
		return s.snapshot(), s.invalid("click")
	}
	if row < 0 || row >= s.rows {
		return s.snapshot(), fmt.Errorf("row %d of %d: %w", row, s.rows, models.ErrRowOutOfRange)
	}

	if len(s.pending) == 0 {
		s.pending = append(s.pending, row)
		return s.snapshot(), nil
	}

	first := s.pending[0]
	if first == row {
		s.pending = s.pending[:0]
		return s.snapshot(), &models.DegenerateSegmentError{
			StartRow: row,
			EndRow:   row,
			Reason:   "start and end are the same row",
		}
	}

	start, end := first, row
	if start > end {
		start, end = end, start
	}
	s.pending = append(s.pending, row)
	s.segment = models.Segment{StartRow: start, EndRow: end, Label: s.label}
	s.state = Complete
	return s.snapshot(), nil
}

// Reject discards a completed or half-made selection and waits for two new
// clicks under the same label
func (s *Selector) Reject() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Complete && s.state != CollectingClicks {
		return s.invalid("reject")
	}
	s.pending = s.pending[:0]
	s.segment = models.Segment{}
	s.state = CollectingClicks
	return nil
}

// Done finishes a completed selection once it is persisted
func (s *Selector) Done() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Complete {
		return s.invalid("done")
	}
	s.reset()
	return nil
}

// Cancel abandons any selection in progress
func (s *Selector) Cancel() {
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
}

// State returns the current state
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Segment returns the completed segment, if any
func (s *Selector) Segment() (models.Segment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segment, s.state == Complete
}

// Snapshot returns a copy of the selector's state
func (s *Selector) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Selector) snapshot() Snapshot {
	snap := Snapshot{
		State:   s.state,
		Label:   s.label,
		Pending: append([]int{}, s.pending...),
	}
	if s.state == Complete {
		seg := s.segment
		snap.Segment = &seg
	}
	return snap
}

func (s *Selector) reset() {
	s.state = Idle
	s.label = ""
	s.pending = s.pending[:0]
	s.segment = models.Segment{}
}

func (s *Selector) invalid(op string) error {
	return fmt.Errorf("%s while %s: %w", op, s.state, models.ErrInvalidTransition)
}
