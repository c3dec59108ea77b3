package models

import (
	"errors"
	"fmt"
)

// Selection and persistence sentinel errors
var (
	ErrEmptyLabel        = errors.New("label must not be empty")
	ErrInvalidLabel      = errors.New("label is not usable as a file name")
	ErrInvalidTransition = errors.New("operation not allowed in current selection state")
	ErrRowOutOfRange     = errors.New("row index out of range")
	ErrNoTrack           = errors.New("no track loaded")
	ErrSegmentExists     = errors.New("segment with this label already exists")
	ErrSegmentNotFound   = errors.New("segment not found")
	ErrUnknownSeries     = errors.New("unknown series")
)

// IOError reports a track file that could not be read
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// MalformedTrackError reports a track whose structure does not match the
// expected schema: a missing element, column or unparsable value
type MalformedTrackError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedTrackError) Error() string {
	msg := "malformed track"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedTrackError) Unwrap() error {
	return e.Err
}

// EmptyTrackError reports a track with zero samples
type EmptyTrackError struct {
	Source string
}

func (e *EmptyTrackError) Error() string {
	if e.Source == "" {
		return "track has no samples"
	}
	return fmt.Sprintf("track %s has no samples", e.Source)
}

// DegenerateSegmentError reports a segment with zero duration or zero distance
type DegenerateSegmentError struct {
	StartRow int
	EndRow   int
	Reason   string
}

func (e *DegenerateSegmentError) Error() string {
	return fmt.Sprintf("degenerate segment [%d, %d]: %s", e.StartRow, e.EndRow, e.Reason)
}
