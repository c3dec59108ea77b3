package models

import "time"

// Segment represents a labelled, user-selected row range of a track
type Segment struct {
	StartRow int    `json:"start_row"` // Inclusive, always <= EndRow
	EndRow   int    `json:"end_row"`   // Inclusive
	Label    string `json:"label"`

	Distance float64 `json:"distance"` // |cumulative distance(end) - cumulative distance(start)|, meters
	Duration float64 `json:"duration"` // |elapsed(end) - elapsed(start)|, seconds
}

// Len returns the number of rows covered by the segment
func (s Segment) Len() int {
	return s.EndRow - s.StartRow + 1
}

// SegmentEntry is a saved segment as recorded in the catalog
type SegmentEntry struct {
	ID          int64  `json:"id" db:"id"`
	UUID        string `json:"uuid" db:"uuid"`
	Label       string `json:"label" db:"label"`
	FileName    string `json:"file_name" db:"file_name"`
	DirName     string `json:"dir_name" db:"dir_name"`
	StartRow    int    `json:"start_row" db:"start_row"`
	EndRow      int    `json:"end_row" db:"end_row"`
	SegmentPath string `json:"segment_path" db:"segment_path"`

	Distance float64 `json:"distance" db:"distance"`
	Duration float64 `json:"duration" db:"duration"`

	Stats StatsRecord `json:"stats" db:"stats_json"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
