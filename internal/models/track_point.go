package models

import "math"

// Sample represents one recorded trackpoint of an activity
type Sample struct {
	Time           string  `json:"time"`            // Format: 2023-04-01T09:12:44.000Z
	TimeInSeconds  float64 `json:"time_in_seconds"` // Seconds of day taken from HH:MM:SS of Time
	ElapsedSeconds float64 `json:"elapsed_seconds"` // TimeInSeconds minus the first row's value
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Altitude       float64 `json:"altitude"`   // Meters
	Distance       float64 `json:"distance"`   // Cumulative meters as reported by the device
	HeartRate      float64 `json:"heart_rate"` // Beats per minute

	// Provenance
	FileName string `json:"file_name,omitempty"`
	DirName  string `json:"dir_name,omitempty"`

	// Set once the row belongs to a labelled segment
	Label string `json:"label,omitempty"`
	Speed Float  `json:"speed"` // Meters per second, NaN until derived
}

// TimeInHours returns the seconds-of-day value expressed in hours
func (s Sample) TimeInHours() float64 {
	return s.TimeInSeconds / 3600
}

// Location returns the sample's coordinates
func (s Sample) Location() Location {
	return Location{Lat: s.Latitude, Lon: s.Longitude}
}

// HasSpeed reports whether a speed value has been derived for the sample
func (s Sample) HasSpeed() bool {
	return !math.IsNaN(float64(s.Speed))
}

// Location is a latitude/longitude pair in degrees
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is the min/max extent of a track's coordinates
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Center returns the midpoint of the box
func (b BoundingBox) Center() Location {
	return Location{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}
