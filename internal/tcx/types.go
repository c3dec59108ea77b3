package tcx

import "encoding/xml"

// Namespace is the default namespace of Garmin Training Center files
const Namespace = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"

// Elements in the default namespace inherit it, so field tags only carry
// local names; the root namespace is checked explicitly after decoding.

type database struct {
	XMLName    xml.Name    `xml:"TrainingCenterDatabase"`
	Activities *activities `xml:"Activities"`
}

type activities struct {
	Activity []activity `xml:"Activity"`
}

type activity struct {
	Sport string `xml:"Sport,attr"`
	ID    string `xml:"Id"`
	Laps  []lap  `xml:"Lap"`
}

type lap struct {
	StartTime string  `xml:"StartTime,attr"`
	Tracks    []track `xml:"Track"`
}

type track struct {
	Points []trackpoint `xml:"Trackpoint"`
}

// trackpoint fields are pointers so a missing element can be told apart
// from a zero value
type trackpoint struct {
	Time      *string    `xml:"Time"`
	Position  *position  `xml:"Position"`
	Altitude  *string    `xml:"AltitudeMeters"`
	Distance  *string    `xml:"DistanceMeters"`
	HeartRate *heartRate `xml:"HeartRateBpm"`

	// Cadence, Extensions and anything else the device emits
	Other []element `xml:",any"`
}

type position struct {
	Latitude  *string `xml:"LatitudeDegrees"`
	Longitude *string `xml:"LongitudeDegrees"`
}

type heartRate struct {
	Value *string `xml:"Value"`
}

type element struct {
	XMLName xml.Name
}

// empty reports whether the trackpoint has no child elements at all.
// Devices emit these around pauses; they carry no sample.
func (tp trackpoint) empty() bool {
	return tp.Time == nil && tp.Position == nil && tp.Altitude == nil &&
		tp.Distance == nil && tp.HeartRate == nil && len(tp.Other) == 0
}
