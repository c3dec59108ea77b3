package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/noznum/tracklab/internal/models"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Distance returns the great-circle distance between two locations in meters
func Distance(a, b models.Location) float64 {
	return HaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon)
}

// PathLength sums the great-circle distance between consecutive points
func PathLength(points []models.Location) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	prev := s2.LatLngFromDegrees(points[0].Lat, points[0].Lon)
	for _, p := range points[1:] {
		cur := s2.LatLngFromDegrees(p.Lat, p.Lon)
		total += prev.Distance(cur).Radians() * EarthRadiusMeters
		prev = cur
	}
	return total
}

// Nearest returns the index of the point closest to target by great-circle
// distance, the lowest index on ties, or -1 for no points
func Nearest(points []models.Location, target models.Location) int {
	best := -1
	var bestAngle float64
	t := s2.LatLngFromDegrees(target.Lat, target.Lon)
	for i, p := range points {
		d := t.Distance(s2.LatLngFromDegrees(p.Lat, p.Lon)).Radians()
		if best < 0 || d < bestAngle {
			best, bestAngle = i, d
		}
	}
	return best
}
