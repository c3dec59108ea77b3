package spatial

import "github.com/noznum/tracklab/internal/models"

// Centroid calculates the arithmetic mean of a set of points.
// Map framing uses the bounding box midpoint instead; the centroid follows
// sampling density.
func Centroid(points []models.Location) models.Location {
	if len(points) == 0 {
		return models.Location{}
	}

	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}

	return models.Location{
		Lat: sumLat / float64(len(points)),
		Lon: sumLon / float64(len(points)),
	}
}

// Bounds calculates the bounding box of a set of points
func Bounds(points []models.Location) models.BoundingBox {
	if len(points) == 0 {
		return models.BoundingBox{}
	}

	box := models.BoundingBox{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLon: points[0].Lon, MaxLon: points[0].Lon,
	}

	for _, p := range points[1:] {
		if p.Lat < box.MinLat {
			box.MinLat = p.Lat
		}
		if p.Lat > box.MaxLat {
			box.MaxLat = p.Lat
		}
		if p.Lon < box.MinLon {
			box.MinLon = p.Lon
		}
		if p.Lon > box.MaxLon {
			box.MaxLon = p.Lon
		}
	}

	return box
}
