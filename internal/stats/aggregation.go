package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean. NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// StdDev calculates the sample standard deviation. NaN for fewer than two
// values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	return stat.StdDev(values, nil)
}

// Min returns the minimum value. NaN for an empty slice.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return floats.Min(values)
}

// Max returns the maximum value. NaN for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return floats.Max(values)
}

// Range returns max - min
func Range(values []float64) float64 {
	return Max(values) - Min(values)
}
