package nearest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noznum/tracklab/internal/models"
)

func TestNearestReflexive(t *testing.T) {
	xs := []float64{0, 1, 3, 7, 7.5, 12, 20, 33.3}
	idx := New(xs)
	require.False(t, idx.Degraded())

	for i, x := range xs {
		assert.Equal(t, i, idx.Nearest(x), "row %d", i)
	}
}

func TestNearest(t *testing.T) {
	idx := New([]float64{0, 10, 20, 30, 40})

	tests := []struct {
		name string
		x    float64
		want int
	}{
		{"below range", -5, 0},
		{"above range", 100, 4},
		{"closer to lower", 13, 1},
		{"closer to upper", 17, 2},
		{"tie goes to lower row", 15, 1},
		{"fractional", 29.9999, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.Nearest(tt.x))
		})
	}
}

func TestNearestDuplicates(t *testing.T) {
	idx := New([]float64{0, 10, 10, 10, 20})

	assert.Equal(t, 1, idx.Nearest(10))
	assert.Equal(t, 1, idx.Nearest(11))
	assert.Equal(t, 1, idx.Nearest(15))
	assert.Equal(t, 4, idx.Nearest(16))

	tail := New([]float64{0, 5, 5})
	assert.Equal(t, 1, tail.Nearest(9))
}

func TestNearestEmpty(t *testing.T) {
	idx := New(nil)
	assert.Equal(t, -1, idx.Nearest(3))
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, -1, New([]float64{1, 2}).Nearest(math.NaN()))
}

func TestNearestDegraded(t *testing.T) {
	// Elapsed time of a track that crosses midnight
	xs := []float64{0, 9, -86385, -86375}
	idx := New(xs)
	require.True(t, idx.Degraded())

	for i, x := range xs {
		assert.Equal(t, i, idx.Nearest(x))
	}
	assert.Equal(t, 1, idx.Nearest(50))
	assert.Equal(t, 3, idx.Nearest(-80000))

	v, err := idx.Interpolate(8, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestInterpolate(t *testing.T) {
	idx := New([]float64{0, 10, 20, 30, 40})
	alt := []float64{100, 105, 110, 108, 102}

	tests := []struct {
		x    float64
		want float64
	}{
		{-1, 100},
		{0, 100},
		{5, 102.5},
		{20, 110},
		{25, 109},
		{37.5, 103.5},
		{40, 102},
		{99, 102},
	}

	for _, tt := range tests {
		got, err := idx.Interpolate(tt.x, alt)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "x=%v", tt.x)
	}

	_, err := idx.Interpolate(5, alt[:3])
	assert.Error(t, err)

	_, err = New(nil).Interpolate(5, nil)
	assert.ErrorIs(t, err, models.ErrRowOutOfRange)
}

func TestNearestLocation(t *testing.T) {
	points := []models.Location{{Lat: 48.10, Lon: -1.60}, {Lat: 48.11, Lon: -1.61}, {Lat: 48.12, Lon: -1.62}}

	assert.Equal(t, 1, NearestLocation(points, models.Location{Lat: 48.111, Lon: -1.609}))
	assert.Equal(t, -1, NearestLocation(nil, models.Location{}))
}
