package nearest

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/noznum/tracklab/internal/models"
	"github.com/noznum/tracklab/internal/spatial"
)

// Index answers nearest-row queries over an x series, normally the elapsed
// time of a track. A non-decreasing series is searched in O(log n). A series
// that decreases somewhere (a track crossing UTC midnight) is scanned in O(n)
// and the index reports itself as degraded.
type Index struct {
	xs       []float64
	degraded bool
}

// New builds an index over xs. The slice is kept, not copied.
func New(xs []float64) *Index {
	idx := &Index{xs: xs}
	for i := 1; i < len(xs); i++ {
		if xs[i] < xs[i-1] {
			idx.degraded = true
			log.Printf("[NearestIndex] series decreases at row %d (%.0f -> %.0f), falling back to linear scan",
				i, xs[i-1], xs[i])
			break
		}
	}
	return idx
}

// Len returns the number of rows
func (idx *Index) Len() int {
	return len(idx.xs)
}

// Degraded reports whether lookups use the linear scan
func (idx *Index) Degraded() bool {
	return idx.degraded
}

// Nearest returns the row whose x value is closest to x by absolute
// difference. Ties go to the lowest row. It returns -1 for an empty index or
// a NaN query.
func (idx *Index) Nearest(x float64) int {
	n := len(idx.xs)
	if n == 0 || math.IsNaN(x) {
		return -1
	}
	if idx.degraded {
		return idx.scan(x)
	}

	// First row with xs[i] >= x
	i := sort.SearchFloat64s(idx.xs, x)
	if i == n {
		return idx.first(n - 1)
	}
	if i == 0 {
		return 0
	}

	prev, next := i-1, i
	if x-idx.xs[prev] <= idx.xs[next]-x {
		return idx.first(prev)
	}
	return next
}

// first returns the lowest row holding the same value as row i
func (idx *Index) first(i int) int {
	return sort.SearchFloat64s(idx.xs[:i+1], idx.xs[i])
}

func (idx *Index) scan(x float64) int {
	best, bestDiff := 0, math.Abs(idx.xs[0]-x)
	for i := 1; i < len(idx.xs); i++ {
		if d := math.Abs(idx.xs[i] - x); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}

// Interpolate returns the y value at x, linearly interpolated between the two
// rows bracketing x. Queries outside the series are clamped to the first or
// last value. A degraded index returns the nearest row's value.
func (idx *Index) Interpolate(x float64, ys []float64) (float64, error) {
	n := len(idx.xs)
	if len(ys) != n {
		return 0, fmt.Errorf("series length %d does not match index length %d", len(ys), n)
	}
	if n == 0 {
		return 0, fmt.Errorf("interpolate on empty series: %w", models.ErrRowOutOfRange)
	}
	if math.IsNaN(x) {
		return math.NaN(), nil
	}
	if idx.degraded {
		return ys[idx.scan(x)], nil
	}

	i := sort.SearchFloat64s(idx.xs, x)
	if i == n {
		return ys[n-1], nil
	}
	if idx.xs[i] == x || i == 0 {
		return ys[i], nil
	}

	x0, x1 := idx.xs[i-1], idx.xs[i]
	progress := (x - x0) / (x1 - x0)
	return ys[i-1] + progress*(ys[i]-ys[i-1]), nil
}

// NearestLocation returns the row of the point closest to loc by great-circle
// distance. Ties go to the lowest row; -1 when points is empty.
func NearestLocation(points []models.Location, loc models.Location) int {
	return spatial.Nearest(points, loc)
}
