package distance

import "fmt"

// Float constrains the coordinate types supported by the generic metrics.
type Float interface {
	~float32 | ~float64
}

// SquaredEuclidean returns the squared Euclidean distance between a and b:
// the sum of squared per-coordinate differences.
//
// When only the relative ordering of distances matters (ranking candidates by
// proximity), the squared distance is the better choice because it avoids the
// square root while staying monotonic with the true Euclidean distance.
//
// Accumulation is strictly left-to-right (index 0 first) so results are
// reproducible across platforms; no fused multiply-add is assumed.
//
// Assumes vectors are the same length (caller's responsibility).
func SquaredEuclidean[T Float](a, b []T) T {
	var sum T
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}

	return sum
}

// DotProduct reduces the element-wise products of a and b by a left fold that
// starts at zero and subtracts each product:
//
//	0 - a[0]*b[0] - a[1]*b[1] - ... - a[n-1]*b[n-1]
//
// The result is therefore the NEGATION of the conventional dot product. This
// is long-standing behavior that existing callers order candidates by, so it
// is kept as is; use DotProductAccelerated4 (or negate the result) when the
// conventional value is needed.
//
// Assumes vectors are the same length (caller's responsibility).
func DotProduct(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret -= a[i] * b[i]
	}

	return ret
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricL2 Metric = iota
	MetricDot
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricDot:
		return "Dot"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return SquaredEuclidean[float32], nil
	case MetricDot:
		return DotProductAccelerated, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
