package distance

import "github.com/hupe1980/kdgo/internal/simd"

// Accelerated is true when the SIMD fast path is compiled in (amd64 without
// the noasm tag). It is a build-time constant: callers that must know whether
// the accelerated kernels exist should branch on this, not on a runtime
// check. When false, every accelerated entry point below transparently uses
// the portable implementation.
const Accelerated = simd.Accelerated

// LegacySelfDot3 preserves the historical behavior of the 3-dimensional fast
// path, which pairs a with itself and therefore computes a·a instead of a·b.
// Existing consumers were tuned against that behavior, so it stays the
// default; set to false to compute the cross product a·b.
//
// Not safe to toggle concurrently with calls into this package.
var LegacySelfDot3 = true

// DotProductAccelerated computes a dot product using the SIMD fast path for
// 3- and 4-dimensional float32 vectors.
//
// The dimensionality dispatch is re-checked on every call; exactly one branch
// applies:
//
//   - len(a) == 3: zero-pads to four lanes and uses the unaligned 4-lane
//     kernel (subject to LegacySelfDot3).
//   - len(a) == 4: uses the unaligned 4-lane kernel directly.
//   - otherwise: falls back to the portable DotProduct, including its
//     subtraction-fold semantics.
//
// Assumes vectors are the same length (caller's responsibility).
func DotProductAccelerated(a, b []float32) float32 {
	switch len(a) {
	case 3:
		return DotProductAccelerated3(a, b)
	case 4:
		return DotProductAccelerated4(a, b)
	default:
		return DotProduct(a, b)
	}
}

// DotProductAccelerated3 computes the dot product of two 3-dimensional
// vectors by zero-padding the fourth lane and delegating to the unaligned
// 4-lane kernel. Both slices must have at least 3 elements; exactly three are
// read from each.
//
// While LegacySelfDot3 is set (the default) the result is a·a, not a·b.
func DotProductAccelerated3(a, b []float32) float32 {
	if LegacySelfDot3 {
		b = a
	}

	ap := [4]float32{a[0], a[1], a[2], 0}
	bp := [4]float32{b[0], b[1], b[2], 0}

	return simd.Dot4(ap[:], bp[:])
}

// DotProductAccelerated4 computes the conventional dot product of two
// 4-dimensional vectors using the unaligned 4-lane kernel. Both slices must
// have at least 4 elements; exactly four are read from each.
func DotProductAccelerated4(a, b []float32) float32 {
	return simd.Dot4(a, b)
}

// DotProductAcceleratedAligned is DotProductAccelerated4 using aligned loads.
//
// Both backing arrays MUST start on a 16-byte boundary; use
// mem.AllocAlignedFloat32 to obtain such storage. The precondition is the
// caller's responsibility and is not checked at runtime - violating it is a
// fatal fault, not a recoverable error.
func DotProductAcceleratedAligned(a, b []float32) float32 {
	return simd.Dot4Aligned(a, b)
}
