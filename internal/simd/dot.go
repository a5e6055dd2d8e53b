package simd

import "unsafe"

var (
	dot4Impl        = dot4Generic
	dot4AlignedImpl = dot4Generic
)

// Dot4 computes the 4-term dot product of the first four elements of a and b.
//
// SAFETY: This function assumes len(a) >= 4 and len(b) >= 4.
// It does NOT perform bounds checks for performance reasons.
// Callers MUST ensure lengths hold to avoid buffer over-reads (especially with SIMD).
// Exactly four floats are read from each slice.
func Dot4(a, b []float32) float32 {
	return dot4Impl(a, b)
}

// Dot4Aligned is Dot4 for slices whose backing arrays are 16-byte aligned.
//
// SAFETY: In addition to the Dot4 length contract, both backing arrays MUST
// start on a 16-byte boundary (see internal/mem.AllocAlignedFloat32). The
// kernel does not and cannot verify this; a misaligned input faults the
// process. There is no recoverable error path.
func Dot4Aligned(a, b []float32) float32 {
	return dot4AlignedImpl(a, b)
}

func dot4Generic(a, b []float32) float32 {
	lanes := [4]float32{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
	lanes[0] = lanes[0] + lanes[1] + lanes[2] + lanes[3]

	// Route the result through the register-image extraction so the scalar
	// leaves this package the same way on every platform.
	v := *(*Vec128)(unsafe.Pointer(&lanes)) //nolint:gosec // unsafe is required for bit reinterpretation
	return Lane0(&v)
}
