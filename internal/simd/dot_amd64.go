//go:build amd64 && !noasm

package simd

import "unsafe"

// Accelerated is true when the SIMD fast path is compiled in. Whether it is
// actually used still depends on the runtime SSE4.1 check in init.
const Accelerated = true

func init() {
	if ActiveISA() == SSE4 {
		dot4Impl = dot4SSE
		dot4AlignedImpl = dot4SSEAligned
	}
}

//go:noescape
func dotSSE(a, b, out unsafe.Pointer)

//go:noescape
func dotSSEAligned(a, b, out unsafe.Pointer)

func dot4SSE(a, b []float32) float32 {
	var v Vec128
	dotSSE(unsafe.Pointer(&a[0]), unsafe.Pointer(&b[0]), unsafe.Pointer(&v))
	return Lane0(&v)
}

func dot4SSEAligned(a, b []float32) float32 {
	var v Vec128
	dotSSEAligned(unsafe.Pointer(&a[0]), unsafe.Pointer(&b[0]), unsafe.Pointer(&v))
	return Lane0(&v)
}
