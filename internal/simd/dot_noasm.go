//go:build !amd64 || noasm

package simd

// Accelerated is false: no SIMD fast path is compiled in on this platform
// and all kernels use the portable implementation.
const Accelerated = false
