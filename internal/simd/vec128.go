package simd

import "unsafe"

// Vec128 is the raw byte image of a 128-bit SIMD register: four float32
// lanes, lane 0 first in memory.
type Vec128 [16]byte

// Lane0 reinterprets v as four float32 lanes and returns lane 0.
//
// The bit pattern is taken as-is; no value conversion is applied. This is the
// only place the register image is reinterpreted, and it must stay that way:
// routing the extraction through arithmetic would re-quiet signalling NaNs
// and change bit patterns.
func Lane0(v *Vec128) float32 {
	return *(*float32)(unsafe.Pointer(v)) //nolint:gosec // unsafe is required for bit reinterpretation
}
