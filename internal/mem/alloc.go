package mem

import (
	"unsafe"
)

// Alignment is the byte alignment required for 128-bit SSE loads (16 bytes).
const Alignment = 16

// AllocAligned allocates a byte slice of the given size with 16-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 16.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size == 0 {
		return nil
	}

	// Allocate size + alignment to ensure we can find an aligned offset.
	totalSize := size + Alignment
	buf := make([]byte, totalSize)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// AllocAlignedFloat32 allocates a float32 slice of the given size with 16-byte alignment.
// The returned slice satisfies the aligned-kernel caller contract
// (see distance.DotProductAcceleratedAligned).
func AllocAlignedFloat32(size int) []float32 {
	if size == 0 {
		return nil
	}

	byteSize := size * 4
	byteSlice := AllocAligned(byteSize)

	ptr := unsafe.Pointer(&byteSlice[0])       //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*float32)(ptr), size) //nolint:gosec // unsafe is required for memory alignment
}

// IsAligned reports whether p's data pointer satisfies the 16-byte alignment
// required by the aligned kernel.
func IsAligned(p []float32) bool {
	if len(p) == 0 {
		return false
	}
	return uintptr(unsafe.Pointer(&p[0]))&(Alignment-1) == 0 //nolint:gosec // unsafe is required for alignment check
}
