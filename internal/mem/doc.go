// Package mem provides memory allocation utilities for the SIMD kernels.
package mem
