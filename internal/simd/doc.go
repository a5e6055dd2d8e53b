// Package simd provides the SSE4.1-accelerated 4-lane dot-product kernels
// used by the distance package. This is an internal package - external users
// should use the distance package.
//
// The accelerated path is compiled in on amd64 only (build tag noasm disables
// it) and selected at init time when the CPU reports SSE4.1. Every other
// platform uses the portable fallback. The active implementation can be
// forced with the KDGO_SIMD environment variable ("generic" or "sse4").
package simd
