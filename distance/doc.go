// Package distance provides distance and similarity primitives over
// fixed-dimension vectors, intended as the building block for the k-d tree
// search in this module.
//
// Two families are exposed:
//
//   - Portable metrics: SquaredEuclidean (generic over float32/float64) and
//     DotProduct. These work for any dimensionality.
//   - Accelerated dot products: DotProductAccelerated and its 3/4-dimension
//     and aligned variants, backed by 128-bit SSE4.1 kernels on amd64 with a
//     transparent portable fallback everywhere else.
//
// Note that DotProduct historically reduces by subtraction and returns the
// negation of the conventional dot product, while the accelerated kernels
// compute the conventional value. See the function documentation before
// mixing the two.
package distance
