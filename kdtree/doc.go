// Package kdtree implements an exact nearest-neighbor index over
// fixed-dimension float32 vectors.
//
// The tree is bucketed: leaves hold up to a configurable number of points and
// are split at the midpoint of their widest axis when they overflow. Point
// data lives in a single flat backing slice; tree nodes only hold indices
// into it.
//
// Distances are squared Euclidean throughout - the axis-distance pruning the
// search relies on is only valid for that metric, and ranking by squared
// distance orders candidates identically to true Euclidean distance.
//
// The tree is not synchronized. Callers that mutate and search concurrently
// must provide their own locking (see the root kdgo package).
package kdtree
