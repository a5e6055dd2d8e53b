package kdtree

import (
	"errors"
	"fmt"
)

// DefaultBucketSize is the leaf capacity used when no option overrides it.
const DefaultBucketSize = 16

var (
	// ErrEmptyTree is returned by searches on a tree with no points.
	ErrEmptyTree = errors.New("empty tree")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")
)

// ErrDimensionMismatch indicates a vector/tree dimensionality mismatch.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidDimension indicates an invalid configured dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// ID identifies a point within a tree. IDs are caller-assigned and strictly
// 32-bit so they can double as allow-list bitmap entries.
type ID uint32

// Match is a single search result.
type Match struct {
	ID ID
	// Distance is the squared Euclidean distance to the query.
	Distance float32
}

// Tree is a bucketed k-d tree over float32 points of a fixed dimension.
type Tree struct {
	dim        int
	bucketSize int
	root       *node

	// Flat point storage: point i occupies coords[i*dim : (i+1)*dim].
	coords []float32
	ids    []ID
}

type node struct {
	leaf bool

	// Interior nodes: points with coord <= splitVal on splitDim go left.
	splitDim    int
	splitVal    float32
	left, right *node

	// Leaves: indices into the tree's flat storage.
	items []int32
}

// Option configures a Tree.
type Option func(*Tree)

// WithBucketSize sets the leaf capacity. Values below 1 are ignored.
func WithBucketSize(size int) Option {
	return func(t *Tree) {
		if size >= 1 {
			t.bucketSize = size
		}
	}
}

// New creates an empty tree for points of the given dimension.
func New(dim int, opts ...Option) (*Tree, error) {
	if dim < 1 {
		return nil, &ErrInvalidDimension{Dimension: dim}
	}

	t := &Tree{
		dim:        dim,
		bucketSize: DefaultBucketSize,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Dim returns the dimensionality of the tree's points.
func (t *Tree) Dim() int { return t.dim }

// Len returns the number of points in the tree.
func (t *Tree) Len() int { return len(t.ids) }

// BucketSize returns the configured leaf capacity.
func (t *Tree) BucketSize() int { return t.bucketSize }

// Add inserts a point under the given id. The id is not required to be
// unique; duplicate ids simply produce duplicate matches.
func (t *Tree) Add(point []float32, id ID) error {
	if len(point) != t.dim {
		return &ErrDimensionMismatch{Expected: t.dim, Actual: len(point)}
	}

	idx := int32(len(t.ids))
	t.coords = append(t.coords, point...)
	t.ids = append(t.ids, id)

	if t.root == nil {
		t.root = &node{leaf: true}
	}

	n := t.root
	for !n.leaf {
		if point[n.splitDim] <= n.splitVal {
			n = n.left
		} else {
			n = n.right
		}
	}

	n.items = append(n.items, idx)
	if len(n.items) > t.bucketSize {
		t.split(n)
	}

	return nil
}

func (t *Tree) point(idx int32) []float32 {
	off := int(idx) * t.dim
	return t.coords[off : off+t.dim]
}

// split turns an overflowing leaf into an interior node with two leaves,
// cutting the widest axis at its midpoint. A leaf whose points are all
// identical cannot be split and is left oversized.
func (t *Tree) split(n *node) {
	axis, minV, maxV := t.widestAxis(n.items)
	if minV == maxV {
		return
	}

	splitVal := minV + (maxV-minV)/2

	var left, right []int32
	for _, idx := range n.items {
		if t.point(idx)[axis] <= splitVal {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	// Float midpoint can collapse onto an endpoint for near-equal bounds;
	// keep the oversized leaf rather than create an empty child.
	if len(left) == 0 || len(right) == 0 {
		return
	}

	n.leaf = false
	n.splitDim = axis
	n.splitVal = splitVal
	n.left = &node{leaf: true, items: left}
	n.right = &node{leaf: true, items: right}
	n.items = nil
}

// widestAxis returns the axis with the largest coordinate spread over the
// given points, along with that axis's bounds.
func (t *Tree) widestAxis(items []int32) (axis int, minV, maxV float32) {
	mins := make([]float32, t.dim)
	maxs := make([]float32, t.dim)
	for d := 0; d < t.dim; d++ {
		mins[d] = t.point(items[0])[d]
		maxs[d] = mins[d]
	}

	for _, idx := range items[1:] {
		p := t.point(idx)
		for d := 0; d < t.dim; d++ {
			if p[d] < mins[d] {
				mins[d] = p[d]
			}
			if p[d] > maxs[d] {
				maxs[d] = p[d]
			}
		}
	}

	axis = 0
	spread := maxs[0] - mins[0]
	for d := 1; d < t.dim; d++ {
		if s := maxs[d] - mins[d]; s > spread {
			axis, spread = d, s
		}
	}

	return axis, mins[axis], maxs[axis]
}
