package kdtree

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/kdgo/distance"
	"github.com/hupe1980/kdgo/internal/queue"
)

type searchOptions struct {
	allow *roaring.Bitmap
}

// SearchOption configures a single search operation.
type SearchOption func(*searchOptions)

// WithAllowList restricts a search to points whose ids are present in the
// bitmap. A nil bitmap means no restriction.
func WithAllowList(allow *roaring.Bitmap) SearchOption {
	return func(o *searchOptions) {
		o.allow = allow
	}
}

// Nearest returns the single closest point to query.
func (t *Tree) Nearest(query []float32, opts ...SearchOption) (Match, error) {
	res, err := t.KNearest(query, 1, opts...)
	if err != nil {
		return Match{}, err
	}
	if len(res) == 0 {
		// Possible with an allow list that matches nothing.
		return Match{}, ErrEmptyTree
	}
	return res[0], nil
}

// KNearest returns up to k closest points to query, sorted by ascending
// distance. Fewer than k matches are returned when the tree (or the allow
// list) holds fewer eligible points.
func (t *Tree) KNearest(query []float32, k int, opts ...SearchOption) ([]Match, error) {
	if len(query) != t.dim {
		return nil, &ErrDimensionMismatch{Expected: t.dim, Actual: len(query)}
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if t.Len() == 0 {
		return nil, ErrEmptyTree
	}

	var o searchOptions
	for _, opt := range opts {
		opt(&o)
	}

	h := queue.NewMax(k)
	t.knn(t.root, query, k, h, o.allow)

	// Draining the max-heap yields matches worst-first.
	res := make([]Match, h.Len())
	for i := len(res) - 1; i >= 0; i-- {
		c, _ := h.Pop()
		res[i] = Match{ID: ID(c.ID), Distance: c.Distance}
	}

	return res, nil
}

func (t *Tree) knn(n *node, query []float32, k int, h *queue.Heap, allow *roaring.Bitmap) {
	if n == nil {
		return
	}

	if n.leaf {
		for _, idx := range n.items {
			id := t.ids[idx]
			if allow != nil && !allow.Contains(uint32(id)) {
				continue
			}
			d := distance.SquaredEuclidean(query, t.point(idx))
			h.PushBounded(queue.Candidate{ID: uint32(id), Distance: d}, k)
		}
		return
	}

	diff := query[n.splitDim] - n.splitVal
	near, far := n.left, n.right
	if diff > 0 {
		near, far = far, near
	}

	t.knn(near, query, k, h, allow)

	// The far subtree can only matter if the splitting plane is closer than
	// the current worst match, or the result set is not full yet.
	if h.Len() < k {
		t.knn(far, query, k, h, allow)
		return
	}
	if worst, ok := h.Top(); ok && diff*diff <= worst.Distance {
		t.knn(far, query, k, h, allow)
	}
}

// Within returns all points whose squared Euclidean distance to query is at
// most radius, sorted by ascending distance. The radius is compared against
// the squared distance, matching the Match.Distance unit.
func (t *Tree) Within(query []float32, radius float32, opts ...SearchOption) ([]Match, error) {
	if len(query) != t.dim {
		return nil, &ErrDimensionMismatch{Expected: t.dim, Actual: len(query)}
	}
	if t.Len() == 0 {
		return nil, ErrEmptyTree
	}

	var o searchOptions
	for _, opt := range opts {
		opt(&o)
	}

	var res []Match
	t.within(t.root, query, radius, o.allow, &res)

	sort.Slice(res, func(i, j int) bool { return res[i].Distance < res[j].Distance })

	return res, nil
}

func (t *Tree) within(n *node, query []float32, radius float32, allow *roaring.Bitmap, res *[]Match) {
	if n == nil {
		return
	}

	if n.leaf {
		for _, idx := range n.items {
			id := t.ids[idx]
			if allow != nil && !allow.Contains(uint32(id)) {
				continue
			}
			if d := distance.SquaredEuclidean(query, t.point(idx)); d <= radius {
				*res = append(*res, Match{ID: id, Distance: d})
			}
		}
		return
	}

	diff := query[n.splitDim] - n.splitVal
	near, far := n.left, n.right
	if diff > 0 {
		near, far = far, near
	}

	t.within(near, query, radius, allow, res)
	if diff*diff <= radius {
		t.within(far, query, radius, allow, res)
	}
}
