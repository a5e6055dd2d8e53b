// Package queue provides a value-based binary heap of search candidates.
// It backs the k-nearest collection in the kdtree package: a bounded max-heap
// keeps the k closest matches seen so far, with the worst at the top for
// cheap eviction and pruning.
package queue

// Candidate is one scored entry in the heap. Value-based on purpose: no
// pointer indirection, no per-push allocation.
type Candidate struct {
	ID       uint32
	Distance float32
}

// Heap holds Candidates ordered by Distance.
type Heap struct {
	max   bool // true = max-heap (worst candidate on top)
	items []Candidate
}

// NewMin initializes a heap with the smallest Distance on top.
func NewMin(capacity int) *Heap {
	return &Heap{max: false, items: make([]Candidate, 0, capacity)}
}

// NewMax initializes a heap with the largest Distance on top.
func NewMax(capacity int) *Heap {
	return &Heap{max: true, items: make([]Candidate, 0, capacity)}
}

// Len returns the number of candidates in the heap.
func (h *Heap) Len() int { return len(h.items) }

// Top returns the top candidate without removing it.
func (h *Heap) Top() (Candidate, bool) {
	if len(h.items) == 0 {
		return Candidate{}, false
	}
	return h.items[0], true
}

// Push inserts a candidate while maintaining the heap invariant.
func (h *Heap) Push(c Candidate) {
	h.items = append(h.items, c)
	h.siftUp(len(h.items) - 1)
}

// Pop removes and returns the top candidate.
func (h *Heap) Pop() (Candidate, bool) {
	n := len(h.items)
	if n == 0 {
		return Candidate{}, false
	}
	root := h.items[0]
	last := h.items[n-1]
	h.items[n-1] = Candidate{} // zero out for GC
	h.items = h.items[:n-1]
	if n-1 > 0 {
		h.items[0] = last
		h.siftDown(0)
	}
	return root, true
}

// PushBounded inserts c into a heap capped at limit elements. When the heap
// is full, c replaces the top only if it sorts after it (for a max-heap:
// only if c is closer than the current worst). Returns true if c was kept.
func (h *Heap) PushBounded(c Candidate, limit int) bool {
	if limit <= 0 {
		return false
	}
	if len(h.items) < limit {
		h.Push(c)
		return true
	}
	top := h.items[0]
	if h.max && c.Distance >= top.Distance {
		return false
	}
	if !h.max && c.Distance <= top.Distance {
		return false
	}
	h.items[0] = c
	h.siftDown(0)
	return true
}

// Reset clears the heap for reuse without freeing the backing slice.
func (h *Heap) Reset() {
	clear(h.items)
	h.items = h.items[:0]
}

func (h *Heap) less(i, j int) bool {
	if h.max {
		return h.items[i].Distance > h.items[j].Distance
	}
	return h.items[i].Distance < h.items[j].Distance
}

func (h *Heap) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !h.less(i, p) {
			return
		}
		h.items[i], h.items[p] = h.items[p], h.items[i]
		i = p
	}
}

func (h *Heap) siftDown(i int) {
	n := len(h.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && h.less(r, l) {
			best = r
		}
		if !h.less(best, i) {
			return
		}
		h.items[i], h.items[best] = h.items[best], h.items[i]
		i = best
	}
}
