package navigation

// Scored is implemented by elements ordered in a MinHeap
type Scored interface {
	Score() float64
}

// MinHeap is a binary min-heap over the elements' own ordering
// Ties break by heap structure, not insertion order (not stable)
type MinHeap[T Scored] struct {
	items []T
}

// NewMinHeap creates a heap with preallocated capacity
func NewMinHeap[T Scored](capacity int) *MinHeap[T] {
	return &MinHeap[T]{items: make([]T, 0, capacity)}
}

func (h *MinHeap[T]) Len() int {
	return len(h.items)
}

// Push inserts an element and sifts it up
func (h *MinHeap[T]) Push(item T) {
	h.items = append(h.items, item)
	i := len(h.items) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].Score() <= h.items[i].Score() {
			break
		}
		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

// Pop removes and returns the minimum-score element
// The second return is false when the heap is empty
func (h *MinHeap[T]) Pop() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	top := h.items[0]
	n := len(h.items)
	h.items[0] = h.items[n-1]
	var zero T
	h.items[n-1] = zero
	h.items = h.items[:n-1]

	// Sift down
	i := 0
	for {
		left := 2*i + 1
		if left >= len(h.items) {
			break
		}
		smallest := left
		if right := left + 1; right < len(h.items) && h.items[right].Score() < h.items[left].Score() {
			smallest = right
		}
		if h.items[i].Score() <= h.items[smallest].Score() {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
	return top, true
}

// Reset empties the heap, retaining capacity
func (h *MinHeap[T]) Reset() {
	clear(h.items)
	h.items = h.items[:0]
}
