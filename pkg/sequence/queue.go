package sequence

import "container/heap"

type scoredItem[T any] struct {
	value T
	score float64
	seq   uint64
}

type scoredHeap[T any] struct {
	items []scoredItem[T]
}

func (h *scoredHeap[T]) Len() int {
	return len(h.items)
}

func (h *scoredHeap[T]) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.score != b.score {
		return a.score < b.score
	}
	return a.seq < b.seq
}

func (h *scoredHeap[T]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *scoredHeap[T]) Push(x any) {
	h.items = append(h.items, x.(scoredItem[T]))
}

func (h *scoredHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[0 : n-1]
	return item
}

// ScoredQueue pops the lowest score first. Equal scores pop in the order
// they were pushed.
type ScoredQueue[T any] struct {
	h    scoredHeap[T]
	next uint64
}

func NewScoredQueue[T any](sizeHint int) *ScoredQueue[T] {
	q := &ScoredQueue[T]{h: scoredHeap[T]{items: make([]scoredItem[T], 0, max(sizeHint, 0))}}
	heap.Init(&q.h)
	return q
}

func (q *ScoredQueue[T]) Push(value T, score float64) {
	heap.Push(&q.h, scoredItem[T]{value: value, score: score, seq: q.next})
	q.next++
}

// Drain pops up to n values, lowest score first. The result is never nil.
func (q *ScoredQueue[T]) Drain(n int) []T {
	out := make([]T, 0, min(max(n, 0), q.h.Len()))
	for len(out) < n && q.h.Len() > 0 {
		out = append(out, heap.Pop(&q.h).(scoredItem[T]).value)
	}
	return out
}
