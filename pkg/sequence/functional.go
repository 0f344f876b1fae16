package sequence

import (
	"iter"
	"sort"
)

// Iterator is a generic, immutable, chainable iterator for any type T.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From creates a new Iterator over a slice of T.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for _, v := range data {
				if !yield(v) {
					return
				}
			}
		},
	}
}

// Collect exhausts the iterator and returns a slice of all elements.
// The result is never nil.
func (i *Iterator[T]) Collect() []T {
	out := make([]T, 0)
	i.seq(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Sort returns a new Iterator with elements stably sorted by less.
// Elements that compare equal keep their input order.
func (i *Iterator[T]) Sort(less func(a, b T) bool) *Iterator[T] {
	data := i.Collect()
	sort.SliceStable(data, func(a, b int) bool {
		return less(data[a], data[b])
	})
	return From(data)
}

// Filter returns a new Iterator containing only elements that satisfy pred.
func (i *Iterator[T]) Filter(pred func(T) bool) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			i.seq(func(v T) bool {
				if pred(v) {
					return yield(v)
				}
				return true
			})
		},
	}
}

// Take returns a new Iterator with at most the first n elements.
// A non-positive n yields everything.
func (i *Iterator[T]) Take(n int) *Iterator[T] {
	if n <= 0 {
		return i
	}
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			count := 0
			i.seq(func(v T) bool {
				if count >= n {
					return false
				}
				count++
				return yield(v)
			})
		},
	}
}

// Count exhausts the iterator and returns the number of elements.
func (i *Iterator[T]) Count() int {
	n := 0
	i.seq(func(T) bool {
		n++
		return true
	})
	return n
}

// Map applies fn to every element. It is a function rather than a method
// because methods cannot introduce type parameters.
func Map[T, R any](i *Iterator[T], fn func(T) R) *Iterator[R] {
	return &Iterator[R]{
		seq: func(yield func(R) bool) {
			i.seq(func(v T) bool {
				return yield(fn(v))
			})
		},
	}
}

// Mean returns the arithmetic mean of value(v) over the iterator and whether
// any element was seen.
func Mean[T any](i *Iterator[T], value func(T) float64) (float64, bool) {
	var sum float64
	n := 0
	i.seq(func(v T) bool {
		sum += value(v)
		n++
		return true
	})
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
