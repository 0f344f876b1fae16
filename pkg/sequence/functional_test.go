package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSortTake(t *testing.T) {
	got := From([]int{5, 3, 8, 1, 9, 2}).
		Filter(func(v int) bool { return v > 1 }).
		Sort(func(a, b int) bool { return a > b }).
		Take(3).
		Collect()
	assert.Equal(t, []int{9, 8, 5}, got)
}

func TestSortIsStable(t *testing.T) {
	type pair struct{ key, order int }
	in := []pair{{1, 0}, {0, 1}, {1, 2}, {0, 3}}
	got := From(in).Sort(func(a, b pair) bool { return a.key < b.key }).Collect()
	assert.Equal(t, []pair{{0, 1}, {0, 3}, {1, 0}, {1, 2}}, got)
}

func TestTakeNonPositiveYieldsAll(t *testing.T) {
	assert.Len(t, From([]int{1, 2, 3}).Take(0).Collect(), 3)
}

func TestCollectEmptyIsNotNil(t *testing.T) {
	got := From([]string{}).Collect()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMapCountMean(t *testing.T) {
	it := Map(From([]int{1, 2, 3}), func(v int) float64 { return float64(v) * 10 })
	mean, ok := Mean(it, func(v float64) float64 { return v })
	assert.True(t, ok)
	assert.InDelta(t, 20.0, mean, 1e-9)

	_, ok = Mean(From([]int{}), func(v int) float64 { return float64(v) })
	assert.False(t, ok)

	assert.Equal(t, 2, From([]int{1, 2, 3}).Filter(func(v int) bool { return v != 2 }).Count())
}
