package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoredQueuePopsLowestFirst(t *testing.T) {
	q := NewScoredQueue[string](4)
	q.Push("b", 2)
	q.Push("a", 1)
	q.Push("c", 3)

	assert.Equal(t, []string{"a", "b", "c"}, q.Drain(10))
	assert.Empty(t, q.Drain(1))
}

func TestScoredQueueTiesKeepPushOrder(t *testing.T) {
	q := NewScoredQueue[int](0)
	for i := range 5 {
		q.Push(i, 7)
	}
	q.Push(99, 1)
	assert.Equal(t, []int{99, 0, 1}, q.Drain(3))
	assert.Equal(t, []int{2, 3, 4}, q.Drain(3))
}

func TestDrainNonPositive(t *testing.T) {
	q := NewScoredQueue[int](0)
	q.Push(1, 1)
	assert.Empty(t, q.Drain(0))
	assert.NotNil(t, q.Drain(-1))
	assert.Equal(t, []int{1}, q.Drain(1))
}
