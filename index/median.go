package index

import (
	"golang.org/x/exp/constraints"
)

// MedianFinder keeps track of the median of a growing set of values. The lower half lives in a max-heap, the upper half
// in a min-heap and the lower half holds at most one value more than the upper half.
type MedianFinder[T constraints.Float | constraints.Integer] struct {
	lower *priorityQueue[T]
	upper *priorityQueue[T]
}

func NewMedianFinder[T constraints.Float | constraints.Integer]() *MedianFinder[T] {
	return &MedianFinder[T]{
		lower: newPriorityQueue[T](func(a T, b T) bool { return a > b }),
		upper: newPriorityQueue[T](func(a T, b T) bool { return a < b }),
	}
}

func (m *MedianFinder[T]) Add(value T) {
	if m.lower.Len() == 0 || value <= m.lower.Peek() {
		m.lower.Push(value)
	} else {
		m.upper.Push(value)
	}

	if m.lower.Len() > m.upper.Len()+1 {
		m.upper.Push(m.lower.Pop())
	} else if m.upper.Len() > m.lower.Len() {
		m.lower.Push(m.upper.Pop())
	}
}

func (m *MedianFinder[T]) Len() int {
	return m.lower.Len() + m.upper.Len()
}

// Median returns the lower median, which is always one of the added values. The bool is false when no value has been
// added yet.
func (m *MedianFinder[T]) Median() (T, bool) {
	if m.lower.Len() == 0 {
		var zero T
		return zero, false
	}
	return m.lower.Peek(), true
}

// MedianValue returns the average of both middle values for even counts and the middle value otherwise.
func (m *MedianFinder[T]) MedianValue() (float64, bool) {
	if m.lower.Len() == 0 {
		return 0, false
	}
	if m.lower.Len() == m.upper.Len() {
		return (float64(m.lower.Peek()) + float64(m.upper.Peek())) / 2, true
	}
	return float64(m.lower.Peek()), true
}
