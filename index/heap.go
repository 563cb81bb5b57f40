package index

// priorityQueue is a binary heap. The item for which "before" returns true against all other items is at the top.
type priorityQueue[T any] struct {
	items  []T
	before func(a T, b T) bool
}

func newPriorityQueue[T any](before func(a T, b T) bool) *priorityQueue[T] {
	return &priorityQueue[T]{
		before: before,
	}
}

func (q *priorityQueue[T]) Len() int {
	return len(q.items)
}

func (q *priorityQueue[T]) Push(item T) {
	q.items = append(q.items, item)
	q.up(len(q.items) - 1)
}

// Peek returns the top item without removing it. The queue must not be empty.
func (q *priorityQueue[T]) Peek() T {
	return q.items[0]
}

// Pop removes and returns the top item. The queue must not be empty.
func (q *priorityQueue[T]) Pop() T {
	top := q.items[0]
	last := len(q.items) - 1

	q.items[0] = q.items[last]
	var zero T
	q.items[last] = zero
	q.items = q.items[:last]

	if len(q.items) > 0 {
		q.down(0)
	}
	return top
}

// Items returns the items in heap order, not sorted.
func (q *priorityQueue[T]) Items() []T {
	return q.items
}

func (q *priorityQueue[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.before(q.items[i], q.items[parent]) {
			return
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *priorityQueue[T]) down(i int) {
	n := len(q.items)
	for {
		top := i
		left := 2*i + 1
		right := left + 1

		if left < n && q.before(q.items[left], q.items[top]) {
			top = left
		}
		if right < n && q.before(q.items[right], q.items[top]) {
			top = right
		}
		if top == i {
			return
		}

		q.items[i], q.items[top] = q.items[top], q.items[i]
		i = top
	}
}
