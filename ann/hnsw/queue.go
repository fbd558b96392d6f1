package hnsw

import "container/heap"

type item struct {
	node uint32
	dist float32
}

func (a item) closer(b item) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.node < b.node
}

// queue is a binary heap of items. With farthest set the top is the
// farthest item, otherwise the closest.
type queue struct {
	items    []item
	farthest bool
}

var _ heap.Interface = (*queue)(nil)

func (q *queue) Len() int { return len(q.items) }

func (q *queue) Less(i, j int) bool {
	if q.farthest {
		return q.items[j].closer(q.items[i])
	}
	return q.items[i].closer(q.items[j])
}

func (q *queue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *queue) Push(x any) { q.items = append(q.items, x.(item)) }

func (q *queue) Pop() any {
	n := len(q.items)
	it := q.items[n-1]
	q.items = q.items[:n-1]
	return it
}

func (q *queue) top() item { return q.items[0] }

func (q *queue) push(it item) { heap.Push(q, it) }

func (q *queue) pop() item { return heap.Pop(q).(item) }

func (q *queue) reset() { q.items = q.items[:0] }
