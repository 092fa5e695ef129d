package eviction

import "container/list"

// queue is a linked list of keys with an index for O(1) removal.
// Front is the next victim.
type queue struct {
	order *list.List
	index map[string]*list.Element
}

func newQueue() queue {
	return queue{order: list.New(), index: make(map[string]*list.Element)}
}

func (q *queue) has(k string) bool {
	_, ok := q.index[k]
	return ok
}

func (q *queue) pushBack(k string) {
	q.index[k] = q.order.PushBack(k)
}

func (q *queue) moveToBack(k string) {
	if el, ok := q.index[k]; ok {
		q.order.MoveToBack(el)
	}
}

func (q *queue) remove(k string) {
	if el, ok := q.index[k]; ok {
		q.order.Remove(el)
		delete(q.index, k)
	}
}

func (q *queue) popFront() string {
	el := q.order.Front()
	if el == nil {
		return ""
	}
	k := q.order.Remove(el).(string)
	delete(q.index, k)
	return k
}

func (q *queue) keys() []string {
	out := make([]string, 0, q.order.Len())
	for el := q.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(string))
	}
	return out
}

func (q *queue) len() int {
	return q.order.Len()
}
