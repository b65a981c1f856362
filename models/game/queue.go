package game

import "container/list"

// matchQueue is the FIFO of players awaiting an opponent. It carries
// no lock of its own: the Registry owns it and guards every call, so
// pop-and-pair is atomic with respect to registration and disconnect.
type matchQueue struct {
	order   *list.List
	waiting map[*Player]*list.Element
}

func newMatchQueue() *matchQueue {
	return &matchQueue{
		order:   list.New(),
		waiting: make(map[*Player]*list.Element),
	}
}

func (q *matchQueue) push(p *Player) {
	q.waiting[p] = q.order.PushBack(p)
}

// pop removes and returns the head of the queue, nil when empty.
func (q *matchQueue) pop() *Player {
	front := q.order.Front()
	if front == nil {
		return nil
	}

	p := front.Value.(*Player)
	q.order.Remove(front)
	delete(q.waiting, p)
	return p
}

// remove deletes a queued player by identity in O(1).
func (q *matchQueue) remove(p *Player) bool {
	elem, ok := q.waiting[p]
	if !ok {
		return false
	}

	q.order.Remove(elem)
	delete(q.waiting, p)
	return true
}

func (q *matchQueue) len() int {
	return q.order.Len()
}
