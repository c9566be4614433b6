package engine

import "sync/atomic"

type node struct {
	next atomic.Pointer[node]
	cmd  Command
}

// queue is an unbounded multi-producer single-consumer FIFO. push never
// blocks and may be called from any goroutine; pop must only be called
// from the audio goroutine, where it neither blocks nor allocates.
type queue struct {
	head atomic.Pointer[node]
	tail *node
	stub node
}

func newQueue() *queue {
	q := &queue{}
	q.head.Store(&q.stub)
	q.tail = &q.stub
	return q
}

func (q *queue) push(c Command) {
	n := &node{cmd: c}
	prev := q.head.Swap(n)
	prev.next.Store(n)
}

// pop returns the oldest command. A push still in flight is seen by a
// later pop.
func (q *queue) pop() (Command, bool) {
	next := q.tail.next.Load()
	if next == nil {
		return Command{}, false
	}
	q.tail = next
	c := next.cmd
	next.cmd = Command{}
	return c, true
}
