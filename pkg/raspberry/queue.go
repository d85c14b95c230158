package raspberry

import (
	"sync/atomic"
	"time"

	"freqcount/pkg/port"

	"github.com/facebookgo/clock"
)

// queue hands edge events from the event handler of a line to the single
// goroutine that waits for them.
type queue struct {
	clock clock.Clock
	// c receives the edges from the event handler.
	c chan port.Event
	// head is the event taken from c by wait and not yet read.
	head  port.Event
	ready bool
	// lost counts the edges dropped because c was full.
	lost atomic.Uint64
}

func newQueue(c clock.Clock, size int) *queue {
	return &queue{
		clock: c,
		c:     make(chan port.Event, size),
	}
}

// push adds an event without blocking the event handler.
// It returns false if the queue is full and the event was dropped.
func (q *queue) push(e port.Event) bool {
	select {
	case q.c <- e:
		return true
	default:
		q.lost.Add(1)
		return false
	}
}

// wait blocks up to timeout for a pending event, a negative timeout blocks
// until an event arrives.
func (q *queue) wait(timeout time.Duration) bool {
	if q.ready {
		return true
	}

	select {
	case e := <-q.c:
		q.head, q.ready = e, true
		return true
	default:
	}

	switch {
	case timeout == 0:
		return false
	case timeout < 0:
		q.head, q.ready = <-q.c, true
		return true
	}

	t := q.clock.Timer(timeout)
	defer t.Stop()

	select {
	case e := <-q.c:
		q.head, q.ready = e, true
		return true
	case <-t.C:
		return false
	}
}

// read consumes the pending event.
func (q *queue) read() (port.Event, error) {
	if !q.ready {
		return port.Event{}, ErrNoEvent
	}

	q.ready = false
	return q.head, nil
}

// dropped returns the count of lost edges.
func (q *queue) dropped() uint64 {
	return q.lost.Load()
}
