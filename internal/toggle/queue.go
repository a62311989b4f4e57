package toggle

import (
	"context"
	"sync"
)

// queue is an unbounded count of pending toggles. Toggles carry no payload,
// so a counter is a lossless queue.
type queue struct {
	mu      sync.Mutex
	pending int
	notify  chan struct{}
}

func newQueue() *queue {
	return &queue{notify: make(chan struct{}, 1)}
}

func (q *queue) push() int {
	q.mu.Lock()
	q.pending++
	n := q.pending
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return n
}

// pop consumes one toggle, blocking until one arrives or either context ends.
func (q *queue) pop(ctx, conn context.Context) bool {
	for {
		q.mu.Lock()
		if q.pending > 0 {
			q.pending--
			q.mu.Unlock()
			return true
		}
		q.mu.Unlock()
		select {
		case <-q.notify:
		case <-ctx.Done():
			return false
		case <-conn.Done():
			return false
		}
	}
}
