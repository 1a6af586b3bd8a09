package engine

import (
	"sync"

	"github.com/chris/tock/pkg/models"
)

// write is one queued persistence request. A non-nil flushed marks a flush
// barrier instead of a counter snapshot.
type write struct {
	counter models.Counter
	flushed chan struct{}
}

// writeQueue is an unbounded FIFO drained by a single goroutine, so the
// engine never blocks on storage and writes land in the order they were made
type writeQueue struct {
	mu      sync.Mutex
	items   []write
	stopped bool
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
}

func newWriteQueue() *writeQueue {
	return &writeQueue{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// push appends w. It reports false once the queue has been stopped.
func (q *writeQueue) push(w write) bool {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, w)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

func (q *writeQueue) take() []write {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// run drains the queue with handle until close is called and nothing is left
func (q *writeQueue) run(handle func(write)) {
	defer close(q.done)
	for {
		items := q.take()
		if len(items) == 0 {
			select {
			case <-q.wake:
				continue
			case <-q.stop:
				if items = q.take(); len(items) == 0 {
					return
				}
			}
		}
		for _, w := range items {
			if w.flushed != nil {
				close(w.flushed)
				continue
			}
			handle(w)
		}
	}
}

// close rejects further pushes and waits for everything queued to be handled
func (q *writeQueue) close() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.stopped = true
	q.mu.Unlock()

	close(q.stop)
	<-q.done
}

// flush blocks until every write pushed before it has been handled
func (q *writeQueue) flush() {
	marker := make(chan struct{})
	if !q.push(write{flushed: marker}) {
		return
	}
	<-marker
}
