package library

import "sync"

// Queue is an unbounded multi-producer single-consumer FIFO queue. Pushes
// never wait on the consumer: a pump goroutine buffers the backlog in
// memory, so slow rendering can never stall a download task.
type Queue[T any] struct {
	mu     sync.Mutex
	closed bool
	in     chan T
	out    chan T
}

// NewQueue creates a queue and starts its pump goroutine.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{
		in:  make(chan T),
		out: make(chan T),
	}

	go q.pump()

	return q
}

// Push enqueues an item. Pushing to a closed queue is a no-op: late
// producers on a canceled run have nowhere to report to.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.in <- item
}

// Close stops intake. The consumer still receives the whole backlog before
// the receive channel is closed.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.in)
}

// Receive returns the consumer side of the queue.
func (q *Queue[T]) Receive() <-chan T {
	return q.out
}

// pump shuttles items from producers to the consumer, buffering whatever
// the consumer has not caught up with yet.
func (q *Queue[T]) pump() {
	var backlog []T

	for {
		if len(backlog) == 0 {
			item, ok := <-q.in
			if !ok {
				close(q.out)

				return
			}

			backlog = append(backlog, item)
		}

		select {
		case item, ok := <-q.in:
			if !ok {
				for _, pending := range backlog {
					q.out <- pending
				}

				close(q.out)

				return
			}

			backlog = append(backlog, item)
		case q.out <- backlog[0]:
			backlog = backlog[1:]
		}
	}
}
