package bench

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Post after Close.
var ErrQueueClosed = errors.New("bench: queue closed")

// Queue runs posted tasks one at a time, in order, on the goroutine that
// calls Run. It plays the role of a UI thread for headless runs.
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
	wake   chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Post enqueues task. Tasks run exactly once, in FIFO order.
func (q *Queue) Post(task func()) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()

	q.signal()
	return nil
}

// Close stops accepting tasks. Run returns once the tasks already queued
// have run.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signal()
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Run executes tasks until the queue is closed and drained, or ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		task, closed := q.next()
		if task != nil {
			task()
			continue
		}
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
		}
	}
}

func (q *Queue) next() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return nil, q.closed
	}
	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return task, q.closed
}
