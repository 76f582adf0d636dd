// Package eventloop provides the GUI-thread task queue.
//
// Any goroutine may Post a closure; exactly one goroutine (the GUI thread)
// drains the queue with Run or RunPending. Closures run in the order they
// were posted.
package eventloop

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Queue is an unbounded FIFO of closures.
//
// Post never blocks: a producer must not wait on a consumer that may itself
// be waiting for the producer to finish.
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	wake   chan struct{}
	closed bool

	posted atomic.Uint64
	ran    atomic.Uint64
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
	}
}

// Post appends fn to the queue. Posting to a closed queue drops fn without
// running it, so anything fn owns is left to the garbage collector.
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		slog.Debug("eventloop: post after close, task dropped")
		return
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
	q.posted.Add(1)

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// RunPending runs every task queued at the time of the call and returns how
// many ran. Tasks posted while running are left for the next call.
func (q *Queue) RunPending() int {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	for i, fn := range tasks {
		fn()
		tasks[i] = nil
	}
	q.ran.Add(uint64(len(tasks)))
	return len(tasks)
}

// Run drains the queue on the calling goroutine until ctx is cancelled or
// the queue is closed. Tasks still queued at close are run before Run
// returns.
func (q *Queue) Run(ctx context.Context) error {
	for {
		q.RunPending()

		q.mu.Lock()
		closed := q.closed
		q.mu.Unlock()
		if closed {
			q.RunPending()
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
		}
	}
}

// Close stops accepting tasks and wakes Run.
//
// Close the queue only after every producer has stopped posting (for a
// liveview.Controller, after its Close), then call RunPending once so the
// tasks still queued run and release what they own.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Stats returns how many tasks were posted and how many have run.
func (q *Queue) Stats() (posted, ran uint64) {
	return q.posted.Load(), q.ran.Load()
}
