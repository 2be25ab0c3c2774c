// Package queue provides the two execution contexts the measurement engine
// relies on: a serial background queue that owns scene-graph mutation, and a
// mailbox drained by the foreground (frame) goroutine.
package queue

import (
	"sync"
)

// Serial runs submitted functions one at a time, in submission order, on a
// single goroutine. Submission never blocks.
type Serial struct {
	label string

	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []func()
	running bool
	closed  bool
	done    chan struct{}
}

func NewSerial(label string) *Serial {
	q := &Serial{
		label: label,
		done:  make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.loop()
	return q
}

func (q *Serial) Label() string { return q.label }

func (q *Serial) loop() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.running = true
		q.mu.Unlock()

		task()

		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
	}
}

// Async enqueues fn. It returns false if the queue has been closed.
func (q *Serial) Async(fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, fn)
	q.cond.Signal()
	return true
}

// Sync enqueues fn and waits for it to finish. A nil fn waits for everything
// queued before the call. Calling Sync from a task on the same queue deadlocks.
func (q *Serial) Sync(fn func()) bool {
	finished := make(chan struct{})
	ok := q.Async(func() {
		defer close(finished)
		if fn != nil {
			fn()
		}
	})
	if !ok {
		return false
	}
	<-finished
	return true
}

// Pending is the number of queued or running tasks.
func (q *Serial) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.tasks)
	if q.running {
		n++
	}
	return n
}

// Close stops accepting work, lets queued tasks finish, and waits for the worker.
func (q *Serial) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.done
}
