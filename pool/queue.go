package pool

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Pool.Submit after Close has begun: no further
// tasks are accepted while the pool is shutting down.
var ErrClosed = errors.New("pool: shutting down, task rejected")

// sharedQueue is the state shared between the submitters and the workers: a
// stack of pending tasks plus a cancelled flag, guarded by a hand-rolled
// mutex+cond monitor.
//
// This deliberately does not reuse monitor.Synchronizer: the generic
// synchronizer wakes every satisfiable sleeper, but a task hand-off must
// wake exactly one consumer (see add).
type sharedQueue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	cancelled bool
	tasks     []Task
}

func newSharedQueue() *sharedQueue {
	q := &sharedQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// add appends a task and wakes one blocked consumer. Waking all of them
// would be a thundering herd racing to pop a single task.
func (q *sharedQueue) add(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cancelled {
		return ErrClosed
	}

	q.tasks = append(q.tasks, task)
	// Problem: here Signal is correct, in cancel Broadcast is. It is not a
	// wait-site decision.
	q.cond.Signal()
	return nil
}

// cancel disallows further submissions and wakes all blocked consumers, so
// every worker observes the cancellation and exits.
func (q *sharedQueue) cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.cancelled = true
	q.cond.Broadcast()
}

// awaitTaskOrCancellation blocks until a task is available or the queue is
// cancelled. Cancellation wins over pending tasks: once the flag is set,
// queued but unstarted tasks are never handed out. The most recently
// submitted task is served first.
func (q *sharedQueue) awaitTaskOrCancellation() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.cancelled {
			return nil, false
		}

		if n := len(q.tasks); n > 0 {
			task := q.tasks[n-1]
			q.tasks[n-1] = nil
			q.tasks = q.tasks[:n-1]
			return task, true
		}

		q.cond.Wait()
	}
}
