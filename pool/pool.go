// Package pool provides a minimal fixed-size worker pool: a monitor-guarded
// stack of pending tasks consumed by long-lived worker goroutines.
//
// Tasks are served most-recently-submitted first. That is a deliberate
// scheduling policy, not an accident of the data structure: callers must not
// rely on FIFO fairness.
//
// Shutdown is an orderly drain: Close disallows further submissions, lets
// every in-flight task run to completion, discards tasks that were queued
// but never started, and returns once every worker has stopped.
package pool

import (
	"fmt"

	"warden/log"
)

// Pool is a fixed-size worker pool. Create one with New; the workers start
// immediately and live until Close.
type Pool struct {
	name    string
	queue   *sharedQueue
	workers []*worker
}

// New creates a pool named name with the given number of worker goroutines.
// At least one worker is required.
func New(name string, workers int) (*Pool, error) {
	if workers < 1 {
		return nil, fmt.Errorf("pool %q: at least 1 worker is required, got %d", name, workers)
	}

	p := &Pool{
		name:  name,
		queue: newSharedQueue(),
	}

	for id := 0; id < workers; id++ {
		w := newWorker(id, p.queue)
		p.workers = append(p.workers, w)
		go w.main()
	}

	log.Debugf("pool %q: started %d workers", name, workers)
	return p, nil
}

// Name returns the pool's name.
func (p *Pool) Name() string { return p.name }

// Submit schedules task for asynchronous execution. Returns ErrClosed if the
// pool is shutting down.
func (p *Pool) Submit(task Task) error {
	return p.queue.add(task)
}

// Close disallows further submissions, waits for every in-flight task to run
// to completion, and stops all workers. Queued tasks that have not started
// are discarded. Safe to call more than once.
func (p *Pool) Close() error {
	p.queue.cancel()
	for _, w := range p.workers {
		w.awaitStopped()
	}
	log.Debugf("pool %q: all workers stopped", p.name)
	return nil
}
