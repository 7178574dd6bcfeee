package pool

import (
	"sync"

	"warden/log"
)

type workerState int

const (
	workerCreated workerState = iota
	workerStarted
	workerStopped
)

func (s workerState) String() string {
	switch s {
	case workerCreated:
		return "created"
	case workerStarted:
		return "started"
	case workerStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// worker consumes tasks from the shared queue on its own goroutine. It
// transitions started to stopped exactly once, when the queue is cancelled
// and hands out no further task.
type worker struct {
	id    int
	queue *sharedQueue

	mu    sync.Mutex
	cond  *sync.Cond
	state workerState
}

func newWorker(id int, queue *sharedQueue) *worker {
	w := &worker{
		id:    id,
		queue: queue,
		state: workerCreated,
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *worker) setState(state workerState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = state
	w.cond.Broadcast()
}

// main is the worker loop: block until a task or cancellation, run the task,
// repeat. Exits permanently on cancellation.
func (w *worker) main() {
	w.setState(workerStarted)

	for {
		task, ok := w.queue.awaitTaskOrCancellation()
		if !ok {
			w.setState(workerStopped)
			return
		}

		w.runTask(task)
	}
}

// runTask executes one task, containing any failure at the worker boundary:
// one failing task must not kill the worker or prevent later tasks from
// running.
func (w *worker) runTask(task Task) {
	ctx := newContext(w.id)

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("worker %d: ignoring panic escaped from task %q (execution %s): %v",
				w.id, task.Name(), ctx.ExecutionID(), r)
		}
	}()

	if err := task.Run(ctx); err != nil {
		log.Warnf("worker %d: ignoring error from task %q (execution %s): %v",
			w.id, task.Name(), ctx.ExecutionID(), err)
	}
}

// awaitStopped blocks until the worker has exited its main loop.
func (w *worker) awaitStopped() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for w.state != workerStopped {
		w.cond.Wait()
	}
}
