package pool

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gateTask blocks inside Run until released, so tests can park workers and
// control exactly when executions finish.
type gateTask struct {
	name    string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGateTask(name string) *gateTask {
	return &gateTask{
		name:    name,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (t *gateTask) Name() string { return t.name }

func (t *gateTask) Run(ctx *Context) error {
	close(t.started)
	<-t.release
	return nil
}

func (t *gateTask) hasStarted() bool {
	select {
	case <-t.started:
		return true
	default:
		return false
	}
}

func (t *gateTask) waitStarted(tb testing.TB) {
	tb.Helper()
	select {
	case <-t.started:
	case <-time.After(5 * time.Second):
		tb.Fatalf("task %q never started", t.name)
	}
}

func (t *gateTask) releaseOnce() {
	t.once.Do(func() { close(t.release) })
}

// recorder collects the order in which tasks ran.
type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) task(name string) Task {
	return TaskFunc{TaskName: name, Fn: func(ctx *Context) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.names = append(r.names, name)
		return nil
	}}
}

func (r *recorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func (r *recorder) waitCount(tb testing.TB, n int) {
	tb.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for len(r.recorded()) < n {
		if time.Now().After(deadline) {
			tb.Fatalf("only %d of %d tasks ran", len(r.recorded()), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNewValidatesWorkerCount(t *testing.T) {
	for _, workers := range []int{0, -1} {
		p, err := New("invalid", workers)
		assert.Error(t, err)
		assert.Nil(t, p)
	}
}

func TestSingleTaskRuns(t *testing.T) {
	p, err := New("single", 1)
	require.NoError(t, err)
	defer p.Close()

	done := make(chan *Context, 1)
	require.NoError(t, p.Submit(TaskFunc{TaskName: "task", Fn: func(ctx *Context) error {
		done <- ctx
		return nil
	}}))

	select {
	case ctx := <-done:
		assert.Equal(t, 0, ctx.WorkerID())
	case <-time.After(5 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestMostRecentlySubmittedTaskRunsFirst(t *testing.T) {
	p, err := New("lifo", 1)
	require.NoError(t, err)
	defer p.Close()

	// Park the only worker so the next submissions pile up in the queue.
	gate := newGateTask("gate")
	require.NoError(t, p.Submit(gate))
	gate.waitStarted(t)

	var rec recorder
	require.NoError(t, p.Submit(rec.task("t1")))
	require.NoError(t, p.Submit(rec.task("t2")))
	require.NoError(t, p.Submit(rec.task("t3")))

	gate.releaseOnce()
	rec.waitCount(t, 3)
	require.NoError(t, p.Close())

	assert.Equal(t, []string{"t3", "t2", "t1"}, rec.recorded())
}

func TestSubmitAfterCloseIsRejected(t *testing.T) {
	p, err := New("closed", 1)
	require.NoError(t, err)
	require.NoError(t, p.Close())

	err = p.Submit(TaskFunc{TaskName: "late", Fn: func(ctx *Context) error { return nil }})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCloseDrainsInFlightAndDiscardsQueued(t *testing.T) {
	p, err := New("drain", 1)
	require.NoError(t, err)

	inflight := newGateTask("inflight")
	require.NoError(t, p.Submit(inflight))
	inflight.waitStarted(t)

	queuedRan := make(chan struct{})
	require.NoError(t, p.Submit(TaskFunc{TaskName: "queued", Fn: func(ctx *Context) error {
		close(queuedRan)
		return nil
	}}))

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		p.Close()
	}()

	// Close must block while the in-flight task is still running.
	select {
	case <-closed:
		t.Fatal("Close returned while a task was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	inflight.releaseOnce()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the in-flight task completed")
	}

	// The queued-but-unstarted task was discarded.
	select {
	case <-queuedRan:
		t.Fatal("a task queued before Close was executed")
	default:
	}
}

func TestFailingTaskDoesNotKillWorker(t *testing.T) {
	p, err := New("failures", 1)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Submit(TaskFunc{TaskName: "erroring", Fn: func(ctx *Context) error {
		return fmt.Errorf("deliberate failure")
	}}))
	require.NoError(t, p.Submit(TaskFunc{TaskName: "panicking", Fn: func(ctx *Context) error {
		panic("deliberate panic")
	}}))

	done := make(chan struct{})
	require.NoError(t, p.Submit(TaskFunc{TaskName: "survivor", Fn: func(ctx *Context) error {
		close(done)
		return nil
	}}))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("a later task did not run after earlier tasks failed")
	}
}

func TestTwoWorkerOccupancy(t *testing.T) {
	p, err := New("occupancy", 2)
	require.NoError(t, err)

	a := newGateTask("a")
	b := newGateTask("b")
	c := newGateTask("c")

	require.NoError(t, p.Submit(a))
	require.NoError(t, p.Submit(b))
	a.waitStarted(t)
	b.waitStarted(t)

	require.NoError(t, p.Submit(c))

	// Both workers are occupied; c must not start. The sleep is the best we
	// can do to observe "never starts".
	time.Sleep(10 * time.Millisecond)
	assert.False(t, c.hasStarted())

	a.releaseOnce()
	c.waitStarted(t)

	b.releaseOnce()
	c.releaseOnce()
	require.NoError(t, p.Close())
}

func TestExecutionIDsAreUnique(t *testing.T) {
	p, err := New("ids", 2)
	require.NoError(t, err)

	const tasks = 20
	ids := make(chan string, tasks)
	for i := 0; i < tasks; i++ {
		require.NoError(t, p.Submit(TaskFunc{TaskName: fmt.Sprintf("t%d", i), Fn: func(ctx *Context) error {
			ids <- ctx.ExecutionID().String()
			return nil
		}}))
	}

	seen := make(map[string]bool)
	for i := 0; i < tasks; i++ {
		select {
		case id := <-ids:
			assert.False(t, seen[id], "duplicate execution id %s", id)
			seen[id] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("only %d of %d tasks ran", i, tasks)
		}
	}

	require.NoError(t, p.Close())
}

func BenchmarkSubmitAndExecute(b *testing.B) {
	p, err := New("bench", 4)
	if err != nil {
		b.Fatal(err)
	}
	defer p.Close()

	done := make(chan struct{}, 256)
	task := TaskFunc{TaskName: "noop", Fn: func(ctx *Context) error {
		done <- struct{}{}
		return nil
	}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := p.Submit(task); err != nil {
			b.Fatal(err)
		}
		<-done
	}
}
