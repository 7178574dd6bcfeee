package pool

import "github.com/google/uuid"

// A Task is an opaque named unit of work submitted to a Pool. It is
// immutable once submitted.
//
// Run is invoked exactly once, on the worker goroutine that picked the task
// up. An error returned from Run, or a panic escaping it, is recorded at the
// worker boundary and discarded; it never terminates the worker and never
// propagates to the submitter.
type Task interface {
	Name() string
	Run(ctx *Context) error
}

// Context identifies one execution of a task: the worker running it and a
// unique id for this execution.
type Context struct {
	workerID int
	execID   uuid.UUID
}

func newContext(workerID int) *Context {
	return &Context{
		workerID: workerID,
		execID:   uuid.New(),
	}
}

// WorkerID returns the id of the worker executing the task.
func (c *Context) WorkerID() int { return c.workerID }

// ExecutionID returns the unique id of this execution.
func (c *Context) ExecutionID() uuid.UUID { return c.execID }

// TaskFunc adapts a named function to the Task interface.
type TaskFunc struct {
	TaskName string
	Fn       func(ctx *Context) error
}

func (t TaskFunc) Name() string { return t.TaskName }

func (t TaskFunc) Run(ctx *Context) error { return t.Fn(ctx) }
