package monitor

import "time"

// Condition is a predicate over the data guarded by a Synchronizer. It is
// only ever evaluated by a goroutine holding the synchronizer's lock, and it
// may be evaluated any number of times, so it must be cheap and free of side
// effects.
type Condition func() bool

// core is the non-generic heart of a Synchronizer: the lock and the registry
// of active waits. It is split out so that Sleeper and SleepLoop do not need
// the guarded type parameter.
type core struct {
	// lockCh is a capacity-1 channel used as the mutual-exclusion lock.
	// Sending acquires, receiving releases. Unlike sync.Mutex it supports
	// non-blocking and deadline-bounded acquisition, and it can be released
	// and reacquired around a wait.
	lockCh chan struct{}

	// waits holds every currently sleeping session. Only accessed while the
	// lock is held.
	waits []*wait
}

// wait is one registry entry: the private wake channel of a sleeping session
// together with its aggregate predicate. Each session gets its own wake
// channel so a signal targets exactly one session.
type wait struct {
	wake      chan struct{}
	satisfied func() bool
}

func (w *wait) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (c *core) lock() {
	c.lockCh <- struct{}{}
}

func (c *core) tryLock() bool {
	select {
	case c.lockCh <- struct{}{}:
		return true
	default:
		return false
	}
}

// lockTimeout acquires the lock, giving up after the timeout. A zero or
// negative timeout is a single non-blocking attempt. After the deadline
// passes a final non-blocking attempt is made, so a wake-up delay in the
// runtime never turns a barely-late acquisition into a failure.
func (c *core) lockTimeout(timeout time.Duration) bool {
	if timeout <= 0 {
		return c.tryLock()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case c.lockCh <- struct{}{}:
		return true
	case <-timer.C:
		return c.tryLock()
	}
}

func (c *core) unlock() {
	<-c.lockCh
}

// held reports whether the lock is currently held by some goroutine. This is
// a best-effort precondition check: it cannot tell whether the caller is the
// holder.
func (c *core) held() bool {
	return len(c.lockCh) == 1
}

// assertHeld panics if the lock is free. Sleeper and SleepLoop methods are
// only valid while the owning synchronizer's lock is held; violating that is
// a programming error, not a recoverable condition.
func (c *core) assertHeld() {
	if !c.held() {
		panic("monitor: sleeper used without holding the synchronizer lock")
	}
}

// signalOthers wakes every registered wait, other than skip, whose aggregate
// predicate currently holds. Sessions whose predicate is false are left
// alone. Must be called with the lock held.
func (c *core) signalOthers(skip *wait) {
	for _, w := range c.waits {
		if w != skip && w.satisfied() {
			w.signal()
		}
	}
}

// removeWait removes the last occurrence of w from the registry, by
// identity. Must be called with the lock held.
func (c *core) removeWait(w *wait) {
	for i := len(c.waits) - 1; i >= 0; i-- {
		if c.waits[i] == w {
			c.waits = append(c.waits[:i], c.waits[i+1:]...)
			return
		}
	}
}
