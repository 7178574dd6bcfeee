package monitor

import "time"

// A Sleeper lets the callback of a sleepable entry point relinquish the lock
// and put the calling goroutine to sleep until a condition on the guarded
// data is satisfied, optionally racing against a timeout.
//
// A Sleeper is only valid inside the callback it was handed to, while the
// owning synchronizer's lock is held. Every method verifies that
// precondition and panics on violation.
//
// Typical use, waiting for either of two conditions or a timeout:
//
//	s.DoSleep(func(data *state, sleeper *monitor.Sleeper) {
//		sleeper.Until(func() bool { return data.ready }, nil).
//			Or(func() bool { return data.closed }, nil).
//			OrTimeout(time.Second, nil).
//			Sleep()
//	})
//
// Value-returning loops are built with the package-level Until and
// UntilTimeout functions, which return a SleepLoop[R].
type Sleeper struct {
	mon *core
}

// branch is one (predicate, resume-callback) pair of a sleep loop.
type branch[R any] struct {
	cond Condition
	fn   func() R
}

// A SleepLoop accumulates the (condition, callback) pairs and the optional
// timeout branch of one sleep invocation, then Sleep runs the wait loop. The
// zero value is not usable; build loops with Until or UntilTimeout.
type SleepLoop[R any] struct {
	mon       *core
	branches  []branch[R]
	timeoutFn func() R
	deadline  time.Time
}

// Until starts a sleep loop that resolves with fn's result once cond holds.
func Until[R any](s *Sleeper, cond Condition, fn func() R) *SleepLoop[R] {
	s.mon.assertHeld()
	if cond == nil {
		panic("monitor: nil condition")
	}
	if fn == nil {
		panic("monitor: nil callback")
	}
	return &SleepLoop[R]{
		mon:      s.mon,
		branches: []branch[R]{{cond: cond, fn: fn}},
	}
}

// UntilTimeout starts a sleep loop with only a timeout branch and no
// condition branches. The deadline is fixed now; chaining Or conditions does
// not extend it.
func UntilTimeout[R any](s *Sleeper, timeout time.Duration, fn func() R) *SleepLoop[R] {
	s.mon.assertHeld()
	if fn == nil {
		panic("monitor: nil callback")
	}
	return &SleepLoop[R]{
		mon:       s.mon,
		timeoutFn: fn,
		deadline:  time.Now().Add(timeout),
	}
}

// Or appends another (condition, callback) pair to the loop. Conditions are
// evaluated in registration order; the first one found true wins.
func (l *SleepLoop[R]) Or(cond Condition, fn func() R) *SleepLoop[R] {
	l.mon.assertHeld()
	if cond == nil {
		panic("monitor: nil condition")
	}
	if fn == nil {
		panic("monitor: nil callback")
	}
	l.branches = append(l.branches, branch[R]{cond: cond, fn: fn})
	return l
}

// OrTimeout installs the timeout branch: if no condition becomes true within
// timeout, Sleep resolves with fn's result instead. At most one timeout
// branch may be installed per loop; a second call panics.
func (l *SleepLoop[R]) OrTimeout(timeout time.Duration, fn func() R) *SleepLoop[R] {
	l.mon.assertHeld()
	if fn == nil {
		panic("monitor: nil callback")
	}
	if l.timeoutFn != nil {
		panic("monitor: a timeout branch has already been installed")
	}
	l.timeoutFn = fn
	l.deadline = time.Now().Add(timeout)
	return l
}

// Sleep blocks the calling goroutine until one of the registered conditions
// holds or the timeout elapses, then invokes the matching callback with the
// lock held and returns its result.
//
// The conditions are evaluated before ever blocking, so a sleep whose
// condition already holds resolves on the fast path without releasing the
// lock. After every wake the conditions are re-evaluated under the lock; a
// wake is never trusted on its own. The remaining timeout is recomputed on
// every iteration, and a wake caused by timer expiry resolves via the
// timeout branch without re-checking the conditions.
func (l *SleepLoop[R]) Sleep() R {
	c := l.mon
	c.assertHeld()

	var w *wait
	for {
		for _, b := range l.branches {
			if b.cond() {
				if w != nil {
					c.removeWait(w)
				}
				return b.fn()
			}
		}

		var remaining time.Duration
		if l.timeoutFn != nil {
			remaining = time.Until(l.deadline)
			if remaining <= 0 {
				if w != nil {
					c.removeWait(w)
				}
				return l.timeoutFn()
			}
		}

		// About to release the lock: a satisfiable sibling sleeper must not
		// be left to starve just because no mutator comes along.
		c.signalOthers(w)

		if w == nil {
			w = &wait{
				wake:      make(chan struct{}, 1),
				satisfied: l.anySatisfied,
			}
			c.waits = append(c.waits, w)
		}

		// Registered before releasing, so a signal sent between the unlock
		// and the receive is buffered in the wake channel, not lost.
		expired := false
		c.unlock()
		if l.timeoutFn == nil {
			<-w.wake
		} else {
			timer := time.NewTimer(remaining)
			select {
			case <-w.wake:
				timer.Stop()
			case <-timer.C:
				expired = true
			}
		}
		c.lock()

		if expired {
			c.removeWait(w)
			return l.timeoutFn()
		}
	}
}

// anySatisfied is the aggregate predicate registered for this loop's wait.
func (l *SleepLoop[R]) anySatisfied() bool {
	for _, b := range l.branches {
		if b.cond() {
			return true
		}
	}
	return false
}

// A VoidLoop is a SleepLoop for callbacks with no result. Callbacks may be
// nil, meaning "just resume".
type VoidLoop struct {
	inner *SleepLoop[struct{}]
}

// Until starts a void sleep loop that resolves once cond holds.
func (s *Sleeper) Until(cond Condition, fn func()) *VoidLoop {
	return &VoidLoop{inner: Until(s, cond, voidFn(fn))}
}

// UntilTimeout starts a void sleep loop with only a timeout branch.
func (s *Sleeper) UntilTimeout(timeout time.Duration, fn func()) *VoidLoop {
	return &VoidLoop{inner: UntilTimeout(s, timeout, voidFn(fn))}
}

// Or appends another (condition, callback) pair to the loop.
func (v *VoidLoop) Or(cond Condition, fn func()) *VoidLoop {
	v.inner.Or(cond, voidFn(fn))
	return v
}

// OrTimeout installs the timeout branch; at most once per loop.
func (v *VoidLoop) OrTimeout(timeout time.Duration, fn func()) *VoidLoop {
	v.inner.OrTimeout(timeout, voidFn(fn))
	return v
}

// Sleep blocks until one of the registered conditions holds or the timeout
// elapses, then invokes the matching callback, if any.
func (v *VoidLoop) Sleep() {
	v.inner.Sleep()
}

func voidFn(fn func()) func() struct{} {
	if fn == nil {
		return func() struct{} { return struct{}{} }
	}
	return func() struct{} {
		fn()
		return struct{}{}
	}
}
