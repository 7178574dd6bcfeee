package monitor

import "time"

// A Synchronizer encapsulates exclusive access to an instance of T.
//
// The guarded data must never be read or mutated, directly or indirectly,
// except by the callback passed to one of the entry points below, which runs
// with the synchronizer's lock held. The simplest entry point, Do, runs the
// callback as if in a critical section. The other entry points add two
// capabilities:
//
//   - The lock may be acquired non-blocking or with a timeout (TryDo,
//     TryGet and friends). A failed acquisition is a regular outcome
//     reported as false, never an error.
//   - The callback may temporarily relinquish the lock and put the calling
//     goroutine to sleep until a condition on the guarded data is satisfied,
//     see Sleeper.
//
// Value-returning variants are package-level functions (Get, TryGet,
// GetSleep, TryGetSleep) because Go methods cannot introduce a second type
// parameter for the result.
//
// The lock is not reentrant: a callback must not call back into its own
// synchronizer, directly or through another goroutine it waits for. Doing so
// deadlocks.
type Synchronizer[T any] struct {
	mon  core
	data T
}

// New returns a synchronizer guarding a zero value of T.
func New[T any]() *Synchronizer[T] {
	var data T
	return NewWith(data)
}

// NewWith returns a synchronizer guarding data. The caller must not retain
// any reference to data or its interior.
func NewWith[T any](data T) *Synchronizer[T] {
	return &Synchronizer[T]{
		mon:  core{lockCh: make(chan struct{}, 1)},
		data: data,
	}
}

// NewFrom returns a synchronizer guarding the value produced by factory.
func NewFrom[T any](factory func() T) *Synchronizer[T] {
	return NewWith(factory())
}

// exit delivers pending signals and releases the lock. Deferred from every
// entry point so a panicking callback still signals satisfiable sleepers
// before the panic propagates to the caller.
func (s *Synchronizer[T]) exit() {
	s.mon.signalOthers(nil)
	s.mon.unlock()
}

// Do blocks until the lock is acquired, then invokes fn with exclusive
// access to the guarded data. The callback must not retain the pointer
// beyond its own execution, and should be short: it holds up every other
// accessor for its entire duration.
func (s *Synchronizer[T]) Do(fn func(data *T)) {
	s.mon.lock()
	defer s.exit()
	fn(&s.data)
}

// TryDo is Do with a bounded lock acquisition. A zero or negative
// acquireTimeout makes a single non-blocking attempt. Returns false, without
// invoking fn, if the lock was not acquired in time.
func (s *Synchronizer[T]) TryDo(acquireTimeout time.Duration, fn func(data *T)) bool {
	if !s.mon.lockTimeout(acquireTimeout) {
		return false
	}
	defer s.exit()
	fn(&s.data)
	return true
}

// DoSleep is Do, but the callback additionally receives a Sleeper bound to
// this invocation, with which it may relinquish the lock and sleep until a
// condition on the guarded data holds.
func (s *Synchronizer[T]) DoSleep(fn func(data *T, sleeper *Sleeper)) {
	s.mon.lock()
	defer s.exit()
	fn(&s.data, &Sleeper{mon: &s.mon})
}

// TryDoSleep is DoSleep with a bounded lock acquisition, reported like TryDo.
func (s *Synchronizer[T]) TryDoSleep(acquireTimeout time.Duration, fn func(data *T, sleeper *Sleeper)) bool {
	if !s.mon.lockTimeout(acquireTimeout) {
		return false
	}
	defer s.exit()
	fn(&s.data, &Sleeper{mon: &s.mon})
	return true
}

// Get invokes fn with exclusive access to the guarded data and returns its
// result.
func Get[T, R any](s *Synchronizer[T], fn func(data *T) R) R {
	s.mon.lock()
	defer s.exit()
	return fn(&s.data)
}

// TryGet is Get with a bounded lock acquisition. The second return value is
// false if the lock was not acquired in time; fn may legitimately return the
// zero value of R, so the flag is the only way to tell the two apart.
func TryGet[T, R any](s *Synchronizer[T], acquireTimeout time.Duration, fn func(data *T) R) (R, bool) {
	if !s.mon.lockTimeout(acquireTimeout) {
		var zero R
		return zero, false
	}
	defer s.exit()
	return fn(&s.data), true
}

// GetSleep is Get with a Sleeper bound to this invocation.
func GetSleep[T, R any](s *Synchronizer[T], fn func(data *T, sleeper *Sleeper) R) R {
	s.mon.lock()
	defer s.exit()
	return fn(&s.data, &Sleeper{mon: &s.mon})
}

// TryGetSleep is GetSleep with a bounded lock acquisition, reported like
// TryGet.
func TryGetSleep[T, R any](s *Synchronizer[T], acquireTimeout time.Duration, fn func(data *T, sleeper *Sleeper) R) (R, bool) {
	if !s.mon.lockTimeout(acquireTimeout) {
		var zero R
		return zero, false
	}
	defer s.exit()
	return fn(&s.data, &Sleeper{mon: &s.mon}), true
}
