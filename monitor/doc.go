// Package monitor provides a generalized monitor: a lock guarding an
// arbitrary piece of state, plus the ability for a critical section to
// relinquish the lock and sleep until one of several conditions over that
// state becomes true, optionally racing against a timeout.
//
// This is strictly more expressive than a mutex paired with a condition
// variable:
//
//   - The lock can be acquired non-blocking or with a timeout, and a failed
//     acquisition is a regular outcome, never an error.
//   - A sleep waits on a disjunction of named conditions, each paired with
//     its own resume callback.
//   - An independent timeout branch may run concurrently with the condition
//     branches.
//
// # Core objects
//
// Synchronizer[T] owns the guarded value and the lock:
//
//	s := monitor.NewWith(queue{})
//	s.Do(func(q *queue) { q.items = append(q.items, item) })
//
// Sleeper, handed to the callback of DoSleep/GetSleep, builds one sleep
// invocation out of (condition, callback) pairs:
//
//	s.DoSleep(func(q *queue, sleeper *monitor.Sleeper) {
//		sleeper.Until(func() bool { return len(q.items) > 0 }, nil).
//			OrTimeout(time.Second, func() { timedOut = true }).
//			Sleep()
//	})
//
// # Wakeup discipline
//
// Every sleeping session registers its private wake channel together with
// its aggregate predicate in the synchronizer's wait registry. On every exit
// from exclusive access, the synchronizer signals exactly those sessions
// whose predicate currently holds. A woken session re-evaluates its
// conditions under the lock before resuming; a wake is never trusted on its
// own. Registering before releasing the lock closes the lost-wakeup window,
// and the unconditional re-evaluation absorbs spurious wakes.
//
// There is no ordering guarantee between simultaneously satisfiable
// sessions, only eventual and complete delivery of wakeups.
package monitor
