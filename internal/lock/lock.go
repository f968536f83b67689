// Package lock provides the per-event mutual exclusion primitive used to
// serialize status-mutating operations.  Contention is scoped per event ID;
// operations on different events proceed independently.  Both lock
// acquisition and the held critical section are bounded in time so a stuck
// handler surfaces ErrLockTimeout instead of hanging a request forever.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockTimeout is returned when a lock cannot be acquired within the
// configured wait, or when the critical section exceeds its hold budget.
// Callers should treat it as transient and retry with backoff.
var ErrLockTimeout = errors.New("lock timeout")

// Ledger hands out one logical lock per event ID.  Lock entries are created
// on demand and removed again once no goroutine references them, so the map
// does not grow with the number of events ever touched.
type Ledger struct {
	mu          sync.Mutex
	entries     map[uint64]*entry
	acquireWait time.Duration // how long WithLock waits to acquire before giving up
	holdLimit   time.Duration // deadline applied to the critical section context
}

// entry is a single event's lock.  The buffered channel of size one acts as
// a mutex that supports timed acquisition; refs counts goroutines currently
// waiting on or holding the lock.
type entry struct {
	ch   chan struct{}
	refs int
}

// New returns a Ledger with the given acquisition wait and hold limit.
// Non-positive values fall back to conservative defaults.
func New(acquireWait, holdLimit time.Duration) *Ledger {
	if acquireWait <= 0 {
		acquireWait = 5 * time.Second
	}
	if holdLimit <= 0 {
		holdLimit = 10 * time.Second
	}
	return &Ledger{
		entries:     make(map[uint64]*entry),
		acquireWait: acquireWait,
		holdLimit:   holdLimit,
	}
}

// WithLock runs fn while holding the exclusive lock for id.  The context
// passed to fn carries a deadline equal to the ledger's hold limit; fn's
// blocking calls must honor it.  WithLock returns ErrLockTimeout when the
// lock cannot be acquired in time or when fn ran out of its hold budget,
// and the caller's context error when the caller itself gave up first.
func (l *Ledger) WithLock(ctx context.Context, id uint64, fn func(ctx context.Context) error) error {
	e := l.retain(id)
	defer l.release(id)

	timer := time.NewTimer(l.acquireWait)
	defer timer.Stop()
	select {
	case e.ch <- struct{}{}:
		// lock acquired
	case <-timer.C:
		return ErrLockTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-e.ch }()

	hctx, cancel := context.WithTimeout(ctx, l.holdLimit)
	defer cancel()
	err := fn(hctx)
	// Distinguish "the critical section overran its budget" from "the
	// caller cancelled": only the former maps to ErrLockTimeout.
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return ErrLockTimeout
	}
	return err
}

// retain returns the entry for id, creating it when absent, and bumps its
// reference count.
func (l *Ledger) retain(id uint64) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[id] = e
	}
	e.refs++
	return e
}

// release drops one reference to id's entry and deletes it when unused.
func (l *Ledger) release(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(l.entries, id)
	}
}
