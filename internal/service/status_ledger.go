package service

import (
	"context"
	"fmt"

	"github.com/dang0801205/volunteerhub-sub000/internal/cache"
	"github.com/dang0801205/volunteerhub-sub000/internal/lock"
	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

// StatusLedger serializes all status-mutating operations against a single
// event and exposes the compare-and-set primitive on Event.Status.  Every
// other service mutates event state exclusively through it: WithEventLock
// combines the per-event lock with a storage transaction, so the critical
// section of one admission or resolution is both mutually exclusive and
// atomic.  After a successful critical section the event's cache snapshot
// is invalidated.
type StatusLedger struct {
	locks  *lock.Ledger
	store  Store
	events cache.EventCache
}

// NewStatusLedger constructs a StatusLedger.  All dependencies must be
// non-nil; pass cache.NewNoop() when no cache backend is configured.
func NewStatusLedger(locks *lock.Ledger, store Store, events cache.EventCache) *StatusLedger {
	if locks == nil || store == nil || events == nil {
		panic("nil dependency passed to NewStatusLedger")
	}
	return &StatusLedger{locks: locks, store: store, events: events}
}

// WithEventLock acquires the exclusive lock for eventID, opens a
// transaction, loads a fresh Event snapshot and runs fn with it.  All
// mutations fn performs through ops commit or roll back as one unit.  The
// context handed to fn carries the lock's hold deadline.  Returns
// lock.ErrLockTimeout when the lock cannot be acquired or the critical
// section overruns, and ErrNotFound when the event does not exist.
func (l *StatusLedger) WithEventLock(ctx context.Context, eventID uint64, fn func(ctx context.Context, ops StoreOps, ev *model.Event) error) error {
	err := l.locks.WithLock(ctx, eventID, func(ctx context.Context) error {
		return l.store.Transact(ctx, func(ops StoreOps) error {
			ev, err := ops.EventByID(ctx, eventID)
			if err != nil {
				return err
			}
			return fn(ctx, ops, ev)
		})
	})
	if err == nil {
		// Drop the cached snapshot outside the critical section; the next
		// read repopulates it.
		l.events.Invalidate(ctx, eventID)
	}
	return err
}

// CompareAndSetStatus transitions ev from expected to next, validating the
// move against the event status machine and writing it as a conditional
// update.  It must be called inside a WithEventLock critical section.  On
// success ev.Status is updated in place.  Fails with ErrInvalidTransition
// when the machine does not define the move and ErrStatusConflict when the
// in-memory snapshot or the stored row no longer carries expected.
func (l *StatusLedger) CompareAndSetStatus(ctx context.Context, ops StoreOps, ev *model.Event, expected, next model.EventStatus) error {
	if !expected.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, expected, next)
	}
	if ev.Status != expected {
		if ev.Status.Terminal() {
			return fmt.Errorf("%w: event %d is %s", ErrInvalidTransition, ev.ID, ev.Status)
		}
		return fmt.Errorf("%w: event %d is %s, expected %s", ErrStatusConflict, ev.ID, ev.Status, expected)
	}
	ok, err := ops.UpdateEventStatus(ctx, ev.ID, []model.EventStatus{expected}, next)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: event %d changed concurrently", ErrStatusConflict, ev.ID)
	}
	ev.Status = next
	return nil
}

// Store exposes the underlying store for plain reads outside a critical
// section.
func (l *StatusLedger) Store() Store { return l.store }

// Cache exposes the event cache for read paths.
func (l *StatusLedger) Cache() cache.EventCache { return l.events }
