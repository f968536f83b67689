package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

func TestWithEventLockMissingEvent(t *testing.T) {
	env := newTestEnv(t)
	err := env.ledger.WithEventLock(context.Background(), 404, func(ctx context.Context, ops StoreOps, ev *model.Event) error {
		t.Fatal("fn ran for a missing event")
		return nil
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCompareAndSetStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev, _, err := env.events.Create(ctx, testOwnerID, CreateEventInput{Title: "park day", MaxParticipants: 5})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	err = env.ledger.WithEventLock(ctx, ev.ID, func(ctx context.Context, ops StoreOps, cur *model.Event) error {
		return env.ledger.CompareAndSetStatus(ctx, ops, cur, model.EventPending, model.EventApproved)
	})
	if err != nil {
		t.Fatalf("pending -> approved: %v", err)
	}
	got, err := env.store.EventByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != model.EventApproved {
		t.Fatalf("status = %s, want APPROVED", got.Status)
	}

	// The machine does not define APPROVED -> REJECTED.
	err = env.ledger.WithEventLock(ctx, ev.ID, func(ctx context.Context, ops StoreOps, cur *model.Event) error {
		return env.ledger.CompareAndSetStatus(ctx, ops, cur, model.EventApproved, model.EventRejected)
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}

	// A stale snapshot no longer matches the stored row.
	err = env.ledger.WithEventLock(ctx, ev.ID, func(ctx context.Context, ops StoreOps, cur *model.Event) error {
		return env.ledger.CompareAndSetStatus(ctx, ops, cur, model.EventPending, model.EventApproved)
	})
	if !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("got %v, want ErrStatusConflict", err)
	}
}

func TestCompareAndSetStatusTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 5)
	if _, err := env.approvals.ForceCancel(ctx, ev.ID, testAdminID, "venue flooded"); err != nil {
		t.Fatalf("force cancel: %v", err)
	}

	err := env.ledger.WithEventLock(ctx, ev.ID, func(ctx context.Context, ops StoreOps, cur *model.Event) error {
		return env.ledger.CompareAndSetStatus(ctx, ops, cur, model.EventApproved, model.EventCancelPending)
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition on a terminal event", err)
	}
}
