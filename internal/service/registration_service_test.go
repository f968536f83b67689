package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

func TestRegisterWaitlistsVolunteer(t *testing.T) {
	env := newTestEnv(t)
	ev := env.approvedEvent(t, 5)

	reg, err := env.registrations.Register(context.Background(), 21, ev.ID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Status != model.RegistrationWaitlisted {
		t.Fatalf("status = %s, want WAITLISTED", reg.Status)
	}
}

func TestRegisterRequiresApprovedEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev, _, err := env.events.Create(ctx, testOwnerID, CreateEventInput{Title: "river cleanup", MaxParticipants: 5})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if _, err := env.registrations.Register(ctx, 21, ev.ID); !errors.Is(err, ErrEventNotOpen) {
		t.Fatalf("got %v, want ErrEventNotOpen for a PENDING event", err)
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 5)

	if _, err := env.registrations.Register(ctx, 21, ev.ID); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := env.registrations.Register(ctx, 21, ev.ID); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("second register: got %v, want ErrAlreadyRegistered", err)
	}
}

func TestRegisterReactivatesCancelledRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 5)

	first, err := env.registrations.Register(ctx, 21, ev.ID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := env.registrations.Cancel(ctx, first.ID, 21, model.RoleVolunteer); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	again, err := env.registrations.Register(ctx, 21, ev.ID)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("re-register created row %d, want reactivated row %d", again.ID, first.ID)
	}
	if again.Status != model.RegistrationWaitlisted {
		t.Fatalf("status = %s, want WAITLISTED", again.Status)
	}
}

func TestAdmitCapacityGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 2)

	var regs []*model.Registration
	for _, vol := range []uint64{21, 22, 23} {
		reg, err := env.registrations.Register(ctx, vol, ev.ID)
		if err != nil {
			t.Fatalf("register %d: %v", vol, err)
		}
		regs = append(regs, reg)
	}

	for _, reg := range regs[:2] {
		if _, err := env.registrations.Admit(ctx, reg.ID, testOwnerID); err != nil {
			t.Fatalf("admit %d: %v", reg.ID, err)
		}
	}
	if _, err := env.registrations.Admit(ctx, regs[2].ID, testOwnerID); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("third admit: got %v, want ErrCapacityExceeded", err)
	}

	got, _ := env.store.EventByID(ctx, ev.ID)
	if got.CurrentParticipants != 2 {
		t.Fatalf("participants = %d, want 2 after failed admit", got.CurrentParticipants)
	}
	third, _ := env.store.RegistrationByID(ctx, regs[2].ID)
	if third.Status != model.RegistrationWaitlisted {
		t.Fatalf("third registration = %s, want still WAITLISTED", third.Status)
	}
}

func TestAdmitCreatesAttendance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 5)
	reg, att := env.admitted(t, ev.ID, 21)

	if reg.Status != model.RegistrationRegistered {
		t.Fatalf("registration = %s, want REGISTERED", reg.Status)
	}
	if att.Status != model.AttendanceInProgress {
		t.Fatalf("attendance = %s, want IN_PROGRESS", att.Status)
	}
	if att.EventID != ev.ID {
		t.Fatalf("attendance event = %d, want %d", att.EventID, ev.ID)
	}
	got, _ := env.store.EventByID(ctx, ev.ID)
	if got.CurrentParticipants != 1 {
		t.Fatalf("participants = %d, want 1", got.CurrentParticipants)
	}
}

func TestAdmitRequiresWaitlisted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 5)
	reg, _ := env.admitted(t, ev.ID, 21)

	if _, err := env.registrations.Admit(ctx, reg.ID, testOwnerID); !errors.Is(err, ErrNotWaitlisted) {
		t.Fatalf("second admit: got %v, want ErrNotWaitlisted", err)
	}
}

func TestCancelIdempotentDecrementsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 5)
	reg, _ := env.admitted(t, ev.ID, 21)

	if _, err := env.registrations.Cancel(ctx, reg.ID, 21, model.RoleVolunteer); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	got, _ := env.store.EventByID(ctx, ev.ID)
	if got.CurrentParticipants != 0 {
		t.Fatalf("participants = %d, want 0 after cancel", got.CurrentParticipants)
	}

	// A repeat cancel succeeds without another decrement.
	out, err := env.registrations.Cancel(ctx, reg.ID, 21, model.RoleVolunteer)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if out.Status != model.RegistrationCancelled {
		t.Fatalf("status = %s, want CANCELLED", out.Status)
	}
	got, _ = env.store.EventByID(ctx, ev.ID)
	if got.CurrentParticipants != 0 {
		t.Fatalf("participants = %d, want still 0", got.CurrentParticipants)
	}
}

func TestCancelWaitlistedKeepsCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 5)
	env.admitted(t, ev.ID, 21)
	reg, err := env.registrations.Register(ctx, 22, ev.ID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := env.registrations.Cancel(ctx, reg.ID, 22, model.RoleVolunteer); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, _ := env.store.EventByID(ctx, ev.ID)
	if got.CurrentParticipants != 1 {
		t.Fatalf("participants = %d, want 1: waitlisted cancel must not decrement", got.CurrentParticipants)
	}
}

func TestCancelByStrangerForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 5)
	reg, _ := env.admitted(t, ev.ID, 21)

	if _, err := env.registrations.Cancel(ctx, reg.ID, 777, model.RoleVolunteer); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger cancel: got %v, want ErrForbidden", err)
	}
	got, _ := env.store.RegistrationByID(ctx, reg.ID)
	if got.Status != model.RegistrationRegistered {
		t.Fatalf("status = %s, want untouched REGISTERED", got.Status)
	}
	evGot, _ := env.store.EventByID(ctx, ev.ID)
	if evGot.CurrentParticipants != 1 {
		t.Fatalf("participants = %d, want untouched 1", evGot.CurrentParticipants)
	}
}

func TestCancelByOwnerOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 5)
	regA, _ := env.admitted(t, ev.ID, 21)
	regB, _ := env.admitted(t, ev.ID, 22)

	if _, err := env.registrations.Cancel(ctx, regA.ID, testOwnerID, model.RoleOrganizer); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if _, err := env.registrations.Cancel(ctx, regB.ID, testAdminID, model.RoleAdmin); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	got, _ := env.store.EventByID(ctx, ev.ID)
	if got.CurrentParticipants != 0 {
		t.Fatalf("participants = %d, want 0 after both cancels", got.CurrentParticipants)
	}
}

func TestRejectRequiresOwnerOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 5)
	reg, _ := env.admitted(t, ev.ID, 21)

	if _, err := env.registrations.Reject(ctx, reg.ID, 21, model.RoleVolunteer, "no show"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("volunteer reject: got %v, want ErrForbidden", err)
	}
	out, err := env.registrations.Reject(ctx, reg.ID, testOwnerID, model.RoleOrganizer, "no show")
	if err != nil {
		t.Fatalf("owner reject: %v", err)
	}
	if out.Status != model.RegistrationCancelled {
		t.Fatalf("status = %s, want CANCELLED", out.Status)
	}
}

func TestReconcileRepairsDrift(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 5)
	env.admitted(t, ev.ID, 21)
	env.admitted(t, ev.ID, 22)

	// Inject counter drift behind the services' back.
	if err := env.store.SetEventParticipants(ctx, ev.ID, 5); err != nil {
		t.Fatalf("inject drift: %v", err)
	}

	n, err := env.registrations.Reconcile(ctx, ev.ID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if n != 2 {
		t.Fatalf("reconciled count = %d, want 2", n)
	}
	got, _ := env.store.EventByID(ctx, ev.ID)
	if got.CurrentParticipants != 2 {
		t.Fatalf("participants = %d, want 2", got.CurrentParticipants)
	}
}
