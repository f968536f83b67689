package service

import (
	"context"
	"testing"
	"time"

	"github.com/dang0801205/volunteerhub-sub000/internal/cache"
	"github.com/dang0801205/volunteerhub-sub000/internal/lock"
	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

const (
	testOwnerID = 10
	testAdminID = 99
)

// testEnv wires every service against the in-memory store with a real lock
// ledger and a no-op cache.
type testEnv struct {
	store         *memStore
	ledger        *StatusLedger
	events        *EventService
	approvals     *ApprovalService
	registrations *RegistrationService
	attendances   *AttendanceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	ledger := NewStatusLedger(lock.New(2*time.Second, 5*time.Second), store, cache.NewNoop())
	n := DiscardNotifier()
	return &testEnv{
		store:         store,
		ledger:        ledger,
		events:        NewEventService(ledger, store, n),
		approvals:     NewApprovalService(ledger, store, n),
		registrations: NewRegistrationService(ledger, store, n),
		attendances:   NewAttendanceService(ledger, store, n),
	}
}

// approvedEvent creates an event proposal and approves it, returning the
// APPROVED event.
func (e *testEnv) approvedEvent(t *testing.T, maxParticipants uint32) *model.Event {
	t.Helper()
	ctx := context.Background()
	ev, req, err := e.events.Create(ctx, testOwnerID, CreateEventInput{
		Title:           "beach cleanup",
		MaxParticipants: maxParticipants,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if _, err := e.approvals.Resolve(ctx, req.ID, DecisionApprove, testAdminID, ""); err != nil {
		t.Fatalf("approve event: %v", err)
	}
	got, err := e.events.Get(ctx, ev.ID)
	if err != nil {
		t.Fatalf("reload event: %v", err)
	}
	return got
}

// admitted registers volunteerID and admits them, returning the
// registration and its attendance.
func (e *testEnv) admitted(t *testing.T, eventID, volunteerID uint64) (*model.Registration, *model.Attendance) {
	t.Helper()
	ctx := context.Background()
	reg, err := e.registrations.Register(ctx, volunteerID, eventID)
	if err != nil {
		t.Fatalf("register volunteer %d: %v", volunteerID, err)
	}
	if _, err := e.registrations.Admit(ctx, reg.ID, testOwnerID); err != nil {
		t.Fatalf("admit volunteer %d: %v", volunteerID, err)
	}
	att, err := e.store.AttendanceForRegistration(ctx, reg.ID)
	if err != nil {
		t.Fatalf("attendance for registration %d: %v", reg.ID, err)
	}
	reg, err = e.store.RegistrationByID(ctx, reg.ID)
	if err != nil {
		t.Fatalf("reload registration: %v", err)
	}
	return reg, att
}

// checkedOut runs admitted and checks the attendance out.
func (e *testEnv) checkedOut(t *testing.T, eventID, volunteerID uint64) *model.Attendance {
	t.Helper()
	_, att := e.admitted(t, eventID, volunteerID)
	out, err := e.attendances.CheckOut(context.Background(), att.ID, volunteerID, model.RoleVolunteer)
	if err != nil {
		t.Fatalf("check out attendance %d: %v", att.ID, err)
	}
	return out
}
