package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

func TestCreateEventOpensApprovalRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ev, req, err := env.events.Create(ctx, testOwnerID, CreateEventInput{Title: "food drive", MaxParticipants: 20})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if ev.Status != model.EventPending {
		t.Fatalf("event status = %s, want PENDING", ev.Status)
	}
	if req.Type != model.ApprovalEventApproval || req.Status != model.ApprovalPending {
		t.Fatalf("request = %s/%s, want EVENT_APPROVAL/PENDING", req.Type, req.Status)
	}
	if req.EventID == nil || *req.EventID != ev.ID {
		t.Fatalf("request event id = %v, want %d", req.EventID, ev.ID)
	}
}

func TestResolveApprovalApprovesEventAndChannel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev, req, err := env.events.Create(ctx, testOwnerID, CreateEventInput{Title: "tree planting", MaxParticipants: 10})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if _, err := env.approvals.Resolve(ctx, req.ID, DecisionApprove, testAdminID, "looks good"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, err := env.store.EventByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if got.Status != model.EventApproved {
		t.Fatalf("event status = %s, want APPROVED", got.Status)
	}
	if env.store.channels[ev.ID] == "" {
		t.Fatal("no communication channel created at approval")
	}
}

func TestResolveTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, req, err := env.events.Create(ctx, testOwnerID, CreateEventInput{Title: "soup kitchen", MaxParticipants: 10})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if _, err := env.approvals.Resolve(ctx, req.ID, DecisionApprove, testAdminID, ""); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if _, err := env.approvals.Resolve(ctx, req.ID, DecisionReject, testAdminID, ""); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second resolve: got %v, want ErrAlreadyResolved", err)
	}
}

func TestRejectEventProposal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev, req, err := env.events.Create(ctx, testOwnerID, CreateEventInput{Title: "bake sale", MaxParticipants: 10})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if _, err := env.approvals.Resolve(ctx, req.ID, DecisionReject, testAdminID, "duplicate"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, _ := env.store.EventByID(ctx, ev.ID)
	if got.Status != model.EventRejected {
		t.Fatalf("event status = %s, want REJECTED", got.Status)
	}
	if len(env.store.channels) != 0 {
		t.Fatal("rejected event must not get a channel")
	}
}

func TestCancellationRequestLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 10)
	regA, _ := env.admitted(t, ev.ID, 21)
	regB, err := env.registrations.Register(ctx, 22, ev.ID)
	if err != nil {
		t.Fatalf("register B: %v", err)
	}

	req, err := env.approvals.Submit(ctx, testOwnerID, model.RoleOrganizer, EventCancellation{EventID: ev.ID, Reason: "rain"})
	if err != nil {
		t.Fatalf("submit cancellation: %v", err)
	}
	got, _ := env.store.EventByID(ctx, ev.ID)
	if got.Status != model.EventCancelPending {
		t.Fatalf("event status = %s, want CANCEL_PENDING", got.Status)
	}

	// A second pending cancellation for the same event is refused.
	if _, err := env.approvals.Submit(ctx, testOwnerID, model.RoleOrganizer, EventCancellation{EventID: ev.ID, Reason: "rain"}); !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("duplicate submit: got %v, want ErrDuplicateRequest", err)
	}

	// Rejection restores APPROVED and touches no registration.
	if _, err := env.approvals.Resolve(ctx, req.ID, DecisionReject, testAdminID, "keep it"); err != nil {
		t.Fatalf("reject cancellation: %v", err)
	}
	got, _ = env.store.EventByID(ctx, ev.ID)
	if got.Status != model.EventApproved {
		t.Fatalf("event status = %s, want APPROVED after rejection", got.Status)
	}
	a, _ := env.store.RegistrationByID(ctx, regA.ID)
	b, _ := env.store.RegistrationByID(ctx, regB.ID)
	if a.Status != model.RegistrationRegistered || b.Status != model.RegistrationWaitlisted {
		t.Fatalf("registrations = %s/%s, want REGISTERED/WAITLISTED untouched", a.Status, b.Status)
	}
}

func TestCancellationApproveCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 10)
	regA, _ := env.admitted(t, ev.ID, 21)
	regB, err := env.registrations.Register(ctx, 22, ev.ID)
	if err != nil {
		t.Fatalf("register B: %v", err)
	}

	req, err := env.approvals.Submit(ctx, testOwnerID, model.RoleOrganizer, EventCancellation{EventID: ev.ID, Reason: "storm warning"})
	if err != nil {
		t.Fatalf("submit cancellation: %v", err)
	}
	if _, err := env.approvals.Resolve(ctx, req.ID, DecisionApprove, testAdminID, ""); err != nil {
		t.Fatalf("approve cancellation: %v", err)
	}

	got, _ := env.store.EventByID(ctx, ev.ID)
	if got.Status != model.EventCancelled {
		t.Fatalf("event status = %s, want CANCELLED", got.Status)
	}
	if got.CancelReason == nil || *got.CancelReason != "storm warning" {
		t.Fatalf("cancel reason = %v, want the request's reason", got.CancelReason)
	}
	a, _ := env.store.RegistrationByID(ctx, regA.ID)
	b, _ := env.store.RegistrationByID(ctx, regB.ID)
	if a.Status != model.RegistrationEventCancelled || b.Status != model.RegistrationEventCancelled {
		t.Fatalf("registrations = %s/%s, want both EVENT_CANCELLED", a.Status, b.Status)
	}
}

func TestCancellationRequiresOwnerOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	ev := env.approvedEvent(t, 10)

	_, err := env.approvals.Submit(context.Background(), 777, model.RoleVolunteer, EventCancellation{EventID: ev.ID, Reason: "nope"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestForceCancelWritesAuditRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 10)
	reg, _ := env.admitted(t, ev.ID, 21)

	out, err := env.approvals.ForceCancel(ctx, ev.ID, testAdminID, "safety issue")
	if err != nil {
		t.Fatalf("force cancel: %v", err)
	}
	if out.Status != model.EventCancelled {
		t.Fatalf("event status = %s, want CANCELLED", out.Status)
	}
	r, _ := env.store.RegistrationByID(ctx, reg.ID)
	if r.Status != model.RegistrationEventCancelled {
		t.Fatalf("registration status = %s, want EVENT_CANCELLED", r.Status)
	}

	reqs, err := env.approvals.List(ctx, model.ApprovalApproved)
	if err != nil {
		t.Fatalf("list approvals: %v", err)
	}
	var found bool
	for _, req := range reqs {
		if req.Type == model.ApprovalEventCancellation && req.EventID != nil && *req.EventID == ev.ID {
			found = true
			if req.ReviewerID == nil || *req.ReviewerID != testAdminID {
				t.Fatalf("audit reviewer = %v, want admin %d", req.ReviewerID, testAdminID)
			}
		}
	}
	if !found {
		t.Fatal("force cancel left no resolved cancellation request")
	}
}

func TestForceCancelStampsPendingRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.approvedEvent(t, 10)

	req, err := env.approvals.Submit(ctx, testOwnerID, model.RoleOrganizer, EventCancellation{EventID: ev.ID, Reason: "rain"})
	if err != nil {
		t.Fatalf("submit cancellation: %v", err)
	}
	if _, err := env.approvals.ForceCancel(ctx, ev.ID, testAdminID, "rain"); err != nil {
		t.Fatalf("force cancel: %v", err)
	}

	got, err := env.approvals.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if got.Status != model.ApprovalApproved {
		t.Fatalf("pending request = %s, want APPROVED by the force path", got.Status)
	}
}

func TestPromotionRequestLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	const requester = 33

	req, err := env.approvals.Submit(ctx, requester, model.RoleVolunteer, RolePromotion{TargetRole: model.RoleOrganizer})
	if err != nil {
		t.Fatalf("submit promotion: %v", err)
	}
	if req.Type != model.ApprovalManagerPromotion {
		t.Fatalf("request type = %s, want MANAGER_PROMOTION", req.Type)
	}
	if _, err := env.approvals.Submit(ctx, requester, model.RoleVolunteer, RolePromotion{TargetRole: model.RoleOrganizer}); !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("duplicate promotion: got %v, want ErrDuplicateRequest", err)
	}

	if _, err := env.approvals.Resolve(ctx, req.ID, DecisionApprove, testAdminID, ""); err != nil {
		t.Fatalf("resolve promotion: %v", err)
	}
	if env.store.roles[requester] != model.RoleOrganizer {
		t.Fatalf("role = %q, want ORGANIZER", env.store.roles[requester])
	}
}
