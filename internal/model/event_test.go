package model

import "testing"

func TestEventStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to EventStatus
		ok       bool
	}{
		{EventPending, EventApproved, true},
		{EventPending, EventRejected, true},
		{EventPending, EventCancelled, false},
		{EventApproved, EventCancelPending, true},
		{EventApproved, EventCancelled, true}, // admin force-cancel shortcut
		{EventApproved, EventPending, false},
		{EventCancelPending, EventApproved, true},
		{EventCancelPending, EventCancelled, true},
		{EventCancelPending, EventRejected, false},
		{EventRejected, EventApproved, false},
		{EventRejected, EventPending, false},
		{EventCancelled, EventApproved, false},
		{EventCancelled, EventCancelPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestEventStatusTerminal(t *testing.T) {
	for _, s := range []EventStatus{EventRejected, EventCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []EventStatus{EventPending, EventApproved, EventCancelPending} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestRegistrationStatusOpen(t *testing.T) {
	if !RegistrationWaitlisted.Open() || !RegistrationRegistered.Open() {
		t.Fatal("waitlisted and registered must be open")
	}
	if RegistrationCancelled.Open() || RegistrationEventCancelled.Open() {
		t.Fatal("cancelled statuses must not be open")
	}
}

func TestApprovalTypeNeedsEvent(t *testing.T) {
	if !ApprovalEventApproval.NeedsEvent() || !ApprovalEventCancellation.NeedsEvent() {
		t.Fatal("event-scoped types must require an event")
	}
	if ApprovalManagerPromotion.NeedsEvent() || ApprovalAdminPromotion.NeedsEvent() {
		t.Fatal("promotion types must not require an event")
	}
}
