package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
	"github.com/dang0801205/volunteerhub-sub000/internal/notify"
)

// EventService creates event proposals and serves event reads.  A new event
// always starts PENDING with its EVENT_APPROVAL request created in the same
// transaction; everything after that goes through the approval dispatcher
// and the admission controller.
type EventService struct {
	ledger   *StatusLedger
	store    Store
	notifier Notifier
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(ledger *StatusLedger, store Store, notifier Notifier) *EventService {
	if ledger == nil || store == nil || notifier == nil {
		panic("nil dependency passed to NewEventService")
	}
	return &EventService{ledger: ledger, store: store, notifier: notifier}
}

// CreateEventInput carries the owner-supplied fields of a proposal.
type CreateEventInput struct {
	Title           string
	Description     string
	MaxParticipants uint32
}

// Create validates the proposal and inserts the PENDING event together with
// its pending EVENT_APPROVAL request atomically.  Admins are notified
// best-effort after commit.
func (s *EventService) Create(ctx context.Context, ownerID uint64, in CreateEventInput) (*model.Event, *model.ApprovalRequest, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.MaxParticipants == 0 {
		return nil, nil, fmt.Errorf("%w: max_participants must be a positive integer", ErrValidation)
	}
	if in.MaxParticipants > 100_000 {
		return nil, nil, fmt.Errorf("%w: max_participants cannot exceed 100,000", ErrValidation)
	}

	ev := &model.Event{
		OwnerID:         ownerID,
		Title:           in.Title,
		Description:     strings.TrimSpace(in.Description),
		MaxParticipants: in.MaxParticipants,
		Status:          model.EventPending,
	}
	var req *model.ApprovalRequest
	err := s.store.Transact(ctx, func(ops StoreOps) error {
		if err := ops.CreateEvent(ctx, ev); err != nil {
			return err
		}
		eventID := ev.ID
		req = &model.ApprovalRequest{
			Type:        model.ApprovalEventApproval,
			EventID:     &eventID,
			RequesterID: ownerID,
			Reason:      "new event proposal",
			Status:      model.ApprovalPending,
		}
		return ops.CreateApproval(ctx, req)
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.Notify(ctx, notify.New(
		notify.AdminsRoom,
		"Event proposal",
		fmt.Sprintf("%q awaits approval", ev.Title),
		notify.SeverityInfo,
		fmt.Sprintf("/v1/approvals/%d", req.ID),
	))
	return ev, req, nil
}

// Get returns an event by ID, reading through the cache.
func (s *EventService) Get(ctx context.Context, id uint64) (*model.Event, error) {
	if ev, ok := s.ledger.Cache().Get(ctx, id); ok {
		return ev, nil
	}
	ev, err := s.store.EventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.ledger.Cache().Set(ctx, ev)
	return ev, nil
}

// List returns events filtered by status; an empty status lists all.
func (s *EventService) List(ctx context.Context, status model.EventStatus) ([]model.Event, error) {
	return s.store.ListEvents(ctx, status)
}

// now is a seam for tests; production code always uses UTC wall time.
var now = func() time.Time { return time.Now().UTC() }
