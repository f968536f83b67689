package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
	"github.com/dang0801205/volunteerhub-sub000/internal/notify"
)

// RequestSpec is the typed payload of a new approval request.  Each variant
// carries only the data its type needs; Submit dispatches on the concrete
// type instead of checking field presence at runtime.
type RequestSpec interface {
	approvalType() model.ApprovalType
}

// EventCancellation asks to cancel an approved event.
type EventCancellation struct {
	EventID uint64
	Reason  string
}

func (EventCancellation) approvalType() model.ApprovalType { return model.ApprovalEventCancellation }

// RolePromotion asks to promote the requester to TargetRole.
type RolePromotion struct {
	TargetRole string // model.RoleOrganizer or model.RoleAdmin
}

func (p RolePromotion) approvalType() model.ApprovalType {
	if p.TargetRole == model.RoleAdmin {
		return model.ApprovalAdminPromotion
	}
	return model.ApprovalManagerPromotion
}

// Decision is an admin's verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ApprovalService is the approval request dispatcher: it creates typed
// requests, resolves them exactly once and applies the type-specific side
// effects atomically with the request's own status stamp.  It also carries
// the admin force-cancel shortcut, which skips the pending-request step but
// still leaves an audit row.
type ApprovalService struct {
	ledger   *StatusLedger
	store    Store
	notifier Notifier
}

// NewApprovalService constructs an ApprovalService with its dependencies.
func NewApprovalService(ledger *StatusLedger, store Store, notifier Notifier) *ApprovalService {
	if ledger == nil || store == nil || notifier == nil {
		panic("nil dependency passed to NewApprovalService")
	}
	return &ApprovalService{ledger: ledger, store: store, notifier: notifier}
}

// Submit creates a pending request of the given spec.  At most one pending
// request per (type, event) pair — or per (type, requester) for promotions
// — may exist; a duplicate fails with ErrDuplicateRequest.  Submitting an
// EventCancellation also transitions the event APPROVED -> CANCEL_PENDING
// in the same transaction, so registration traffic keeps flowing only
// until the request exists.
func (s *ApprovalService) Submit(ctx context.Context, requesterID uint64, requesterRole string, spec RequestSpec) (*model.ApprovalRequest, error) {
	var req *model.ApprovalRequest
	var err error
	switch sp := spec.(type) {
	case EventCancellation:
		req, err = s.submitCancellation(ctx, requesterID, requesterRole, sp)
	case RolePromotion:
		req, err = s.submitPromotion(ctx, requesterID, sp)
	default:
		return nil, fmt.Errorf("%w: unsupported request spec %T", ErrValidation, spec)
	}
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, notify.New(
		notify.AdminsRoom,
		"Approval request",
		fmt.Sprintf("%s request #%d awaits review", req.Type, req.ID),
		notify.SeverityInfo,
		fmt.Sprintf("/v1/approvals/%d", req.ID),
	))
	return req, nil
}

func (s *ApprovalService) submitCancellation(ctx context.Context, requesterID uint64, requesterRole string, sp EventCancellation) (*model.ApprovalRequest, error) {
	var req *model.ApprovalRequest
	err := s.ledger.WithEventLock(ctx, sp.EventID, func(ctx context.Context, ops StoreOps, ev *model.Event) error {
		if requesterID != ev.OwnerID && requesterRole != model.RoleAdmin {
			return fmt.Errorf("%w: only the owner or an admin may request cancellation", ErrForbidden)
		}
		if _, err := ops.PendingApproval(ctx, model.ApprovalEventCancellation, ev.ID, 0); err == nil {
			return fmt.Errorf("%w: cancellation of event %d already requested", ErrDuplicateRequest, ev.ID)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.ledger.CompareAndSetStatus(ctx, ops, ev, model.EventApproved, model.EventCancelPending); err != nil {
			return err
		}
		eventID := ev.ID
		req = &model.ApprovalRequest{
			Type:        model.ApprovalEventCancellation,
			EventID:     &eventID,
			RequesterID: requesterID,
			Reason:      sp.Reason,
			Status:      model.ApprovalPending,
		}
		return ops.CreateApproval(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *ApprovalService) submitPromotion(ctx context.Context, requesterID uint64, sp RolePromotion) (*model.ApprovalRequest, error) {
	if sp.TargetRole != model.RoleOrganizer && sp.TargetRole != model.RoleAdmin {
		return nil, fmt.Errorf("%w: target role must be %s or %s", ErrValidation, model.RoleOrganizer, model.RoleAdmin)
	}
	typ := sp.approvalType()
	var req *model.ApprovalRequest
	err := s.store.Transact(ctx, func(ops StoreOps) error {
		if _, err := ops.PendingApproval(ctx, typ, 0, requesterID); err == nil {
			return fmt.Errorf("%w: promotion already requested", ErrDuplicateRequest)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		req = &model.ApprovalRequest{
			Type:        typ,
			RequesterID: requesterID,
			Reason:      "role promotion request",
			Status:      model.ApprovalPending,
		}
		return ops.CreateApproval(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Resolve applies decision to a pending request, stamping it with the
// reviewer, timestamp and note, and executing the matching side effects in
// the same transaction.  Resolving a request twice fails with
// ErrAlreadyResolved and leaves state untouched; the stamp itself is a
// conditional update, so two concurrent resolvers cannot both win.
func (s *ApprovalService) Resolve(ctx context.Context, requestID uint64, decision Decision, reviewerID uint64, note string) (*model.ApprovalRequest, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, fmt.Errorf("%w: decision must be %q or %q", ErrValidation, DecisionApprove, DecisionReject)
	}
	req, err := s.store.ApprovalByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.ApprovalPending {
		return nil, fmt.Errorf("%w: request %d is %s", ErrAlreadyResolved, req.ID, req.Status)
	}

	verdict := model.ApprovalApproved
	if decision == DecisionReject {
		verdict = model.ApprovalRejected
	}
	resolvedAt := now()

	switch req.Type {
	case model.ApprovalEventApproval:
		err = s.resolveEventApproval(ctx, req, verdict, reviewerID, note, resolvedAt)
	case model.ApprovalEventCancellation:
		err = s.resolveEventCancellation(ctx, req, verdict, reviewerID, note, resolvedAt)
	case model.ApprovalManagerPromotion, model.ApprovalAdminPromotion:
		err = s.resolvePromotion(ctx, req, verdict, reviewerID, note, resolvedAt)
	default:
		err = fmt.Errorf("%w: unknown request type %q", ErrValidation, req.Type)
	}
	if err != nil {
		return nil, err
	}

	req.Status = verdict
	req.ReviewerID = &reviewerID
	req.ReviewNote = note
	req.ResolvedAt = &resolvedAt

	s.notifier.Notify(ctx, notify.New(
		notify.UserTarget(req.RequesterID),
		"Request "+string(verdict),
		fmt.Sprintf("your %s request #%d was %s", req.Type, req.ID, verdict),
		notify.SeverityInfo,
		"",
	))
	return req, nil
}

// stamp resolves the request row conditionally; a miss means another
// resolver got there first.
func (s *ApprovalService) stamp(ctx context.Context, ops StoreOps, req *model.ApprovalRequest, verdict model.ApprovalStatus, reviewerID uint64, note string, at time.Time) error {
	ok, err := ops.StampApproval(ctx, req.ID, verdict, reviewerID, note, at)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: request %d resolved concurrently", ErrAlreadyResolved, req.ID)
	}
	return nil
}

func (s *ApprovalService) resolveEventApproval(ctx context.Context, req *model.ApprovalRequest, verdict model.ApprovalStatus, reviewerID uint64, note string, at time.Time) error {
	return s.ledger.WithEventLock(ctx, *req.EventID, func(ctx context.Context, ops StoreOps, ev *model.Event) error {
		if err := s.stamp(ctx, ops, req, verdict, reviewerID, note, at); err != nil {
			return err
		}
		if verdict == model.ApprovalRejected {
			return s.ledger.CompareAndSetStatus(ctx, ops, ev, model.EventPending, model.EventRejected)
		}
		if err := s.ledger.CompareAndSetStatus(ctx, ops, ev, model.EventPending, model.EventApproved); err != nil {
			return err
		}
		// Create-or-fetch the event's communication channel; approval must
		// never duplicate it.
		_, err := ops.EnsureEventChannel(ctx, ev.ID, uuid.NewString())
		return err
	})
}

func (s *ApprovalService) resolveEventCancellation(ctx context.Context, req *model.ApprovalRequest, verdict model.ApprovalStatus, reviewerID uint64, note string, at time.Time) error {
	return s.ledger.WithEventLock(ctx, *req.EventID, func(ctx context.Context, ops StoreOps, ev *model.Event) error {
		if err := s.stamp(ctx, ops, req, verdict, reviewerID, note, at); err != nil {
			return err
		}
		if verdict == model.ApprovalRejected {
			// Rejection restores normal operation; no registration changes.
			return s.ledger.CompareAndSetStatus(ctx, ops, ev, model.EventCancelPending, model.EventApproved)
		}
		return s.cancelEventTx(ctx, ops, ev, req.Reason, reviewerID, at)
	})
}

func (s *ApprovalService) resolvePromotion(ctx context.Context, req *model.ApprovalRequest, verdict model.ApprovalStatus, reviewerID uint64, note string, at time.Time) error {
	return s.store.Transact(ctx, func(ops StoreOps) error {
		if err := s.stamp(ctx, ops, req, verdict, reviewerID, note, at); err != nil {
			return err
		}
		if verdict != model.ApprovalApproved {
			return nil
		}
		role := model.RoleOrganizer
		if req.Type == model.ApprovalAdminPromotion {
			role = model.RoleAdmin
		}
		return ops.SetUserRole(ctx, req.RequesterID, role)
	})
}

// cancelEventTx flips the event to CANCELLED, records the cancellation
// metadata and cascades to every open registration — all inside the
// caller's transaction so a crash mid-cascade rolls the whole decision
// back.  A cascade error surfaces as ErrCascadeFailure.
func (s *ApprovalService) cancelEventTx(ctx context.Context, ops StoreOps, ev *model.Event, reason string, actorID uint64, at time.Time) error {
	if err := s.ledger.CompareAndSetStatus(ctx, ops, ev, ev.Status, model.EventCancelled); err != nil {
		return err
	}
	if err := ops.SetEventCancellation(ctx, ev.ID, reason, actorID, at); err != nil {
		return err
	}
	if _, err := ops.CancelOpenRegistrations(ctx, ev.ID); err != nil {
		return fmt.Errorf("%w: event %d: %v", ErrCascadeFailure, ev.ID, err)
	}
	return nil
}

// ForceCancel is the admin shortcut that cancels an APPROVED (or
// CANCEL_PENDING) event without waiting for a request to be reviewed.  The
// bypass still leaves an audit trail: a pending cancellation request, if
// one exists, is stamped approved; otherwise an already-resolved request
// row is written.
func (s *ApprovalService) ForceCancel(ctx context.Context, eventID, adminID uint64, reason string) (*model.Event, error) {
	var out *model.Event
	at := now()
	err := s.ledger.WithEventLock(ctx, eventID, func(ctx context.Context, ops StoreOps, ev *model.Event) error {
		pending, err := ops.PendingApproval(ctx, model.ApprovalEventCancellation, ev.ID, 0)
		switch {
		case err == nil:
			if _, err := ops.StampApproval(ctx, pending.ID, model.ApprovalApproved, adminID, "forced cancellation", at); err != nil {
				return err
			}
		case errors.Is(err, ErrNotFound):
			evID := ev.ID
			audit := &model.ApprovalRequest{
				Type:        model.ApprovalEventCancellation,
				EventID:     &evID,
				RequesterID: adminID,
				Reason:      reason,
				Status:      model.ApprovalApproved,
				ReviewerID:  &adminID,
				ReviewNote:  "forced cancellation",
				ResolvedAt:  &at,
			}
			if err := ops.CreateApproval(ctx, audit); err != nil {
				return err
			}
		default:
			return err
		}
		if err := s.cancelEventTx(ctx, ops, ev, reason, adminID, at); err != nil {
			return err
		}
		out = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notify.New(
		notify.EventTarget(eventID),
		"Event cancelled",
		fmt.Sprintf("%q was cancelled: %s", out.Title, reason),
		notify.SeverityWarning,
		"",
	))
	return out, nil
}

// Get returns a request by ID.
func (s *ApprovalService) Get(ctx context.Context, id uint64) (*model.ApprovalRequest, error) {
	return s.store.ApprovalByID(ctx, id)
}

// List returns requests filtered by status; an empty status lists all.
func (s *ApprovalService) List(ctx context.Context, status model.ApprovalStatus) ([]model.ApprovalRequest, error) {
	return s.store.ListApprovals(ctx, status)
}
