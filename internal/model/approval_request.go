package model

import "time"

// ApprovalType enumerates the kinds of requests the dispatcher resolves.
// EVENT_APPROVAL and EVENT_CANCELLATION reference an event; the promotion
// types reference only the requester.
type ApprovalType string

const (
	ApprovalEventApproval     ApprovalType = "EVENT_APPROVAL"
	ApprovalEventCancellation ApprovalType = "EVENT_CANCELLATION"
	ApprovalManagerPromotion  ApprovalType = "MANAGER_PROMOTION"
	ApprovalAdminPromotion    ApprovalType = "ADMIN_PROMOTION"
)

// NeedsEvent reports whether requests of this type must reference an event.
func (t ApprovalType) NeedsEvent() bool {
	return t == ApprovalEventApproval || t == ApprovalEventCancellation
}

// ApprovalStatus enumerates the decision states of a request.  A request is
// resolved exactly once; APPROVED and REJECTED are immutable.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// ApprovalRequest is an append-only decision log entry as stored in the
// `approval_requests` table.  At most one PENDING request of a given
// (type, event) pair exists at a time.  The reviewer stamp is written once
// at resolution and never re-written.
//
// Fields:
//  ID          – primary key identifier.
//  Type        – kind of request (see ApprovalType).
//  EventID     – referenced event; nil for promotion requests.
//  RequesterID – user who proposed the change.
//  Reason      – requester-supplied justification (may be empty).
//  Status      – PENDING until resolved, then APPROVED or REJECTED.
//  ReviewerID  – admin who resolved the request (nullable until resolved).
//  ReviewNote  – note recorded at resolution.
//  ResolvedAt  – when the request was resolved (nullable until resolved).
//  CreatedAt   – creation timestamp.
type ApprovalRequest struct {
	ID          uint64         // approval_requests.id
	Type        ApprovalType   // approval_requests.type
	EventID     *uint64        // approval_requests.event_id (nullable)
	RequesterID uint64         // approval_requests.requester_id
	Reason      string         // approval_requests.reason
	Status      ApprovalStatus // approval_requests.status
	ReviewerID  *uint64        // approval_requests.reviewer_id (nullable)
	ReviewNote  string         // approval_requests.review_note
	ResolvedAt  *time.Time     // approval_requests.resolved_at (nullable)
	CreatedAt   time.Time      // approval_requests.created_at
}
