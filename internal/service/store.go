package service

import (
	"context"
	"errors"
	"time"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

// ErrNotFound is returned by Store implementations when an entity does not
// exist.  The SQL store maps sql.ErrNoRows onto it.
var ErrNotFound = errors.New("not found")

// Store is the persistence boundary of the lifecycle coordinator.  The
// plain methods run against the pool; Transact runs fn against a single
// transaction, committing when fn returns nil and rolling back otherwise.
// The services own all coordination logic (status machine, capacity gate,
// counters, idempotency); the store only reads and writes rows, with the
// status-conditioned updates acting as compare-and-set primitives.
type Store interface {
	StoreOps

	// Transact executes fn atomically.  Every mutation fn performs through
	// ops is committed or rolled back as one unit.
	Transact(ctx context.Context, fn func(ops StoreOps) error) error
}

// StoreOps is the operation set available both on the pool and inside a
// transaction.
type StoreOps interface {
	// Events.
	EventByID(ctx context.Context, id uint64) (*model.Event, error)
	CreateEvent(ctx context.Context, ev *model.Event) error
	ListEvents(ctx context.Context, status model.EventStatus) ([]model.Event, error)
	// UpdateEventStatus flips the status if the current value is one of
	// from; it reports false when no row matched (compare-and-set miss).
	UpdateEventStatus(ctx context.Context, id uint64, from []model.EventStatus, to model.EventStatus) (bool, error)
	SetEventCancellation(ctx context.Context, id uint64, reason string, actorID uint64, at time.Time) error
	// AdjustEventParticipants adds delta to the participant counter,
	// floored at zero.
	AdjustEventParticipants(ctx context.Context, id uint64, delta int) error
	SetEventParticipants(ctx context.Context, id uint64, n uint32) error
	SetEventRating(ctx context.Context, id uint64, avg float64, count uint32) error
	// CountRegistered recounts REGISTERED rows for reconciliation.
	CountRegistered(ctx context.Context, eventID uint64) (uint32, error)
	// EventRatingStats returns the sum and count of submitted feedback
	// ratings across the event's attendances.
	EventRatingStats(ctx context.Context, eventID uint64) (sum int64, count uint32, err error)
	// EnsureEventChannel creates the event's communication channel if it
	// does not exist and returns its room ID either way.
	EnsureEventChannel(ctx context.Context, eventID uint64, roomID string) (string, error)

	// Approval requests.
	ApprovalByID(ctx context.Context, id uint64) (*model.ApprovalRequest, error)
	CreateApproval(ctx context.Context, req *model.ApprovalRequest) error
	// PendingApproval finds the pending request of the given type for an
	// event (eventID > 0) or for a requester (promotion types).  Returns
	// ErrNotFound when none exists.
	PendingApproval(ctx context.Context, typ model.ApprovalType, eventID, requesterID uint64) (*model.ApprovalRequest, error)
	ListApprovals(ctx context.Context, status model.ApprovalStatus) ([]model.ApprovalRequest, error)
	// StampApproval resolves a pending request; it reports false when the
	// request was no longer pending (compare-and-set miss).
	StampApproval(ctx context.Context, id uint64, status model.ApprovalStatus, reviewerID uint64, note string, at time.Time) (bool, error)

	// Registrations.
	RegistrationByID(ctx context.Context, id uint64) (*model.Registration, error)
	RegistrationForVolunteer(ctx context.Context, volunteerID, eventID uint64) (*model.Registration, error)
	CreateRegistration(ctx context.Context, reg *model.Registration) error
	RegistrationsByEvent(ctx context.Context, eventID uint64) ([]model.Registration, error)
	// UpdateRegistrationStatus flips the status if the current value is one
	// of from; it reports false when no row matched.
	UpdateRegistrationStatus(ctx context.Context, id uint64, from []model.RegistrationStatus, to model.RegistrationStatus) (bool, error)
	// CancelOpenRegistrations flips every WAITLISTED or REGISTERED row of
	// the event to EVENT_CANCELLED and returns how many rows changed.
	CancelOpenRegistrations(ctx context.Context, eventID uint64) (int64, error)

	// Attendances.
	AttendanceByID(ctx context.Context, id uint64) (*model.Attendance, error)
	AttendanceForRegistration(ctx context.Context, registrationID uint64) (*model.Attendance, error)
	CreateAttendance(ctx context.Context, att *model.Attendance) error
	// SetAttendanceCheckOut completes an in-progress attendance; it reports
	// false when the row was not in-progress or already checked out.
	SetAttendanceCheckOut(ctx context.Context, id uint64, at time.Time) (bool, error)
	// SetAttendanceFeedback records the one-shot feedback; it reports false
	// when feedback was already present or the row is not completed.
	SetAttendanceFeedback(ctx context.Context, id uint64, fb model.Feedback) (bool, error)

	// Users.
	SetUserRole(ctx context.Context, userID uint64, role string) error
}
