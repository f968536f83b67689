// Package service implements the event lifecycle coordinator: the status
// ledger serializing per-event mutations, the approval request dispatcher,
// the registration admission controller and the attendance manager.  All
// services depend on the Store interface for persistence and on a Notifier
// for the fire-and-forget side channel.
package service

import "errors"

// Sentinel errors returned by the lifecycle services.  Handlers compare
// with errors.Is and translate to HTTP statuses; wrapped messages carry the
// current authoritative state where a conflict was observed.
var (
	// ErrInvalidTransition rejects a status move the event machine does not
	// define, including any move out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStatusConflict means the event status changed under the caller's
	// feet between read and write.
	ErrStatusConflict = errors.New("event status conflict")

	// ErrAlreadyResolved rejects resolving an approval request twice.
	// Approval requests are audit-sensitive, so unlike registration
	// cancellation this is an error the caller needs to see.
	ErrAlreadyResolved = errors.New("approval request already resolved")

	// ErrDuplicateRequest rejects creating a second pending request of the
	// same (type, event) pair.
	ErrDuplicateRequest = errors.New("a pending request of this kind already exists")

	// ErrEventNotOpen rejects registration traffic on an event that is not
	// in the APPROVED state.
	ErrEventNotOpen = errors.New("event is not open for registration")

	// ErrAlreadyRegistered rejects a duplicate non-cancelled registration
	// for the same (volunteer, event) pair.
	ErrAlreadyRegistered = errors.New("volunteer already registered for this event")

	// ErrNotWaitlisted rejects admission of a registration that is not
	// waiting for a slot.
	ErrNotWaitlisted = errors.New("registration is not waitlisted")

	// ErrCapacityExceeded is the normal business rejection when an event is
	// full; it never mutates the participant counter.
	ErrCapacityExceeded = errors.New("event capacity exceeded")

	// ErrAlreadyCheckedOut rejects a second check-out of an attendance.
	ErrAlreadyCheckedOut = errors.New("attendance already checked out")

	// ErrAlreadySubmitted rejects a second feedback submission on the same
	// attendance.
	ErrAlreadySubmitted = errors.New("feedback already submitted")

	// ErrNotEligible rejects feedback on an attendance that has not been
	// checked out and completed.
	ErrNotEligible = errors.New("attendance not eligible for feedback")

	// ErrInvalidRating rejects a feedback rating outside [1,5].
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrValidation covers malformed input on create operations.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden means the actor is not allowed to perform the operation
	// on this resource.
	ErrForbidden = errors.New("forbidden")

	// ErrCascadeFailure means the cancellation cascade could not be applied
	// atomically; the whole decision was rolled back and should be retried.
	ErrCascadeFailure = errors.New("cancellation cascade failed")
)
