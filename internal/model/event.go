package model

import "time"

// EventStatus enumerates the lifecycle states of a volunteering event.
// Transitions between states are restricted to the machine encoded in
// eventTransitions; REJECTED and CANCELLED are terminal.
type EventStatus string

const (
	EventPending       EventStatus = "PENDING"        // proposed by an owner, awaiting admin decision
	EventApproved      EventStatus = "APPROVED"       // publicly visible, open for registration
	EventRejected      EventStatus = "REJECTED"       // admin declined the proposal (terminal)
	EventCancelPending EventStatus = "CANCEL_PENDING" // owner asked to cancel, awaiting admin decision
	EventCancelled     EventStatus = "CANCELLED"      // cancelled by admin decision or force (terminal)
)

// eventTransitions is the single source of truth for legal status moves.
// APPROVED -> CANCELLED covers the admin force-cancel shortcut that skips
// the CANCEL_PENDING request step.
var eventTransitions = map[EventStatus][]EventStatus{
	EventPending:       {EventApproved, EventRejected},
	EventApproved:      {EventCancelPending, EventCancelled},
	EventCancelPending: {EventApproved, EventCancelled},
}

// CanTransitionTo reports whether moving from s to next is a legal step of
// the event status machine.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	for _, t := range eventTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s EventStatus) Terminal() bool {
	return len(eventTransitions[s]) == 0
}

// Event represents a volunteering event as stored in the `events` table.
// The participant counter and the rating aggregate are owned exclusively
// by this row; no component derives them ad hoc from dependent rows
// during normal operation.
//
// Fields:
//  ID                  – primary key identifier.
//  OwnerID             – user who proposed the event.
//  Title               – short human-readable name.
//  Description         – free-form description.
//  MaxParticipants     – hard capacity bound for admissions.
//  CurrentParticipants – number of admitted (REGISTERED) volunteers.
//  Status              – current lifecycle state.
//  AverageRating       – mean of submitted feedback ratings, one decimal.
//  RatingCount         – number of feedback submissions aggregated.
//  CancelReason        – why the event was cancelled (nullable).
//  CancelledBy         – user who decided the cancellation (nullable).
//  CancelledAt         – when the cancellation was decided (nullable).
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type Event struct {
	ID                  uint64      // events.id
	OwnerID             uint64      // events.owner_id
	Title               string      // events.title
	Description         string      // events.description
	MaxParticipants     uint32      // events.max_participants
	CurrentParticipants uint32      // events.current_participants
	Status              EventStatus // events.status
	AverageRating       float64     // events.average_rating
	RatingCount         uint32      // events.rating_count
	CancelReason        *string     // events.cancel_reason (nullable)
	CancelledBy         *uint64     // events.cancelled_by (nullable)
	CancelledAt         *time.Time  // events.cancelled_at (nullable)
	CreatedAt           time.Time   // events.created_at
	UpdatedAt           time.Time   // events.updated_at
}

// EventChannel is the communication channel attached to an approved event.
// There is at most one channel per event (unique key on event_id); approval
// creates it idempotently.  The channel itself (messages, membership) is an
// external collaborator's concern.
//
// Fields:
//  ID        – primary key identifier.
//  EventID   – the event this channel belongs to (unique).
//  RoomID    – opaque room identifier handed to the chat service.
//  CreatedAt – creation timestamp.
type EventChannel struct {
	ID        uint64    // event_channels.id
	EventID   uint64    // event_channels.event_id
	RoomID    string    // event_channels.room_id
	CreatedAt time.Time // event_channels.created_at
}
