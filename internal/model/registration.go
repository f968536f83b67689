package model

import "time"

// RegistrationStatus enumerates the states of a volunteer's registration.
// CANCELLED and EVENT_CANCELLED are both terminal but kept distinct so the
// audit trail shows whether the volunteer backed out or the event folded.
type RegistrationStatus string

const (
	RegistrationWaitlisted     RegistrationStatus = "WAITLISTED"      // signed up, not yet admitted
	RegistrationRegistered     RegistrationStatus = "REGISTERED"      // admitted within capacity
	RegistrationCancelled      RegistrationStatus = "CANCELLED"       // cancelled by the volunteer or an owner
	RegistrationEventCancelled RegistrationStatus = "EVENT_CANCELLED" // cascaded from event cancellation
)

// Open reports whether the registration still participates in the event
// lifecycle, i.e. is subject to the cancellation cascade.
func (s RegistrationStatus) Open() bool {
	return s == RegistrationWaitlisted || s == RegistrationRegistered
}

// Registration records a volunteer's signup for an event as stored in the
// `registrations` table.  At most one non-cancelled registration exists per
// (volunteer, event) pair; a CANCELLED row is reactivated to WAITLISTED on
// re-signup instead of being duplicated.
//
// Fields:
//  ID          – primary key identifier.
//  VolunteerID – the volunteer signing up.
//  EventID     – the event being signed up for.
//  Status      – current lifecycle state.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Registration struct {
	ID          uint64             // registrations.id
	VolunteerID uint64             // registrations.volunteer_id
	EventID     uint64             // registrations.event_id
	Status      RegistrationStatus // registrations.status
	CreatedAt   time.Time          // registrations.created_at
	UpdatedAt   time.Time          // registrations.updated_at
}
