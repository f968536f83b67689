package model

import "time"

// AttendanceStatus enumerates the states of an attendance record.
type AttendanceStatus string

const (
	AttendanceInProgress AttendanceStatus = "IN_PROGRESS" // created at admission, volunteer expected on site
	AttendanceCompleted  AttendanceStatus = "COMPLETED"   // checked out, eligible for feedback
	AttendanceAbsent     AttendanceStatus = "ABSENT"      // marked by the owner when the volunteer never showed
)

// Feedback is a single rating a volunteer submits for a completed
// attendance.  Rating is constrained to [1,5]; a record accepts at most one
// submission.
type Feedback struct {
	Rating      uint8     // attendances.feedback_rating
	Comment     string    // attendances.feedback_comment
	SubmittedAt time.Time // attendances.feedback_at
}

// Attendance tracks a volunteer's presence at an event as stored in the
// `attendances` table.  Exactly one row exists per REGISTERED registration
// (unique key on registration_id); it is created when the registration is
// admitted and never deleted independently of it.  EventID duplicates the
// registration's event reference so the rating aggregate can be recomputed
// without a join per row.
//
// Fields:
//  ID             – primary key identifier.
//  RegistrationID – the admitted registration (unique).
//  EventID        – event the registration belongs to.
//  Status         – current attendance state.
//  CheckOutTime   – when the volunteer checked out (nullable).
//  Feedback       – the one-shot feedback submission (nil until submitted).
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Attendance struct {
	ID             uint64           // attendances.id
	RegistrationID uint64           // attendances.registration_id
	EventID        uint64           // attendances.event_id
	Status         AttendanceStatus // attendances.status
	CheckOutTime   *time.Time       // attendances.check_out_time (nullable)
	Feedback       *Feedback        // attendances.feedback_* columns (nullable)
	CreatedAt      time.Time        // attendances.created_at
	UpdatedAt      time.Time        // attendances.updated_at
}
