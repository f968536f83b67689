package service

import (
	"context"
	"fmt"
	"math"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
	"github.com/dang0801205/volunteerhub-sub000/internal/notify"
)

// AttendanceService manages the check-out/feedback tail of a registration's
// life and keeps the event's rating aggregate consistent.  Feedback
// submission and the aggregate recompute run under the event's StatusLedger
// lock so two concurrent submissions cannot lose each other's update.
type AttendanceService struct {
	ledger   *StatusLedger
	store    Store
	notifier Notifier
}

// NewAttendanceService constructs an AttendanceService with its
// dependencies.
func NewAttendanceService(ledger *StatusLedger, store Store, notifier Notifier) *AttendanceService {
	if ledger == nil || store == nil || notifier == nil {
		panic("nil dependency passed to NewAttendanceService")
	}
	return &AttendanceService{ledger: ledger, store: store, notifier: notifier}
}

// allowedActor checks that actorID may act on the attendance: the attending
// volunteer themselves, the event owner or an admin.  Anyone else gets
// ErrForbidden.
func (s *AttendanceService) allowedActor(ctx context.Context, att *model.Attendance, actorID uint64, actorRole string) error {
	if actorRole == model.RoleAdmin {
		return nil
	}
	reg, err := s.store.RegistrationByID(ctx, att.RegistrationID)
	if err != nil {
		return err
	}
	if actorID == reg.VolunteerID {
		return nil
	}
	ev, err := s.store.EventByID(ctx, att.EventID)
	if err != nil {
		return err
	}
	if actorID == ev.OwnerID {
		return nil
	}
	return fmt.Errorf("%w: user %d may not act on attendance %d", ErrForbidden, actorID, att.ID)
}

// CheckOut completes an in-progress attendance, recording the check-out
// time.  The volunteer, the event owner or an admin may check out; a second
// check-out fails with ErrAlreadyCheckedOut and an absent attendance with
// ErrNotEligible.
func (s *AttendanceService) CheckOut(ctx context.Context, attendanceID, actorID uint64, actorRole string) (*model.Attendance, error) {
	att, err := s.store.AttendanceByID(ctx, attendanceID)
	if err != nil {
		return nil, err
	}
	if err := s.allowedActor(ctx, att, actorID, actorRole); err != nil {
		return nil, err
	}
	if att.CheckOutTime != nil {
		return nil, fmt.Errorf("%w: attendance %d checked out at %s", ErrAlreadyCheckedOut, att.ID, att.CheckOutTime.Format("2006-01-02 15:04:05"))
	}
	if att.Status != model.AttendanceInProgress {
		return nil, fmt.Errorf("%w: attendance %d is %s", ErrNotEligible, att.ID, att.Status)
	}
	at := now()
	err = s.store.Transact(ctx, func(ops StoreOps) error {
		ok, err := ops.SetAttendanceCheckOut(ctx, att.ID, at)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: attendance %d changed concurrently", ErrAlreadyCheckedOut, att.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	att.Status = model.AttendanceCompleted
	att.CheckOutTime = &at
	return att, nil
}

// SubmitFeedback records the volunteer's one-shot rating for a completed
// attendance and recomputes the event's rating aggregate in the same
// critical section.  Feedback is the volunteer's own voice: only the
// attending volunteer may submit it, nobody on their behalf.  Rating must
// lie in [1,5]; feedback before check-out fails with ErrNotEligible and a
// second submission with ErrAlreadySubmitted.
func (s *AttendanceService) SubmitFeedback(ctx context.Context, attendanceID, actorID uint64, rating uint8, comment string) (*model.Attendance, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	att, err := s.store.AttendanceByID(ctx, attendanceID)
	if err != nil {
		return nil, err
	}
	reg, err := s.store.RegistrationByID(ctx, att.RegistrationID)
	if err != nil {
		return nil, err
	}
	if actorID != reg.VolunteerID {
		return nil, fmt.Errorf("%w: feedback on attendance %d belongs to volunteer %d", ErrForbidden, att.ID, reg.VolunteerID)
	}
	if att.Feedback != nil {
		return nil, fmt.Errorf("%w: attendance %d", ErrAlreadySubmitted, att.ID)
	}
	if att.Status != model.AttendanceCompleted || att.CheckOutTime == nil {
		return nil, fmt.Errorf("%w: attendance %d is %s", ErrNotEligible, att.ID, att.Status)
	}

	fb := model.Feedback{Rating: rating, Comment: comment, SubmittedAt: now()}
	err = s.ledger.WithEventLock(ctx, att.EventID, func(ctx context.Context, ops StoreOps, ev *model.Event) error {
		ok, err := ops.SetAttendanceFeedback(ctx, att.ID, fb)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: attendance %d", ErrAlreadySubmitted, att.ID)
		}
		return s.recomputeTx(ctx, ops, ev.ID)
	})
	if err != nil {
		return nil, err
	}
	att.Feedback = &fb

	s.notifier.Notify(ctx, notify.New(
		notify.EventTarget(att.EventID),
		"Feedback received",
		fmt.Sprintf("attendance %d rated %d/5", att.ID, rating),
		notify.SeverityInfo,
		"",
	))
	return att, nil
}

// RecomputeEventRating recomputes the event's average rating and rating
// count from its attendance rows under the event lock.  It is idempotent:
// with no new feedback the stored aggregate is unchanged.
func (s *AttendanceService) RecomputeEventRating(ctx context.Context, eventID uint64) error {
	return s.ledger.WithEventLock(ctx, eventID, func(ctx context.Context, ops StoreOps, ev *model.Event) error {
		return s.recomputeTx(ctx, ops, eventID)
	})
}

// recomputeTx reads the rating stats and writes the aggregate inside the
// caller's transaction.  The average is rounded to one decimal here, not in
// SQL, so every Store implementation agrees on the value.
func (s *AttendanceService) recomputeTx(ctx context.Context, ops StoreOps, eventID uint64) error {
	sum, count, err := ops.EventRatingStats(ctx, eventID)
	if err != nil {
		return err
	}
	return ops.SetEventRating(ctx, eventID, roundRating(sum, count), count)
}

// roundRating returns the mean rounded to one decimal; zero when no
// feedback exists.
func roundRating(sum int64, count uint32) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}

// Get returns an attendance by ID.
func (s *AttendanceService) Get(ctx context.Context, id uint64) (*model.Attendance, error) {
	return s.store.AttendanceByID(ctx, id)
}
