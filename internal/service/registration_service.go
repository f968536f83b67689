package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
	"github.com/dang0801205/volunteerhub-sub000/internal/notify"
)

// RegistrationService is the admission controller: it moves a volunteer's
// registration through waitlisting, capacity-gated admission and
// cancellation, and maintains the event's participant counter.  Every
// mutation runs inside the event's StatusLedger critical section, so
// capacity check, counter increment and attendance creation form one atomic
// unit and can never interleave with a cancellation cascade.
type RegistrationService struct {
	ledger   *StatusLedger
	store    Store
	notifier Notifier
}

// NewRegistrationService constructs a RegistrationService with its
// dependencies.
func NewRegistrationService(ledger *StatusLedger, store Store, notifier Notifier) *RegistrationService {
	if ledger == nil || store == nil || notifier == nil {
		panic("nil dependency passed to NewRegistrationService")
	}
	return &RegistrationService{ledger: ledger, store: store, notifier: notifier}
}

// Register signs a volunteer up for an APPROVED event as WAITLISTED.  A
// previously cancelled registration for the same pair is reactivated
// instead of duplicated; any open one fails with ErrAlreadyRegistered.
func (s *RegistrationService) Register(ctx context.Context, volunteerID, eventID uint64) (*model.Registration, error) {
	var reg *model.Registration
	err := s.ledger.WithEventLock(ctx, eventID, func(ctx context.Context, ops StoreOps, ev *model.Event) error {
		if ev.Status != model.EventApproved {
			return fmt.Errorf("%w: event %d is %s", ErrEventNotOpen, ev.ID, ev.Status)
		}
		existing, err := ops.RegistrationForVolunteer(ctx, volunteerID, eventID)
		switch {
		case errors.Is(err, ErrNotFound):
			reg = &model.Registration{
				VolunteerID: volunteerID,
				EventID:     eventID,
				Status:      model.RegistrationWaitlisted,
			}
			return ops.CreateRegistration(ctx, reg)
		case err != nil:
			return err
		}
		if existing.Status.Open() {
			return fmt.Errorf("%w: registration %d is %s", ErrAlreadyRegistered, existing.ID, existing.Status)
		}
		// Reactivate the cancelled row rather than inserting a duplicate.
		ok, err := ops.UpdateRegistrationStatus(ctx, existing.ID,
			[]model.RegistrationStatus{model.RegistrationCancelled, model.RegistrationEventCancelled},
			model.RegistrationWaitlisted)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: registration %d changed concurrently", ErrAlreadyRegistered, existing.ID)
		}
		existing.Status = model.RegistrationWaitlisted
		reg = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notify.New(
		notify.EventTarget(eventID),
		"New signup",
		fmt.Sprintf("volunteer %d joined the waitlist", volunteerID),
		notify.SeverityInfo,
		"",
	))
	return reg, nil
}

// Admit promotes a WAITLISTED registration to REGISTERED under the event
// lock.  Capacity check, counter increment and attendance creation execute
// as one critical section inside one transaction; a full event fails with
// ErrCapacityExceeded and changes nothing.
func (s *RegistrationService) Admit(ctx context.Context, registrationID, approverID uint64) (*model.Registration, error) {
	seed, err := s.store.RegistrationByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	var reg *model.Registration
	err = s.ledger.WithEventLock(ctx, seed.EventID, func(ctx context.Context, ops StoreOps, ev *model.Event) error {
		// Reload inside the critical section; the seed read ran unlocked.
		cur, err := ops.RegistrationByID(ctx, registrationID)
		if err != nil {
			return err
		}
		if ev.Status != model.EventApproved {
			return fmt.Errorf("%w: event %d is %s", ErrEventNotOpen, ev.ID, ev.Status)
		}
		if cur.Status != model.RegistrationWaitlisted {
			return fmt.Errorf("%w: registration %d is %s", ErrNotWaitlisted, cur.ID, cur.Status)
		}
		if ev.CurrentParticipants >= ev.MaxParticipants {
			return fmt.Errorf("%w: event %d is at %d/%d", ErrCapacityExceeded, ev.ID, ev.CurrentParticipants, ev.MaxParticipants)
		}
		ok, err := ops.UpdateRegistrationStatus(ctx, cur.ID,
			[]model.RegistrationStatus{model.RegistrationWaitlisted}, model.RegistrationRegistered)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: registration %d changed concurrently", ErrNotWaitlisted, cur.ID)
		}
		if err := ops.AdjustEventParticipants(ctx, ev.ID, +1); err != nil {
			return err
		}
		// Exactly one attendance row per admitted registration; created in
		// the same transaction as the counter increment.
		att := &model.Attendance{
			RegistrationID: cur.ID,
			EventID:        ev.ID,
			Status:         model.AttendanceInProgress,
		}
		if err := ops.CreateAttendance(ctx, att); err != nil {
			return err
		}
		cur.Status = model.RegistrationRegistered
		ev.CurrentParticipants++
		reg = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notify.New(
		notify.UserTarget(reg.VolunteerID),
		"Registration confirmed",
		fmt.Sprintf("you are registered for event %d", reg.EventID),
		notify.SeverityInfo,
		"",
	))
	return reg, nil
}

// Reject cancels a registration on behalf of the event side, recording the
// reason in the notification.  Only the event owner or an admin may reject;
// like Cancel it is idempotent.
func (s *RegistrationService) Reject(ctx context.Context, registrationID, actorID uint64, actorRole, reason string) (*model.Registration, error) {
	reg, changed, err := s.close(ctx, registrationID, func(cur *model.Registration, ev *model.Event) error {
		if actorID == ev.OwnerID || actorRole == model.RoleAdmin {
			return nil
		}
		return fmt.Errorf("%w: only the event owner or an admin may reject registration %d", ErrForbidden, cur.ID)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.notifier.Notify(ctx, notify.New(
			notify.UserTarget(reg.VolunteerID),
			"Registration rejected",
			fmt.Sprintf("your registration for event %d was rejected: %s", reg.EventID, reason),
			notify.SeverityWarning,
			"",
		))
	}
	return reg, nil
}

// Cancel ends a registration.  Only the volunteer themselves, the event
// owner or an admin may cancel; anyone else fails with ErrForbidden.  A
// second cancel of an already-closed registration succeeds without side
// effects: the observable end state is unchanged, so the caller gets the
// row back rather than an error.
func (s *RegistrationService) Cancel(ctx context.Context, registrationID, actorID uint64, actorRole string) (*model.Registration, error) {
	reg, _, err := s.close(ctx, registrationID, func(cur *model.Registration, ev *model.Event) error {
		if actorID == cur.VolunteerID || actorID == ev.OwnerID || actorRole == model.RoleAdmin {
			return nil
		}
		return fmt.Errorf("%w: user %d may not cancel registration %d", ErrForbidden, actorID, cur.ID)
	})
	return reg, err
}

// close flips an open registration to CANCELLED and gives back the
// admitted slot, decrementing the counter at most once.  allow is the
// caller's authorization check; it runs inside the critical section, before
// any state is touched.  close reports whether this call performed the
// change.
func (s *RegistrationService) close(ctx context.Context, registrationID uint64, allow func(cur *model.Registration, ev *model.Event) error) (*model.Registration, bool, error) {
	seed, err := s.store.RegistrationByID(ctx, registrationID)
	if err != nil {
		return nil, false, err
	}
	var (
		reg     *model.Registration
		changed bool
	)
	err = s.ledger.WithEventLock(ctx, seed.EventID, func(ctx context.Context, ops StoreOps, ev *model.Event) error {
		cur, err := ops.RegistrationByID(ctx, registrationID)
		if err != nil {
			return err
		}
		if err := allow(cur, ev); err != nil {
			return err
		}
		reg = cur
		if !cur.Status.Open() {
			// Idempotent: already closed, nothing to do.
			return nil
		}
		wasRegistered := cur.Status == model.RegistrationRegistered
		ok, err := ops.UpdateRegistrationStatus(ctx, cur.ID,
			[]model.RegistrationStatus{model.RegistrationWaitlisted, model.RegistrationRegistered},
			model.RegistrationCancelled)
		if err != nil {
			return err
		}
		if !ok {
			// Lost a race with another close; end state is what the caller
			// wanted anyway.
			return nil
		}
		cur.Status = model.RegistrationCancelled
		changed = true
		if wasRegistered {
			if err := ops.AdjustEventParticipants(ctx, ev.ID, -1); err != nil {
				return err
			}
			if ev.CurrentParticipants > 0 {
				ev.CurrentParticipants--
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return reg, changed, nil
}

// Reconcile recomputes the participant counter from REGISTERED rows under
// the event lock and stores it, correcting any drift from missed
// decrements.  Returns the recomputed value.
func (s *RegistrationService) Reconcile(ctx context.Context, eventID uint64) (uint32, error) {
	var n uint32
	err := s.ledger.WithEventLock(ctx, eventID, func(ctx context.Context, ops StoreOps, ev *model.Event) error {
		count, err := ops.CountRegistered(ctx, eventID)
		if err != nil {
			return err
		}
		if err := ops.SetEventParticipants(ctx, eventID, count); err != nil {
			return err
		}
		n = count
		return nil
	})
	return n, err
}

// ListByEvent returns all registrations of an event.
func (s *RegistrationService) ListByEvent(ctx context.Context, eventID uint64) ([]model.Registration, error) {
	if _, err := s.store.EventByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.RegistrationsByEvent(ctx, eventID)
}
