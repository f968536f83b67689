package repository

import (
	"context"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

const registrationColumns = `id, volunteer_id, event_id, status, created_at, updated_at`

func scanRegistration(row interface{ Scan(dest ...any) error }) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(&reg.ID, &reg.VolunteerID, &reg.EventID, &reg.Status, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// RegistrationByID fetches a single registration.
func (r *queries) RegistrationByID(ctx context.Context, id uint64) (*model.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations WHERE id = ? LIMIT 1`
	reg, err := scanRegistration(r.q.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return reg, nil
}

// RegistrationForVolunteer fetches the (volunteer, event) row regardless of
// status; the unique key guarantees at most one.
func (r *queries) RegistrationForVolunteer(ctx context.Context, volunteerID, eventID uint64) (*model.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations
		WHERE volunteer_id = ? AND event_id = ? LIMIT 1`
	reg, err := scanRegistration(r.q.QueryRowContext(ctx, q, volunteerID, eventID))
	if err != nil {
		return nil, notFound(err)
	}
	return reg, nil
}

// CreateRegistration inserts a registration row and queries it back.
func (r *queries) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	const q = `INSERT INTO registrations (volunteer_id, event_id, status) VALUES (?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q, reg.VolunteerID, reg.EventID, reg.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	const sel = `SELECT ` + registrationColumns + ` FROM registrations WHERE id = ?`
	got, err := scanRegistration(r.q.QueryRowContext(ctx, sel, uint64(id)))
	if err != nil {
		return err
	}
	*reg = *got
	return nil
}

// RegistrationsByEvent returns every registration of an event, oldest
// first so waitlist order is visible.
func (r *queries) RegistrationsByEvent(ctx context.Context, eventID uint64) ([]model.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations
		WHERE event_id = ? ORDER BY created_at ASC`
	rows, err := r.q.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *reg)
	}
	return out, rows.Err()
}

// UpdateRegistrationStatus flips the status when the current value matches
// one of from; false means a compare-and-set miss.
func (r *queries) UpdateRegistrationStatus(ctx context.Context, id uint64, from []model.RegistrationStatus, to model.RegistrationStatus) (bool, error) {
	args := make([]any, 0, len(from)+2)
	args = append(args, to, id)
	for _, f := range from {
		args = append(args, f)
	}
	res, err := r.q.ExecContext(ctx,
		`UPDATE registrations SET status = ?, updated_at = NOW() WHERE id = ? AND status IN (`+placeholders(len(from))+`)`,
		args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CancelOpenRegistrations flips every open registration of the event to
// EVENT_CANCELLED in one statement and returns how many rows changed.
func (r *queries) CancelOpenRegistrations(ctx context.Context, eventID uint64) (int64, error) {
	const q = `UPDATE registrations SET status = ?, updated_at = NOW()
		WHERE event_id = ? AND status IN (?, ?)`
	res, err := r.q.ExecContext(ctx, q,
		model.RegistrationEventCancelled, eventID,
		model.RegistrationWaitlisted, model.RegistrationRegistered)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
