package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

const eventColumns = `id, owner_id, title, description, max_participants, current_participants,
	status, average_rating, rating_count, cancel_reason, cancelled_by, cancelled_at,
	created_at, updated_at`

// scanEvent reads one events row, unpacking the nullable cancellation
// columns into pointers.
func scanEvent(row interface{ Scan(dest ...any) error }) (*model.Event, error) {
	var (
		ev          model.Event
		reason      sql.NullString
		cancelledBy sql.NullInt64
		cancelledAt sql.NullTime
	)
	err := row.Scan(
		&ev.ID, &ev.OwnerID, &ev.Title, &ev.Description,
		&ev.MaxParticipants, &ev.CurrentParticipants, &ev.Status,
		&ev.AverageRating, &ev.RatingCount,
		&reason, &cancelledBy, &cancelledAt,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reason.Valid {
		r := reason.String
		ev.CancelReason = &r
	}
	if cancelledBy.Valid {
		by := uint64(cancelledBy.Int64)
		ev.CancelledBy = &by
	}
	if cancelledAt.Valid {
		at := cancelledAt.Time.UTC()
		ev.CancelledAt = &at
	}
	return &ev, nil
}

// EventByID fetches a single event.
func (r *queries) EventByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ? LIMIT 1`
	ev, err := scanEvent(r.q.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return ev, nil
}

// CreateEvent inserts a new event row and queries it back to populate the
// generated ID and timestamps.
func (r *queries) CreateEvent(ctx context.Context, ev *model.Event) error {
	const q = `INSERT INTO events (owner_id, title, description, max_participants, status)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q, ev.OwnerID, ev.Title, ev.Description, ev.MaxParticipants, ev.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	const sel = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	got, err := scanEvent(r.q.QueryRowContext(ctx, sel, uint64(id)))
	if err != nil {
		return err
	}
	*ev = *got
	return nil
}

// ListEvents returns events ordered newest first, optionally filtered by
// status.
func (r *queries) ListEvents(ctx context.Context, status model.EventStatus) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

// UpdateEventStatus flips the status when the current value matches one of
// from.  Reports false when no row matched, which the services treat as a
// compare-and-set miss.
func (r *queries) UpdateEventStatus(ctx context.Context, id uint64, from []model.EventStatus, to model.EventStatus) (bool, error) {
	args := make([]any, 0, len(from)+2)
	args = append(args, to, id)
	for _, f := range from {
		args = append(args, f)
	}
	res, err := r.q.ExecContext(ctx,
		`UPDATE events SET status = ?, updated_at = NOW() WHERE id = ? AND status IN (`+placeholders(len(from))+`)`,
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

// SetEventCancellation records who cancelled the event, when and why.
func (r *queries) SetEventCancellation(ctx context.Context, id uint64, reason string, actorID uint64, at time.Time) error {
	const q = `UPDATE events SET cancel_reason = ?, cancelled_by = ?, cancelled_at = ?, updated_at = NOW()
		WHERE id = ?`
	_, err := r.q.ExecContext(ctx, q, reason, actorID, at, id)
	return err
}

// AdjustEventParticipants adds delta to the participant counter, floored
// at zero.
func (r *queries) AdjustEventParticipants(ctx context.Context, id uint64, delta int) error {
	const q = `UPDATE events
		SET current_participants = GREATEST(0, CAST(current_participants AS SIGNED) + ?),
		    updated_at = NOW()
		WHERE id = ?`
	_, err := r.q.ExecContext(ctx, q, delta, id)
	return err
}

// SetEventParticipants overwrites the participant counter (reconciliation).
func (r *queries) SetEventParticipants(ctx context.Context, id uint64, n uint32) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE events SET current_participants = ?, updated_at = NOW() WHERE id = ?`, n, id)
	return err
}

// SetEventRating overwrites the rating aggregate.
func (r *queries) SetEventRating(ctx context.Context, id uint64, avg float64, count uint32) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE events SET average_rating = ?, rating_count = ?, updated_at = NOW() WHERE id = ?`,
		avg, count, id)
	return err
}

// CountRegistered recounts REGISTERED rows for the event.
func (r *queries) CountRegistered(ctx context.Context, eventID uint64) (uint32, error) {
	var n uint32
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = ? AND status = ?`,
		eventID, model.RegistrationRegistered).Scan(&n)
	return n, err
}

// EventRatingStats sums the submitted feedback ratings across the event's
// attendances.
func (r *queries) EventRatingStats(ctx context.Context, eventID uint64) (int64, uint32, error) {
	var (
		sum   int64
		count uint32
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(feedback_rating), 0), COUNT(feedback_rating)
		 FROM attendances WHERE event_id = ?`, eventID).Scan(&sum, &count)
	return sum, count, err
}

// EnsureEventChannel creates the event's channel row unless one already
// exists and returns the room ID either way.  Callers run this inside the
// event's critical section, so select-then-insert cannot race with itself.
func (r *queries) EnsureEventChannel(ctx context.Context, eventID uint64, roomID string) (string, error) {
	var existing string
	err := r.q.QueryRowContext(ctx,
		`SELECT room_id FROM event_channels WHERE event_id = ? LIMIT 1`, eventID).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	if _, err := r.q.ExecContext(ctx,
		`INSERT INTO event_channels (event_id, room_id) VALUES (?, ?)`, eventID, roomID); err != nil {
		return "", err
	}
	return roomID, nil
}
