package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

const attendanceColumns = `id, registration_id, event_id, status, check_out_time,
	feedback_rating, feedback_comment, feedback_at, created_at, updated_at`

func scanAttendance(row interface{ Scan(dest ...any) error }) (*model.Attendance, error) {
	var (
		att        model.Attendance
		checkOut   sql.NullTime
		fbRating   sql.NullInt64
		fbComment  sql.NullString
		fbAt       sql.NullTime
	)
	err := row.Scan(
		&att.ID, &att.RegistrationID, &att.EventID, &att.Status,
		&checkOut, &fbRating, &fbComment, &fbAt,
		&att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if checkOut.Valid {
		at := checkOut.Time.UTC()
		att.CheckOutTime = &at
	}
	if fbRating.Valid {
		fb := model.Feedback{Rating: uint8(fbRating.Int64)}
		if fbComment.Valid {
			fb.Comment = fbComment.String
		}
		if fbAt.Valid {
			fb.SubmittedAt = fbAt.Time.UTC()
		}
		att.Feedback = &fb
	}
	return &att, nil
}

// AttendanceByID fetches a single attendance.
func (r *queries) AttendanceByID(ctx context.Context, id uint64) (*model.Attendance, error) {
	const q = `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = ? LIMIT 1`
	att, err := scanAttendance(r.q.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return att, nil
}

// AttendanceForRegistration fetches the attendance of an admitted
// registration; the unique key guarantees at most one.
func (r *queries) AttendanceForRegistration(ctx context.Context, registrationID uint64) (*model.Attendance, error) {
	const q = `SELECT ` + attendanceColumns + ` FROM attendances WHERE registration_id = ? LIMIT 1`
	att, err := scanAttendance(r.q.QueryRowContext(ctx, q, registrationID))
	if err != nil {
		return nil, notFound(err)
	}
	return att, nil
}

// CreateAttendance inserts an attendance row and queries it back.
func (r *queries) CreateAttendance(ctx context.Context, att *model.Attendance) error {
	const q = `INSERT INTO attendances (registration_id, event_id, status) VALUES (?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q, att.RegistrationID, att.EventID, att.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	const sel = `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = ?`
	got, err := scanAttendance(r.q.QueryRowContext(ctx, sel, uint64(id)))
	if err != nil {
		return err
	}
	*att = *got
	return nil
}

// SetAttendanceCheckOut completes an in-progress attendance.  The status
// and null guards make the update a compare-and-set: false means the row
// was already checked out or not in progress.
func (r *queries) SetAttendanceCheckOut(ctx context.Context, id uint64, at time.Time) (bool, error) {
	const q = `UPDATE attendances SET status = ?, check_out_time = ?, updated_at = NOW()
		WHERE id = ? AND status = ? AND check_out_time IS NULL`
	res, err := r.q.ExecContext(ctx, q, model.AttendanceCompleted, at, id, model.AttendanceInProgress)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetAttendanceFeedback records the one-shot feedback.  False means the
// row already carries feedback or is not completed.
func (r *queries) SetAttendanceFeedback(ctx context.Context, id uint64, fb model.Feedback) (bool, error) {
	const q = `UPDATE attendances
		SET feedback_rating = ?, feedback_comment = ?, feedback_at = ?, updated_at = NOW()
		WHERE id = ? AND status = ? AND feedback_rating IS NULL`
	res, err := r.q.ExecContext(ctx, q, fb.Rating, fb.Comment, fb.SubmittedAt, id, model.AttendanceCompleted)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
