package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

const approvalColumns = `id, type, event_id, requester_id, reason, status,
	reviewer_id, review_note, resolved_at, created_at`

func scanApproval(row interface{ Scan(dest ...any) error }) (*model.ApprovalRequest, error) {
	var (
		req        model.ApprovalRequest
		eventID    sql.NullInt64
		reviewerID sql.NullInt64
		resolvedAt sql.NullTime
	)
	err := row.Scan(
		&req.ID, &req.Type, &eventID, &req.RequesterID, &req.Reason, &req.Status,
		&reviewerID, &req.ReviewNote, &resolvedAt, &req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if eventID.Valid {
		id := uint64(eventID.Int64)
		req.EventID = &id
	}
	if reviewerID.Valid {
		id := uint64(reviewerID.Int64)
		req.ReviewerID = &id
	}
	if resolvedAt.Valid {
		at := resolvedAt.Time.UTC()
		req.ResolvedAt = &at
	}
	return &req, nil
}

// ApprovalByID fetches a single approval request.
func (r *queries) ApprovalByID(ctx context.Context, id uint64) (*model.ApprovalRequest, error) {
	const q = `SELECT ` + approvalColumns + ` FROM approval_requests WHERE id = ? LIMIT 1`
	req, err := scanApproval(r.q.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return req, nil
}

// CreateApproval inserts a request row.  Pre-resolved rows (the force
// cancel audit trail) carry their reviewer stamp from the start.
func (r *queries) CreateApproval(ctx context.Context, req *model.ApprovalRequest) error {
	const q = `INSERT INTO approval_requests
		(type, event_id, requester_id, reason, status, reviewer_id, review_note, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var eventID, reviewerID any
	if req.EventID != nil {
		eventID = *req.EventID
	}
	if req.ReviewerID != nil {
		reviewerID = *req.ReviewerID
	}
	var resolvedAt any
	if req.ResolvedAt != nil {
		resolvedAt = *req.ResolvedAt
	}
	res, err := r.q.ExecContext(ctx, q,
		req.Type, eventID, req.RequesterID, req.Reason, req.Status,
		reviewerID, req.ReviewNote, resolvedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	const sel = `SELECT ` + approvalColumns + ` FROM approval_requests WHERE id = ?`
	got, err := scanApproval(r.q.QueryRowContext(ctx, sel, uint64(id)))
	if err != nil {
		return err
	}
	*req = *got
	return nil
}

// PendingApproval finds the pending request of the given type, matched by
// event for the event-scoped types or by requester for promotions.
func (r *queries) PendingApproval(ctx context.Context, typ model.ApprovalType, eventID, requesterID uint64) (*model.ApprovalRequest, error) {
	q := `SELECT ` + approvalColumns + ` FROM approval_requests WHERE type = ? AND status = ?`
	args := []any{typ, model.ApprovalPending}
	if eventID > 0 {
		q += ` AND event_id = ?`
		args = append(args, eventID)
	} else {
		q += ` AND requester_id = ?`
		args = append(args, requesterID)
	}
	q += ` LIMIT 1`
	req, err := scanApproval(r.q.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return req, nil
}

// ListApprovals returns requests newest first, optionally filtered by
// status.
func (r *queries) ListApprovals(ctx context.Context, status model.ApprovalStatus) ([]model.ApprovalRequest, error) {
	q := `SELECT ` + approvalColumns + ` FROM approval_requests`
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
	out := make([]model.ApprovalRequest, 0)
	for rows.Next() {
		req, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

// StampApproval resolves a pending request.  The status guard makes the
// stamp a compare-and-set: false means another resolver already won.
func (r *queries) StampApproval(ctx context.Context, id uint64, status model.ApprovalStatus, reviewerID uint64, note string, at time.Time) (bool, error) {
	const q = `UPDATE approval_requests
		SET status = ?, reviewer_id = ?, review_note = ?, resolved_at = ?
		WHERE id = ? AND status = ?`
	res, err := r.q.ExecContext(ctx, q, status, reviewerID, note, at, id, model.ApprovalPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
