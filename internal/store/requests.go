package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

const requestSelect = `SELECT r.id, r.item_id, r.requester_id, r.status, r.message, r.request_date,
	       r.resolution_date, r.resolved_by, r.admin_notes, r.created_at, r.updated_at,
	       i.name AS item_name, u.username AS requester_username
	FROM requests r
	JOIN items i ON i.id = r.item_id
	JOIN users u ON u.id = r.requester_id`

func scanRequest(row rowScanner) (*model.Request, error) {
	r := &model.Request{}
	var message sql.NullString
	var resolvedBy sql.NullInt64
	err := row.Scan(&r.ID, &r.ItemID, &r.RequesterID, &r.Status, &message, &r.RequestDate,
		&r.ResolutionDate, &resolvedBy, &r.AdminNotes, &r.CreatedAt, &r.UpdatedAt,
		&r.ItemName, &r.RequesterUsername)
	if err != nil {
		return nil, err
	}
	r.Message = message.String
	r.ResolvedBy = nullableID(resolvedBy)
	return r, nil
}

// CreateRequest stores a new pending claim request. Returns ErrConflict if the
// requester already has a pending request for the item.
func (s *Store) CreateRequest(ctx context.Context, r *model.Request) (*model.Request, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (item_id, requester_id, status, message, request_date)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ItemID, r.RequesterID, model.RequestStatusPending, r.Message, r.RequestDate.UTC(),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating request for item %d: %w", r.ItemID, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting request id: %w", err)
	}

	return s.GetRequest(ctx, id)
}

// GetRequest returns a request by ID.
func (s *Store) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	r, err := scanRequest(s.db.QueryRowContext(ctx, requestSelect+` WHERE r.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	return r, nil
}

// ListRequests returns requests matching every non-empty field of the filter,
// newest first.
func (s *Store) ListRequests(ctx context.Context, filter model.RequestFilter) ([]model.Request, error) {
	var where []string
	var args []any
	if filter.ItemID != 0 {
		where = append(where, "r.item_id = ?")
		args = append(args, filter.ItemID)
	}
	if filter.RequesterID != 0 {
		where = append(where, "r.requester_id = ?")
		args = append(args, filter.RequesterID)
	}
	if filter.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, filter.Status)
	}

	query := requestSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.request_date DESC, r.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

// HasPendingRequest reports whether requesterID has a pending request for itemID.
func (s *Store) HasPendingRequest(ctx context.Context, itemID, requesterID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM requests WHERE item_id = ? AND requester_id = ? AND status = ?`,
		itemID, requesterID, model.RequestStatusPending,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking pending requests: %w", err)
	}
	return count > 0, nil
}

// DeleteRequest removes a request while it is still in expectedStatus.
// Returns ErrStale if the request is gone or its status moved on.
func (s *Store) DeleteRequest(ctx context.Context, id int64, expectedStatus string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM requests WHERE id = ? AND status = ?`, id, expectedStatus)
	if err != nil {
		return fmt.Errorf("deleting request: %w", err)
	}
	return expectOneRow(result, "request", id)
}

// RejectRequest moves a pending request to rejected. Returns ErrStale if the
// request is no longer pending.
func (s *Store) RejectRequest(ctx context.Context, id, resolvedBy int64, notes string, at time.Time) (*model.Request, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE requests
		 SET status = ?, admin_notes = ?, resolution_date = ?, resolved_by = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.RequestStatusRejected, notes, at.UTC(), resolvedBy, id, model.RequestStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("rejecting request: %w", err)
	}
	if err := expectOneRow(result, "request", id); err != nil {
		return nil, err
	}
	return s.GetRequest(ctx, id)
}

// ApproveRequest approves a pending request in one transaction: the item moves
// from found to claimed by the requester, and every other pending request for
// the item is rejected with model.AutoRejectNote.
//
// Returns ErrStale if the request is no longer pending or the item is not
// found, and ErrConflict if another request for the item is already approved.
func (s *Store) ApproveRequest(ctx context.Context, id, resolvedBy int64, notes string, at time.Time) (*model.Approval, error) {
	at = at.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemID, requesterID int64
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT item_id, requester_id, status FROM requests WHERE id = ?`, id,
	).Scan(&itemID, &requesterID, &status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("request %d: %w", id, ErrStale)
	}
	if err != nil {
		return nil, fmt.Errorf("reading request: %w", err)
	}
	if status != model.RequestStatusPending {
		return nil, fmt.Errorf("request %d is %s: %w", id, status, ErrStale)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, claimed_by = ?, held_by = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.ItemStatusClaimed, requesterID, itemID, model.ItemStatusFound,
	)
	if err != nil {
		return nil, fmt.Errorf("claiming item: %w", err)
	}
	if err := expectOneRow(result, "item", itemID); err != nil {
		return nil, fmt.Errorf("item %d is not claimable: %w", itemID, ErrStale)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE requests
		 SET status = ?, admin_notes = ?, resolution_date = ?, resolved_by = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.RequestStatusApproved, notes, at, resolvedBy, id, model.RequestStatusPending,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("approving request %d: %w", id, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("approving request: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`UPDATE requests
		 SET status = ?, admin_notes = ?, resolution_date = ?, resolved_by = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE item_id = ? AND status = ? AND id <> ?
		 RETURNING id`,
		model.RequestStatusRejected, model.AutoRejectNote, at, resolvedBy,
		itemID, model.RequestStatusPending, id,
	)
	if err != nil {
		return nil, fmt.Errorf("rejecting sibling requests: %w", err)
	}
	var rejected []int64
	for rows.Next() {
		var sibling int64
		if err := rows.Scan(&sibling); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning rejected request: %w", err)
		}
		rejected = append(rejected, sibling)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("closing rejected requests: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rejecting sibling requests: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing approval: %w", err)
	}

	request, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return &model.Approval{Request: request, Item: item, AutoRejected: rejected}, nil
}
