package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
)

const requestColumns = `r.id, r.item_id, r.requester_id, r.status,
	r.lender_marked_as_lent, r.borrower_confirmed_receipt, r.borrower_confirmed_return, r.lender_confirmed_return,
	r.lent_at, r.received_at, r.completed_at, r.created_at, r.version,
	i.name, i.owner_id, o.name, o.username, q.name, q.username`

const requestFrom = ` FROM requests r
	JOIN items i ON i.id = r.item_id
	JOIN users o ON o.id = i.owner_id
	JOIN users q ON q.id = r.requester_id`

// GetRequest returns a request by ID with item and party names joined in.
func GetRequest(ctx context.Context, db DBTX, id int64) (*model.Request, error) {
	r, err := scanRequest(db.QueryRowContext(ctx,
		`SELECT `+requestColumns+requestFrom+` WHERE r.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	return r, nil
}

// SaveRequest inserts r if it has no ID yet, otherwise updates it provided
// nobody else saved it since it was read. Either way r.Version is bumped.
func SaveRequest(ctx context.Context, db DBTX, r *model.Request) error {
	if r.ID == 0 {
		return insertRequest(ctx, db, r)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE requests SET status = ?,
			lender_marked_as_lent = ?, borrower_confirmed_receipt = ?,
			borrower_confirmed_return = ?, lender_confirmed_return = ?,
			lent_at = ?, received_at = ?, completed_at = ?,
			version = version + 1
		 WHERE id = ? AND version = ?`,
		r.Status,
		r.LenderMarkedAsLent, r.BorrowerConfirmedReceipt,
		r.BorrowerConfirmedReturn, r.LenderConfirmedReturn,
		utc(r.LentAt), utc(r.ReceivedAt), utc(r.CompletedAt),
		r.ID, r.Version,
	)
	if err != nil {
		return fmt.Errorf("updating request: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating request: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("request %d changed since version %d: %w", r.ID, r.Version, lending.ErrConflict)
	}
	r.Version++
	return nil
}

func insertRequest(ctx context.Context, db DBTX, r *model.Request) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	result, err := db.ExecContext(ctx,
		`INSERT INTO requests (item_id, requester_id, status,
			lender_marked_as_lent, borrower_confirmed_receipt,
			borrower_confirmed_return, lender_confirmed_return,
			lent_at, received_at, completed_at, created_at, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		r.ItemID, r.RequesterID, r.Status,
		r.LenderMarkedAsLent, r.BorrowerConfirmedReceipt,
		r.BorrowerConfirmedReturn, r.LenderConfirmedReturn,
		utc(r.LentAt), utc(r.ReceivedAt), utc(r.CompletedAt), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting request id: %w", err)
	}
	r.ID = id
	r.Version = 1
	return nil
}

// ListRequestsByParty returns the requests userID made, received or both,
// newest first.
func ListRequestsByParty(ctx context.Context, db DBTX, userID int64, party lending.Party) ([]model.Request, error) {
	var where string
	var args []any
	switch party {
	case lending.PartyRequester:
		where = `r.requester_id = ?`
		args = []any{userID}
	case lending.PartyOwner:
		where = `i.owner_id = ?`
		args = []any{userID}
	default:
		where = `(r.requester_id = ? OR i.owner_id = ?)`
		args = []any{userID, userID}
	}
	return listRequests(ctx, db, where, args...)
}

// ListOpenRequestsForItem returns the item's pending and accepted requests
// that have not completed.
func ListOpenRequestsForItem(ctx context.Context, db DBTX, itemID int64) ([]model.Request, error) {
	return listRequests(ctx, db,
		`r.item_id = ? AND r.status IN (?, ?) AND r.completed_at IS NULL`,
		itemID, model.RequestStatusPending, model.RequestStatusAccepted,
	)
}

// LatestRequestForItem returns the newest request on the item in one of the
// given statuses, or nil if there is none.
func LatestRequestForItem(ctx context.Context, db DBTX, itemID int64, statuses ...model.RequestStatus) (*model.Request, error) {
	where := `r.item_id = ?`
	args := []any{itemID}
	if len(statuses) > 0 {
		where += ` AND r.status IN (?` + strings.Repeat(`, ?`, len(statuses)-1) + `)`
		for _, s := range statuses {
			args = append(args, s)
		}
	}
	reqs, err := listRequests(ctx, db, where, args...)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	return &reqs[0], nil
}

func listRequests(ctx context.Context, db DBTX, where string, args ...any) ([]model.Request, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+requestColumns+requestFrom+` WHERE `+where+` ORDER BY r.created_at DESC, r.id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var reqs []model.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		reqs = append(reqs, *r)
	}
	return reqs, rows.Err()
}

func scanRequest(s scanner) (*model.Request, error) {
	r := &model.Request{}
	var ownerName, ownerUsername, requesterName, requesterUsername string
	err := s.Scan(&r.ID, &r.ItemID, &r.RequesterID, &r.Status,
		&r.LenderMarkedAsLent, &r.BorrowerConfirmedReceipt, &r.BorrowerConfirmedReturn, &r.LenderConfirmedReturn,
		&r.LentAt, &r.ReceivedAt, &r.CompletedAt, &r.CreatedAt, &r.Version,
		&r.ItemName, &r.OwnerID, &ownerName, &ownerUsername, &requesterName, &requesterUsername)
	if err != nil {
		return nil, err
	}
	r.OwnerName = orUsername(ownerName, ownerUsername)
	r.RequesterName = orUsername(requesterName, requesterUsername)
	return r, nil
}

func orUsername(name, username string) string {
	if name != "" {
		return name
	}
	return username
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
