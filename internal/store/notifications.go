package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/izposoja/internal/model"
)

const notificationColumns = `id, event_id, recipient_id, type, message,
	related_item_id, related_request_id, related_message_id, is_read, created_at, read_at`

// CreateNotification stores n. A notification whose EventID is already
// stored is ignored, so redelivering an event is harmless.
func CreateNotification(ctx context.Context, db DBTX, n *model.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	result, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO notifications (event_id, recipient_id, type, message,
			related_item_id, related_request_id, related_message_id, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		n.EventID, n.RecipientID, n.Type, n.Message,
		n.RelatedItemID, n.RelatedRequestID, n.RelatedMessageID, n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		if id, err := result.LastInsertId(); err == nil {
			n.ID = id
		}
	}
	return nil
}

// GetNotification returns a notification by ID.
func GetNotification(ctx context.Context, db DBTX, id int64) (*model.Notification, error) {
	n, err := scanNotification(db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns a member's notifications, newest first. With
// unreadOnly set, read ones are left out.
func ListNotifications(ctx context.Context, db DBTX, recipientID int64, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var list []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		list = append(list, *n)
	}
	return list, rows.Err()
}

// CountUnreadNotifications returns how many unread notifications a member has.
func CountUnreadNotifications(ctx context.Context, db DBTX, recipientID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0`, recipientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// MarkNotificationRead marks one notification read.
func MarkNotificationRead(ctx context.Context, db DBTX, id int64, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1, read_at = ? WHERE id = ? AND is_read = 0`,
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of a member read
// and returns how many changed.
func MarkAllNotificationsRead(ctx context.Context, db DBTX, recipientID int64, at time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1, read_at = ? WHERE recipient_id = ? AND is_read = 0`,
		at.UTC(), recipientID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	return result.RowsAffected()
}

// DeleteNotification removes a notification.
func DeleteNotification(ctx context.Context, db DBTX, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}
	return nil
}

func scanNotification(s scanner) (*model.Notification, error) {
	n := &model.Notification{}
	err := s.Scan(&n.ID, &n.EventID, &n.RecipientID, &n.Type, &n.Message,
		&n.RelatedItemID, &n.RelatedRequestID, &n.RelatedMessageID, &n.IsRead, &n.CreatedAt, &n.ReadAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}
