package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// Inbox is a member's view of their notifications. Every operation on a
// single notification checks that it belongs to the member.
type Inbox struct {
	db  *sql.DB
	now func() time.Time
}

// NewInbox returns an inbox reading from db.
func NewInbox(db *sql.DB) *Inbox {
	return &Inbox{db: db, now: time.Now}
}

// List returns the member's notifications, newest first.
func (b *Inbox) List(ctx context.Context, memberID int64) ([]model.Notification, error) {
	return store.ListNotifications(ctx, b.db, memberID, false)
}

// Unread returns the member's unread notifications, newest first.
func (b *Inbox) Unread(ctx context.Context, memberID int64) ([]model.Notification, error) {
	return store.ListNotifications(ctx, b.db, memberID, true)
}

// UnreadCount returns how many unread notifications the member has.
func (b *Inbox) UnreadCount(ctx context.Context, memberID int64) (int, error) {
	return store.CountUnreadNotifications(ctx, b.db, memberID)
}

// MarkRead marks one of the member's notifications read.
func (b *Inbox) MarkRead(ctx context.Context, memberID, id int64) (*model.Notification, error) {
	if _, err := b.owned(ctx, memberID, id); err != nil {
		return nil, err
	}
	if err := store.MarkNotificationRead(ctx, b.db, id, b.now()); err != nil {
		return nil, err
	}
	return store.GetNotification(ctx, b.db, id)
}

// MarkAllRead marks all the member's notifications read.
func (b *Inbox) MarkAllRead(ctx context.Context, memberID int64) (int64, error) {
	return store.MarkAllNotificationsRead(ctx, b.db, memberID, b.now())
}

// Delete removes one of the member's notifications.
func (b *Inbox) Delete(ctx context.Context, memberID, id int64) error {
	if _, err := b.owned(ctx, memberID, id); err != nil {
		return err
	}
	return store.DeleteNotification(ctx, b.db, id)
}

func (b *Inbox) owned(ctx context.Context, memberID, id int64) (*model.Notification, error) {
	n, err := store.GetNotification(ctx, b.db, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: notification %d", lending.ErrNotFound, id)
	}
	if n.RecipientID != memberID {
		return nil, fmt.Errorf("%w: notification %d belongs to another member", lending.ErrForbidden, id)
	}
	return n, nil
}
