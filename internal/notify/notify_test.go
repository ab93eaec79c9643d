package notify

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

func member(t *testing.T, database store.DBTX, username string) *model.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), database, &model.User{Username: username, PasswordHash: "x"})
	require.NoError(t, err)
	return u
}

func TestOutboxEmitFillsDefaults(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	ana := member(t, database, "ana")

	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	out := NewOutbox(database, zerolog.Nop())
	out.now = func() time.Time { return fixed }

	require.NoError(t, out.Emit(ctx, model.Notification{
		RecipientID: ana.ID,
		Type:        model.NotificationRequestCreated,
		Message:     "hello",
	}))

	list, err := store.ListNotifications(ctx, database, ana.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].EventID)
	assert.True(t, fixed.Equal(list[0].CreatedAt))
	assert.False(t, list[0].IsRead)
}

func TestOutboxRejectsMissingRecipient(t *testing.T) {
	database := db.NewTestDB(t)
	out := NewOutbox(database, zerolog.Nop())

	err := out.Emit(context.Background(), model.Notification{Type: model.NotificationItemDeleted})
	assert.Error(t, err)
}

func TestInboxChecksRecipient(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	ana := member(t, database, "ana")
	bor := member(t, database, "bor")

	out := NewOutbox(database, zerolog.Nop())
	for _, msg := range []string{"one", "two"} {
		require.NoError(t, out.Emit(ctx, model.Notification{
			RecipientID: ana.ID, Type: model.NotificationRequestAccepted, Message: msg,
		}))
	}

	inbox := NewInbox(database)
	list, err := inbox.List(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	target := list[0].ID

	_, err = inbox.MarkRead(ctx, bor.ID, target)
	assert.ErrorIs(t, err, lending.ErrForbidden)
	assert.ErrorIs(t, inbox.Delete(ctx, bor.ID, target), lending.ErrForbidden)
	_, err = inbox.MarkRead(ctx, ana.ID, 9999)
	assert.ErrorIs(t, err, lending.ErrNotFound)

	n, err := inbox.MarkRead(ctx, ana.ID, target)
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	count, err := inbox.UnreadCount(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	changed, err := inbox.MarkAllRead(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	unread, err := inbox.Unread(ctx, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, inbox.Delete(ctx, ana.ID, target))
	list, err = inbox.List(ctx, ana.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
