package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

func TestNotificationLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	ana := newMember(t, database, "ana")
	bor := newMember(t, database, "bor")
	itemID := int64(7)

	n1 := &model.Notification{
		EventID:       "ev-1",
		RecipientID:   ana.ID,
		Type:          model.NotificationRequestCreated,
		Message:       "first",
		RelatedItemID: &itemID,
		CreatedAt:     time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	n2 := &model.Notification{
		EventID:     "ev-2",
		RecipientID: ana.ID,
		Type:        model.NotificationRequestCompleted,
		Message:     "second",
		CreatedAt:   time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	other := &model.Notification{
		EventID:     "ev-3",
		RecipientID: bor.ID,
		Type:        model.NotificationRequestAccepted,
		Message:     "not ana's",
	}
	for _, n := range []*model.Notification{n1, n2, other} {
		require.NoError(t, CreateNotification(ctx, database, n))
		assert.NotZero(t, n.ID)
	}

	list, err := ListNotifications(ctx, database, ana.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message, "newest first")
	require.NotNil(t, list[1].RelatedItemID)
	assert.Equal(t, itemID, *list[1].RelatedItemID)
	assert.Nil(t, list[0].RelatedItemID)

	count, err := CountUnreadNotifications(ctx, database, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, MarkNotificationRead(ctx, database, n1.ID, time.Now()))
	unread, err := ListNotifications(ctx, database, ana.ID, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, n2.ID, unread[0].ID)

	got, err := GetNotification(ctx, database, n1.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
	assert.NotNil(t, got.ReadAt)

	changed, err := MarkAllNotificationsRead(ctx, database, ana.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	count, err = CountUnreadNotifications(ctx, database, bor.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "other members are untouched")

	require.NoError(t, DeleteNotification(ctx, database, n2.ID))
	gone, err := GetNotification(ctx, database, n2.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCreateNotificationDeduplicatesEventID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	ana := newMember(t, database, "ana")

	n := model.Notification{EventID: "same", RecipientID: ana.ID, Type: model.NotificationItemUpdated, Message: "x"}
	first, second := n, n
	require.NoError(t, CreateNotification(ctx, database, &first))
	require.NoError(t, CreateNotification(ctx, database, &second))
	assert.Zero(t, second.ID)

	list, err := ListNotifications(ctx, database, ana.ID, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
