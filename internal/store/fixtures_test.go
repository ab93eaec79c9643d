package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/model"
)

func newMember(t *testing.T, db DBTX, username string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), db, &model.User{
		Username:     username,
		Name:         username + " Novak",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return u
}

func newItem(t *testing.T, db DBTX, owner *model.User, name string, typ model.ItemType) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), db, &model.Item{
		Name:        name,
		Description: "a " + name,
		Category:    "tools",
		Type:        typ,
		OwnerID:     owner.ID,
	})
	require.NoError(t, err)
	return item
}

func newRequest(t *testing.T, db DBTX, item *model.Item, requester *model.User) *model.Request {
	t.Helper()
	r := &model.Request{ItemID: item.ID, RequesterID: requester.ID, Status: model.RequestStatusPending}
	require.NoError(t, SaveRequest(context.Background(), db, r))
	return r
}
