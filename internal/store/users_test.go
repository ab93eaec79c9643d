package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, &model.User{
		Username:     "testuser",
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "hash123",
	})
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, model.RoleMember, user.Role, "role defaults to member")

	got, err := GetUser(ctx, database, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test User", got.Name)
	assert.Equal(t, "test@example.com", got.Email)
	assert.Equal(t, "hash123", got.PasswordHash)
	assert.Nil(t, got.DeletedAt)
}

func TestGetUserMissing(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetUser(context.Background(), database, 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	newMember(t, database, "alice")

	user, err := GetUserByUsername(ctx, database, "alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	missing, err := GetUserByUsername(ctx, database, "bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUsernameReusableAfterDelete(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first := newMember(t, database, "alice")
	_, err := CreateUser(ctx, database, &model.User{Username: "alice", PasswordHash: "x"})
	require.Error(t, err, "active usernames are unique")

	require.NoError(t, DeleteUser(ctx, database, first.ID))
	second := newMember(t, database, "alice")

	got, err := GetUserByUsername(ctx, database, "alice")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestListAndDeleteUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := newMember(t, database, "a")
	newMember(t, database, "b")

	users, err := ListUsers(ctx, database)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, DeleteUser(ctx, database, a.ID))

	users, err = ListUsers(ctx, database)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "b", users[0].Username)

	deleted, err := GetUser(ctx, database, a.ID)
	require.NoError(t, err)
	assert.NotNil(t, deleted.DeletedAt)
}

func TestUpdateUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := newMember(t, database, "pwuser")
	require.NoError(t, UpdateUser(ctx, database, user.ID, "Pw User", "pw@example.com", model.RoleAdmin))
	require.NoError(t, UpdateUserPassword(ctx, database, user.ID, "newhash"))

	got, err := GetUser(ctx, database, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pw User", got.Name)
	assert.Equal(t, "pw@example.com", got.Email)
	assert.Equal(t, model.RoleAdmin, got.Role)
	assert.Equal(t, "newhash", got.PasswordHash)
}
