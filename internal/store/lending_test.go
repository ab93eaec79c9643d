package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
)

func TestTxRunnerCommits(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	ana := newMember(t, database, "ana")
	item := newItem(t, database, ana, "Drill", model.ItemTypeLend)

	err := TxRunner{DB: database}.InTx(ctx, func(tx lending.Tx) error {
		return tx.SetItemStatus(ctx, item.ID, model.ItemStatusAvailable, model.ItemStatusUnavailable)
	})
	require.NoError(t, err)

	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusUnavailable, got.Status)
}

func TestTxRunnerRollsBack(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	ana := newMember(t, database, "ana")
	bor := newMember(t, database, "bor")
	item := newItem(t, database, ana, "Drill", model.ItemTypeLend)

	boom := errors.New("boom")
	err := TxRunner{DB: database}.InTx(ctx, func(tx lending.Tx) error {
		r := &model.Request{ItemID: item.ID, RequesterID: bor.ID, Status: model.RequestStatusAccepted}
		if err := tx.SaveRequest(ctx, r); err != nil {
			return err
		}
		if err := tx.SetItemStatus(ctx, item.ID, model.ItemStatusAvailable, model.ItemStatusUnavailable); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusAvailable, got.Status)

	reqs, err := ListRequestsByParty(ctx, database, bor.ID, lending.PartyAny)
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestTxRunnerViewDoesNotWaitForWriter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	ana := newMember(t, database, "ana")
	item := newItem(t, database, ana, "Drill", model.ItemTypeLend)

	writer, err := database.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer writer.Rollback()
	require.NoError(t, SetItemStatus(ctx, writer, item.ID, model.ItemStatusAvailable, model.ItemStatusUnavailable))

	viewCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	var seen *model.Item
	err = TxRunner{DB: database}.View(viewCtx, func(tx lending.Tx) error {
		var err error
		seen, err = tx.GetItem(viewCtx, item.ID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusAvailable, seen.Status, "uncommitted writes stay invisible")
}
