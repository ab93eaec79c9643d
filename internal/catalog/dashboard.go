package catalog

import (
	"context"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// OwnedItem is an item on its owner's dashboard, with the request that
// last moved it when there is one.
type OwnedItem struct {
	model.Item
	Counterparty string         `json:"counterparty,omitempty"`
	Request      *model.Request `json:"request,omitempty"`
	Returned     bool           `json:"returned"`
}

// Active lists the owner's items that have not been sold.
func (s *Service) Active(ctx context.Context, ownerID int64) ([]model.Item, error) {
	return store.ListItems(ctx, s.db, store.ItemFilter{
		OwnerID: ownerID,
		Statuses: []model.ItemStatus{
			model.ItemStatusAvailable,
			model.ItemStatusUnavailable,
			model.ItemStatusReturned,
		},
	})
}

// Lent lists the owner's lend items that are out, with their borrower.
func (s *Service) Lent(ctx context.Context, ownerID int64) ([]OwnedItem, error) {
	items, err := store.ListItems(ctx, s.db, store.ItemFilter{
		OwnerID:  ownerID,
		Type:     model.ItemTypeLend,
		Statuses: []model.ItemStatus{model.ItemStatusUnavailable, model.ItemStatusReturned},
	})
	if err != nil {
		return nil, err
	}
	return s.withRequests(ctx, items, model.RequestStatusAccepted, model.RequestStatusDone)
}

// Sold lists the owner's sold items, with their buyer.
func (s *Service) Sold(ctx context.Context, ownerID int64) ([]OwnedItem, error) {
	items, err := store.ListItems(ctx, s.db, store.ItemFilter{
		OwnerID:  ownerID,
		Statuses: []model.ItemStatus{model.ItemStatusSold},
	})
	if err != nil {
		return nil, err
	}
	return s.withRequests(ctx, items, model.RequestStatusDone)
}

func (s *Service) withRequests(ctx context.Context, items []model.Item, statuses ...model.RequestStatus) ([]OwnedItem, error) {
	out := make([]OwnedItem, 0, len(items))
	for _, item := range items {
		r, err := store.LatestRequestForItem(ctx, s.db, item.ID, statuses...)
		if err != nil {
			return nil, err
		}
		owned := OwnedItem{Item: item, Request: r}
		if r != nil {
			owned.Counterparty = r.RequesterName
			owned.Returned = r.BorrowerConfirmedReturn && r.LenderConfirmedReturn
		}
		out = append(out, owned)
	}
	return out, nil
}
