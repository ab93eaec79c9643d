package lending

import (
	"context"

	"github.com/erazemk/izposoja/internal/model"
)

// Party selects which side of a request a member is on.
type Party int

// Parties.
const (
	PartyAny Party = iota
	PartyRequester
	PartyOwner
)

// ItemStore reads items and changes their status.
type ItemStore interface {
	// GetItem returns nil, nil when the item does not exist.
	GetItem(ctx context.Context, id int64) (*model.Item, error)

	// SetItemStatus moves the item from one status to another and returns
	// ErrConflict if its status is no longer from.
	SetItemStatus(ctx context.Context, id int64, from, to model.ItemStatus) error
}

// RequestStore persists requests.
type RequestStore interface {
	// GetRequest returns nil, nil when the request does not exist.
	GetRequest(ctx context.Context, id int64) (*model.Request, error)

	// SaveRequest inserts a request with a zero ID, or updates an existing
	// one if its Version still matches, and bumps Version. A stale version
	// yields ErrConflict.
	SaveRequest(ctx context.Context, r *model.Request) error

	// ListRequestsByParty returns the requests the member takes part in,
	// newest first.
	ListRequestsByParty(ctx context.Context, userID int64, party Party) ([]model.Request, error)
}

// UserStore looks up members.
type UserStore interface {
	// GetUser returns nil, nil when the member does not exist.
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// Tx is the set of stores visible inside one unit of work.
type Tx interface {
	ItemStore
	RequestStore
	UserStore
}

// TxRunner runs fn atomically: either every write fn makes is committed,
// or none is.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// View runs read-only fn without taking the write lock.
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Sink queues notifications for later delivery.
type Sink interface {
	Emit(ctx context.Context, n model.Notification) error
}
