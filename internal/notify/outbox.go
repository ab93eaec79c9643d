// Package notify stores notifications for members and serves their inbox.
package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// Outbox queues notifications by writing them to the notifications table.
// Delivery to the member is a read of that table.
type Outbox struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

var _ lending.Sink = (*Outbox)(nil)

// NewOutbox returns an outbox writing to db.
func NewOutbox(db *sql.DB, log zerolog.Logger) *Outbox {
	return &Outbox{db: db, log: log, now: time.Now}
}

// Emit stores n. Missing event IDs and timestamps are filled in.
func (o *Outbox) Emit(ctx context.Context, n model.Notification) error {
	if n.RecipientID == 0 {
		return fmt.Errorf("notification %s has no recipient", n.Type)
	}
	if n.EventID == "" {
		n.EventID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = o.now()
	}

	if err := store.CreateNotification(ctx, o.db, &n); err != nil {
		return fmt.Errorf("queueing %s for member %d: %w", n.Type, n.RecipientID, err)
	}

	o.log.Debug().
		Str("event", n.EventID).
		Str("type", string(n.Type)).
		Int64("recipient", n.RecipientID).
		Msg("notification queued")
	return nil
}
