package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erazemk/izposoja/internal/model"
)

// Observer is told about every operation and every emitted event.
type Observer interface {
	ObserveTransition(op string, err error, elapsed time.Duration)
	ObserveEvent(typ model.NotificationType, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveTransition(string, error, time.Duration) {}
func (nopObserver) ObserveEvent(model.NotificationType, error)     {}

// Engine runs the borrow and purchase lifecycle. Every operation loads the
// request and its item, validates, writes both in one transaction and only
// after commit hands the resulting events to the sink.
type Engine struct {
	tx       TxRunner
	sink     Sink
	log      zerolog.Logger
	observer Observer
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithObserver reports operations and events to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// New creates an engine writing through tx and notifying through sink.
func New(tx TxRunner, sink Sink, opts ...Option) *Engine {
	e := &Engine{
		tx:       tx,
		sink:     sink,
		log:      zerolog.Nop(),
		observer: nopObserver{},
		tracer:   otel.Tracer("github.com/erazemk/izposoja/internal/lending"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateRequest opens a pending request by requesterID for itemID and
// notifies the owner.
func (e *Engine) CreateRequest(ctx context.Context, itemID, requesterID int64) (*model.Request, error) {
	ctx, span := e.tracer.Start(ctx, "lending.CreateRequest", trace.WithAttributes(
		attribute.Int64("item.id", itemID),
		attribute.Int64("requester.id", requesterID),
	))
	defer span.End()
	start := time.Now()

	var snap Snapshot
	var events []Event
	err := e.tx.InTx(ctx, func(tx Tx) error {
		item, err := tx.GetItem(ctx, itemID)
		if err != nil {
			return fmt.Errorf("loading item: %w", err)
		}
		if item == nil || item.DeletedAt != nil {
			return notFound("item %d", itemID)
		}
		requester, err := tx.GetUser(ctx, requesterID)
		if err != nil {
			return fmt.Errorf("loading requester: %w", err)
		}
		if requester == nil || requester.DeletedAt != nil {
			return notFound("member %d", requesterID)
		}
		owner, err := loadUser(ctx, tx, item.OwnerID, "owner")
		if err != nil {
			return err
		}

		snap, events, err = openRequest(*item, *owner, *requester, e.now())
		if err != nil {
			return err
		}
		return tx.SaveRequest(ctx, &snap.Request)
	})
	e.finish(span, "CreateRequest", err, start)
	if err != nil {
		return nil, err
	}

	e.dispatch(ctx, snap, events)
	return joined(snap, snap.Request), nil
}

// UpdateRequestStatus moves a request to status. Accepting reserves the
// item; rejecting leaves it alone.
func (e *Engine) UpdateRequestStatus(ctx context.Context, requestID int64, status model.RequestStatus) (*model.Request, error) {
	return e.apply(ctx, "UpdateRequestStatus", requestID, func(s Snapshot, now time.Time) (Outcome, error) {
		return updateStatus(s, status, now)
	})
}

// MarkAsLent records that the owner handed the item over.
func (e *Engine) MarkAsLent(ctx context.Context, requestID, actorID int64) (*model.Request, error) {
	return e.apply(ctx, "MarkAsLent", requestID, func(s Snapshot, now time.Time) (Outcome, error) {
		return markAsLent(s, actorID, now)
	})
}

// ConfirmReceipt records that the requester received the item. A purchase
// completes here.
func (e *Engine) ConfirmReceipt(ctx context.Context, requestID, actorID int64) (*model.Request, error) {
	return e.apply(ctx, "ConfirmReceipt", requestID, func(s Snapshot, now time.Time) (Outcome, error) {
		return confirmReceipt(s, actorID, now)
	})
}

// MarkRequestAsDone ends the loan period and asks both parties to confirm
// the return. The item stays unavailable until they do.
func (e *Engine) MarkRequestAsDone(ctx context.Context, requestID int64) (*model.Request, error) {
	return e.apply(ctx, "MarkRequestAsDone", requestID, markDone)
}

// ConfirmReturn records one party's confirmation of the return. Once both
// have confirmed, the request completes and the item is released.
func (e *Engine) ConfirmReturn(ctx context.Context, requestID, actorID int64, isBorrower bool) (*model.Request, error) {
	return e.apply(ctx, "ConfirmReturn", requestID, func(s Snapshot, now time.Time) (Outcome, error) {
		return confirmReturn(s, actorID, isBorrower, now)
	})
}

// Get returns a request with its item and party names filled in.
func (e *Engine) Get(ctx context.Context, requestID int64) (*model.Request, error) {
	var snap Snapshot
	err := e.tx.View(ctx, func(tx Tx) error {
		var err error
		snap, err = loadSnapshot(ctx, tx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return joined(snap, snap.Request), nil
}

// RequestsByRequester lists the requests userID has made.
func (e *Engine) RequestsByRequester(ctx context.Context, userID int64) ([]model.Request, error) {
	return e.list(ctx, userID, PartyRequester, nil)
}

// RequestsReceived lists the requests made for items userID owns.
func (e *Engine) RequestsReceived(ctx context.Context, userID int64) ([]model.Request, error) {
	return e.list(ctx, userID, PartyOwner, nil)
}

// AcceptedRequestsFor lists accepted requests on either side for userID.
func (e *Engine) AcceptedRequestsFor(ctx context.Context, userID int64) ([]model.Request, error) {
	return e.list(ctx, userID, PartyAny, func(r model.Request) bool {
		return r.Status == model.RequestStatusAccepted
	})
}

func (e *Engine) list(ctx context.Context, userID int64, party Party, keep func(model.Request) bool) ([]model.Request, error) {
	var out []model.Request
	err := e.tx.View(ctx, func(tx Tx) error {
		reqs, err := tx.ListRequestsByParty(ctx, userID, party)
		if err != nil {
			return fmt.Errorf("listing requests: %w", err)
		}
		for _, r := range reqs {
			if keep == nil || keep(r) {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}

// apply runs one transition on an existing request.
func (e *Engine) apply(ctx context.Context, op string, requestID int64, step func(Snapshot, time.Time) (Outcome, error)) (*model.Request, error) {
	ctx, span := e.tracer.Start(ctx, "lending."+op, trace.WithAttributes(
		attribute.Int64("request.id", requestID),
	))
	defer span.End()
	start := time.Now()

	var snap Snapshot
	var out Outcome
	err := e.tx.InTx(ctx, func(tx Tx) error {
		var err error
		snap, err = loadSnapshot(ctx, tx, requestID)
		if err != nil {
			return err
		}

		out, err = step(snap, e.now())
		if err != nil {
			return err
		}

		if err := tx.SaveRequest(ctx, &out.Request); err != nil {
			return fmt.Errorf("saving request %d: %w", requestID, err)
		}
		if out.ItemStatus != snap.Item.Status {
			if err := tx.SetItemStatus(ctx, snap.Item.ID, snap.Item.Status, out.ItemStatus); err != nil {
				return fmt.Errorf("setting item %d %s: %w", snap.Item.ID, out.ItemStatus, err)
			}
		}
		return nil
	})
	e.finish(span, op, err, start)
	if err != nil {
		return nil, err
	}

	e.dispatch(ctx, snap, out.Events)
	return joined(snap, out.Request), nil
}

func (e *Engine) finish(span trace.Span, op string, err error, start time.Time) {
	e.observer.ObserveTransition(op, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.log.Debug().Err(err).Str("op", op).Msg("transition refused")
		return
	}
	e.log.Debug().Str("op", op).Dur("elapsed", time.Since(start)).Msg("transition committed")
}

// dispatch hands events to the sink. The transition is already committed,
// so a failed enqueue is logged and dropped.
func (e *Engine) dispatch(ctx context.Context, s Snapshot, events []Event) {
	if len(events) == 0 {
		return
	}
	now := e.now()
	for _, ev := range events {
		n := model.Notification{
			EventID:          uuid.NewString(),
			RecipientID:      ev.RecipientID,
			Type:             ev.Type,
			Message:          ev.Message,
			RelatedItemID:    ptr(s.Item.ID),
			RelatedRequestID: ptr(s.Request.ID),
			CreatedAt:        now,
		}
		err := e.sink.Emit(ctx, n)
		e.observer.ObserveEvent(ev.Type, err)
		if err != nil {
			e.log.Warn().Err(err).
				Str("type", string(ev.Type)).
				Int64("recipient", ev.RecipientID).
				Int64("request", s.Request.ID).
				Msg("notification dropped")
		}
	}
}

func loadSnapshot(ctx context.Context, tx Tx, requestID int64) (Snapshot, error) {
	req, err := tx.GetRequest(ctx, requestID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading request: %w", err)
	}
	if req == nil {
		return Snapshot{}, notFound("request %d", requestID)
	}

	item, err := tx.GetItem(ctx, req.ItemID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading item: %w", err)
	}
	if item == nil || item.DeletedAt != nil {
		return Snapshot{}, notFound("item %d", req.ItemID)
	}

	owner, err := loadUser(ctx, tx, item.OwnerID, "owner")
	if err != nil {
		return Snapshot{}, err
	}
	requester, err := loadUser(ctx, tx, req.RequesterID, "requester")
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Request: *req, Item: *item, Owner: *owner, Requester: *requester}, nil
}

func loadUser(ctx context.Context, tx Tx, id int64, role string) (*model.User, error) {
	u, err := tx.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", role, err)
	}
	if u == nil {
		return nil, notFound("%s %d", role, id)
	}
	return u, nil
}

func joined(s Snapshot, r model.Request) *model.Request {
	r.ItemName = s.Item.Name
	r.RequesterName = s.Requester.DisplayName()
	r.OwnerID = s.Item.OwnerID
	r.OwnerName = s.Owner.DisplayName()
	return &r
}

func ptr(v int64) *int64 {
	return &v
}
