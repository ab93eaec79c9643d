package lending

import (
	"time"

	"github.com/erazemk/izposoja/internal/model"
)

// Snapshot is the state a transition reads: the request, its item and both
// parties.
type Snapshot struct {
	Request   model.Request
	Item      model.Item
	Owner     model.User
	Requester model.User
}

// Outcome is the state a transition produces. ItemStatus equal to the
// snapshot's item status means the item is left alone.
type Outcome struct {
	Request    model.Request
	ItemStatus model.ItemStatus
	Events     []Event
}

// statusEdges lists the status changes UpdateRequestStatus may make.
// Re-issuing the current status is always allowed.
var statusEdges = map[model.RequestStatus][]model.RequestStatus{
	model.RequestStatusPending:  {model.RequestStatusAccepted, model.RequestStatusRejected},
	model.RequestStatusAccepted: {model.RequestStatusDone},
}

func canMove(from, to model.RequestStatus) bool {
	if from == to {
		return true
	}
	for _, s := range statusEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// settledStatus is where an item ends up once its request is completed.
func settledStatus(t model.ItemType) model.ItemStatus {
	if t == model.ItemTypeSell {
		return model.ItemStatusSold
	}
	return model.ItemStatusAvailable
}

func requireStatus(r model.Request, want model.RequestStatus) error {
	if r.Status != want {
		return invalidState("request %d must be %s, is %s", r.ID, want, r.Status)
	}
	return nil
}

func requireOwner(s Snapshot, actorID int64, action string) error {
	if actorID != s.Item.OwnerID {
		return forbidden("only the owner can %s", action)
	}
	return nil
}

func requireRequester(s Snapshot, actorID int64, action string) error {
	if actorID != s.Request.RequesterID {
		return forbidden("only the requester can %s", action)
	}
	return nil
}

func requireLend(s Snapshot, action string) error {
	if s.Item.Type != model.ItemTypeLend {
		return invalidState("cannot %s for a %s item", action, s.Item.Type)
	}
	return nil
}

// checkDriving verifies that an outcome keeps the item's availability in
// step with the request: a driving request holds the item unavailable, a
// request completed by this step releases it.
func checkDriving(s Snapshot, out Outcome) error {
	if out.Request.Drives() && out.ItemStatus != model.ItemStatusUnavailable {
		return invalidState("request %d drives item %d, which would be %s",
			out.Request.ID, s.Item.ID, out.ItemStatus)
	}
	if out.Request.Completed() && !s.Request.Completed() && out.ItemStatus == model.ItemStatusUnavailable {
		return invalidState("completed request %d would leave item %d unavailable", out.Request.ID, s.Item.ID)
	}
	return nil
}

func settle(s Snapshot, out Outcome) (Outcome, error) {
	if err := checkDriving(s, out); err != nil {
		return Outcome{}, err
	}
	return out, nil
}

func stamp(t time.Time) *time.Time {
	return &t
}

// openRequest builds a new pending request against an available item.
func openRequest(item model.Item, owner, requester model.User, now time.Time) (Snapshot, []Event, error) {
	if item.Status != model.ItemStatusAvailable {
		return Snapshot{}, nil, invalidState("item %d is not available (%s)", item.ID, item.Status)
	}
	if requester.ID == item.OwnerID {
		return Snapshot{}, nil, invalidState("cannot request your own item")
	}

	s := Snapshot{
		Request: model.Request{
			ItemID:      item.ID,
			RequesterID: requester.ID,
			Status:      model.RequestStatusPending,
			CreatedAt:   now,
		},
		Item:      item,
		Owner:     owner,
		Requester: requester,
	}
	return s, requestCreatedEvents(s), nil
}

func updateStatus(s Snapshot, status model.RequestStatus, _ time.Time) (Outcome, error) {
	if !status.Valid() {
		return Outcome{}, invalidInput("unknown request status %q", status)
	}
	from := s.Request.Status
	if !canMove(from, status) {
		return Outcome{}, invalidState("request %d cannot move from %s to %s", s.Request.ID, from, status)
	}
	if from != status && status == model.RequestStatusDone {
		if err := requireLend(s, "finish a request by status"); err != nil {
			return Outcome{}, err
		}
	}

	out := Outcome{Request: s.Request, ItemStatus: s.Item.Status}
	out.Request.Status = status

	if from == model.RequestStatusPending && status == model.RequestStatusAccepted {
		if s.Item.Status != model.ItemStatusAvailable {
			return Outcome{}, invalidState("item %d is not available (%s)", s.Item.ID, s.Item.Status)
		}
		out.ItemStatus = model.ItemStatusUnavailable
	}

	out.Events = statusEvents(s, from, status)
	return settle(s, out)
}

func markAsLent(s Snapshot, actorID int64, now time.Time) (Outcome, error) {
	if err := requireOwner(s, actorID, "mark an item as lent"); err != nil {
		return Outcome{}, err
	}
	if err := requireStatus(s.Request, model.RequestStatusAccepted); err != nil {
		return Outcome{}, err
	}

	out := Outcome{Request: s.Request, ItemStatus: s.Item.Status}
	out.Request.LenderMarkedAsLent = true
	out.Request.LentAt = stamp(now)
	out.Events = lentEvents(s)
	return settle(s, out)
}

func confirmReceipt(s Snapshot, actorID int64, now time.Time) (Outcome, error) {
	if err := requireRequester(s, actorID, "confirm receipt"); err != nil {
		return Outcome{}, err
	}
	if err := requireStatus(s.Request, model.RequestStatusAccepted); err != nil {
		return Outcome{}, err
	}
	if !s.Request.LenderMarkedAsLent {
		return Outcome{}, invalidState("lender must mark as lent first")
	}

	out := Outcome{Request: s.Request, ItemStatus: s.Item.Status}
	out.Request.BorrowerConfirmedReceipt = true
	out.Request.ReceivedAt = stamp(now)

	if s.Item.Type == model.ItemTypeSell {
		out.Request.Status = model.RequestStatusDone
		out.Request.CompletedAt = stamp(now)
		out.ItemStatus = settledStatus(s.Item.Type)
	}

	out.Events = receiptEvents(s)
	return settle(s, out)
}

func markDone(s Snapshot, _ time.Time) (Outcome, error) {
	if err := requireLend(s, "mark a request as done"); err != nil {
		return Outcome{}, err
	}
	switch {
	case s.Request.Status == model.RequestStatusAccepted:
	case s.Request.Status == model.RequestStatusDone && !s.Request.Completed():
	default:
		return Outcome{}, invalidState("request %d cannot be marked done from %s", s.Request.ID, s.Request.Status)
	}

	out := Outcome{Request: s.Request, ItemStatus: s.Item.Status}
	out.Request.Status = model.RequestStatusDone
	out.Events = doneEvents(s)
	return settle(s, out)
}

func confirmReturn(s Snapshot, actorID int64, isBorrower bool, now time.Time) (Outcome, error) {
	if err := requireStatus(s.Request, model.RequestStatusDone); err != nil {
		return Outcome{}, err
	}
	if s.Request.Completed() {
		return Outcome{}, invalidState("request %d is already completed", s.Request.ID)
	}
	if err := requireLend(s, "confirm a return"); err != nil {
		return Outcome{}, err
	}
	if isBorrower {
		if err := requireRequester(s, actorID, "confirm returning the item"); err != nil {
			return Outcome{}, err
		}
	} else {
		if err := requireOwner(s, actorID, "confirm getting the item back"); err != nil {
			return Outcome{}, err
		}
	}

	out := Outcome{Request: s.Request, ItemStatus: s.Item.Status}
	if isBorrower {
		out.Request.BorrowerConfirmedReturn = true
	} else {
		out.Request.LenderConfirmedReturn = true
	}
	out.Events = returnEvents(s, isBorrower)

	if out.Request.BorrowerConfirmedReturn && out.Request.LenderConfirmedReturn {
		out.Request.CompletedAt = stamp(now)
		out.ItemStatus = settledStatus(s.Item.Type)
		out.Events = append(out.Events, settledEvents(s, out.ItemStatus)...)
	}
	return settle(s, out)
}
