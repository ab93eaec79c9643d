package lending

import (
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// Event is a notification a transition asks to send. The engine attaches
// the related item and request when it hands events to the sink.
type Event struct {
	RecipientID int64
	Type        model.NotificationType
	Message     string
}

func (s Snapshot) itemName() string      { return s.Item.Name }
func (s Snapshot) ownerName() string     { return s.Owner.DisplayName() }
func (s Snapshot) requesterName() string { return s.Requester.DisplayName() }

func toOwner(s Snapshot, typ model.NotificationType, format string, args ...any) Event {
	return Event{RecipientID: s.Item.OwnerID, Type: typ, Message: fmt.Sprintf(format, args...)}
}

func toRequester(s Snapshot, typ model.NotificationType, format string, args ...any) Event {
	return Event{RecipientID: s.Request.RequesterID, Type: typ, Message: fmt.Sprintf(format, args...)}
}

func requestCreatedEvents(s Snapshot) []Event {
	return []Event{
		toOwner(s, model.NotificationRequestCreated,
			"%s has requested your item: %s", s.requesterName(), s.itemName()),
	}
}

func statusEvents(s Snapshot, from, to model.RequestStatus) []Event {
	switch to {
	case model.RequestStatusAccepted:
		return []Event{toRequester(s, model.NotificationRequestAccepted,
			"Your request for '%s' has been accepted", s.itemName())}
	case model.RequestStatusRejected:
		return []Event{toRequester(s, model.NotificationRequestRejected,
			"Your request for '%s' has been rejected", s.itemName())}
	}
	if from == to {
		return nil
	}
	return []Event{toRequester(s, model.NotificationRequestStatusChanged,
		"Status of your request for '%s' changed to %s", s.itemName(), to)}
}

func lentEvents(s Snapshot) []Event {
	return []Event{
		toRequester(s, model.NotificationRequestStatusChanged,
			"'%s' has been marked as lent by %s. Please confirm receipt.", s.itemName(), s.ownerName()),
	}
}

func receiptEvents(s Snapshot) []Event {
	if s.Item.Type == model.ItemTypeSell {
		return []Event{
			toOwner(s, model.NotificationRequestCompleted,
				"'%s' has been sold to %s", s.itemName(), s.requesterName()),
			toRequester(s, model.NotificationRequestCompleted,
				"You have purchased '%s'. Transaction complete.", s.itemName()),
		}
	}
	return []Event{
		toOwner(s, model.NotificationRequestStatusChanged,
			"%s confirmed receiving '%s'", s.requesterName(), s.itemName()),
	}
}

func doneEvents(s Snapshot) []Event {
	return []Event{
		toRequester(s, model.NotificationRequestCompleted,
			"Your request for '%s' is completed. Please confirm return.", s.itemName()),
		toOwner(s, model.NotificationRequestCompleted,
			"Request for your item '%s' is completed. Await return confirmation.", s.itemName()),
	}
}

func returnEvents(s Snapshot, isBorrower bool) []Event {
	if isBorrower {
		return []Event{toOwner(s, model.NotificationRequestStatusChanged,
			"%s confirmed returning '%s'", s.requesterName(), s.itemName())}
	}
	return []Event{toRequester(s, model.NotificationRequestStatusChanged,
		"%s confirmed getting '%s' back", s.ownerName(), s.itemName())}
}

func settledEvents(s Snapshot, status model.ItemStatus) []Event {
	ownerMsg := "Return of '%s' confirmed by both parties."
	if status == model.ItemStatusAvailable {
		ownerMsg = "Return of '%s' confirmed. The item is available again."
	}
	return []Event{
		toRequester(s, model.NotificationRequestStatusChanged,
			"Return of '%s' confirmed by both parties.", s.itemName()),
		toOwner(s, model.NotificationRequestStatusChanged, ownerMsg, s.itemName()),
	}
}
