package model

import "time"

// NotificationType classifies a notification event.
type NotificationType string

// Notification types.
const (
	NotificationRequestCreated       NotificationType = "REQUEST_CREATED"
	NotificationRequestAccepted      NotificationType = "REQUEST_ACCEPTED"
	NotificationRequestRejected      NotificationType = "REQUEST_REJECTED"
	NotificationRequestCompleted     NotificationType = "REQUEST_COMPLETED"
	NotificationRequestStatusChanged NotificationType = "REQUEST_STATUS_CHANGED"
	NotificationItemUpdated          NotificationType = "ITEM_UPDATED"
	NotificationItemDeleted          NotificationType = "ITEM_DELETED"
	NotificationMessageReceived      NotificationType = "MESSAGE_RECEIVED"
)

// Notification is an event queued for delivery to one member.
type Notification struct {
	ID               int64            `json:"id"`
	EventID          string           `json:"event_id"`
	RecipientID      int64            `json:"recipient_id"`
	Type             NotificationType `json:"type"`
	Message          string           `json:"message"`
	RelatedItemID    *int64           `json:"related_item_id,omitempty"`
	RelatedRequestID *int64           `json:"related_request_id,omitempty"`
	RelatedMessageID *int64           `json:"related_message_id,omitempty"`
	IsRead           bool             `json:"is_read"`
	CreatedAt        time.Time        `json:"created_at"`
	ReadAt           *time.Time       `json:"read_at,omitempty"`
}
