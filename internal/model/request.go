package model

import "time"

// RequestStatus is the lifecycle status of a borrow or purchase request.
type RequestStatus string

// Request statuses.
const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusAccepted RequestStatus = "ACCEPTED"
	RequestStatusRejected RequestStatus = "REJECTED"
	RequestStatusDone     RequestStatus = "DONE"
)

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusRejected, RequestStatusDone:
		return true
	}
	return false
}

// Request is one member asking to borrow or buy another member's item.
type Request struct {
	ID          int64         `json:"id"`
	ItemID      int64         `json:"item_id"`
	RequesterID int64         `json:"requester_id"`
	Status      RequestStatus `json:"status"`

	LenderMarkedAsLent       bool `json:"lender_marked_as_lent"`
	BorrowerConfirmedReceipt bool `json:"borrower_confirmed_receipt"`
	BorrowerConfirmedReturn  bool `json:"borrower_confirmed_return"`
	LenderConfirmedReturn    bool `json:"lender_confirmed_return"`

	LentAt      *time.Time `json:"lent_at,omitempty"`
	ReceivedAt  *time.Time `json:"received_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// Version is bumped on every save and guards against lost updates.
	Version int64 `json:"version"`

	// Joined fields (not always populated).
	ItemName      string `json:"item_name,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
	OwnerID       int64  `json:"owner_id,omitempty"`
	OwnerName     string `json:"owner_name,omitempty"`
}

// Completed reports whether the request has been fully settled.
func (r *Request) Completed() bool {
	return r.CompletedAt != nil
}

// Drives reports whether this request currently holds its item unavailable.
func (r *Request) Drives() bool {
	return (r.Status == RequestStatusAccepted || r.Status == RequestStatusDone) && !r.Completed()
}
