package model

import "time"

// ItemType says whether an item is lent out and comes back, or sold once.
type ItemType string

// Item types.
const (
	ItemTypeLend ItemType = "LEND"
	ItemTypeSell ItemType = "SELL"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeLend || t == ItemTypeSell
}

// ItemStatus is the availability of an item in the community catalog.
type ItemStatus string

// Item statuses.
const (
	ItemStatusAvailable   ItemStatus = "AVAILABLE"
	ItemStatusUnavailable ItemStatus = "UNAVAILABLE"
	ItemStatusSold        ItemStatus = "SOLD"
	ItemStatusReturned    ItemStatus = "RETURNED"
)

// Urgencies. An urgent item is highlighted in the catalog.
const (
	UrgencyNormal = "NORMAL"
	UrgencyUrgent = "URGENT"
)

// DefaultUrgency is used when an item is posted without one.
const DefaultUrgency = UrgencyNormal

// Item is something a member offers to lend or sell.
type Item struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Urgency     string     `json:"urgency"`
	Type        ItemType   `json:"type"`
	Status      ItemStatus `json:"status"`
	OwnerID     int64      `json:"owner_id"`
	ImageMime   string     `json:"image_mime,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	OwnerName string `json:"owner_name,omitempty"`
}
