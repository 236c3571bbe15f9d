package domain

import (
	"strings"
	"time"
)

// TicketType represents a purchasable tier of admission to an event,
// e.g. "VIP" or "General". Its sold counter is the single source of
// truth for remaining capacity and is only ever mutated through the
// ledger's reserve/release operations.
type TicketType struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Currency   string    `json:"currency"`
	Quantity   int       `json:"quantity"`
	Sold       int       `json:"sold"`
	MaxPerUser int       `json:"max_per_user,omitempty"` // 0 = unlimited
	IsFree     bool      `json:"is_free"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Available returns the remaining unsold capacity.
func (t *TicketType) Available() int {
	return t.Quantity - t.Sold
}

// HasCapacity reports whether qty more units can be sold.
func (t *TicketType) HasCapacity(qty int) bool {
	return qty >= 1 && t.Sold+qty <= t.Quantity
}

// PriceFor returns the total price for qty units. Free tiers always
// price to zero regardless of the stored price.
func (t *TicketType) PriceFor(qty int) float64 {
	if t.IsFree {
		return 0
	}
	return t.Price * float64(qty)
}

// BelongsToEvent checks if the ticket type belongs to the given event.
func (t *TicketType) BelongsToEvent(eventID string) bool {
	return t.EventID == eventID
}

// Validate validates the ticket type fields
func (t *TicketType) Validate() error {
	if strings.TrimSpace(t.EventID) == "" {
		return ErrInvalidEventID
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrInvalidName
	}
	if t.Quantity <= 0 {
		return ErrInvalidCapacity
	}
	if t.Price < 0 {
		return ErrInvalidPrice
	}
	if t.Sold < 0 || t.Sold > t.Quantity {
		return ErrNegativeInventory
	}
	return nil
}
