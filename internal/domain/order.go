package domain

import "time"

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// OrderItem is a single line of an order, claiming units of one
// ticket type.
type OrderItem struct {
	ID           string  `json:"id"`
	OrderID      string  `json:"order_id"`
	TicketTypeID string  `json:"ticket_type_id"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Subtotal     float64 `json:"subtotal"`
}

// Order aggregates OrderItems for a multi-ticket checkout. Each item
// contributes to its ticket type's sold counter while the order is not
// cancelled, mirroring the booking invariant at coarser granularity.
type Order struct {
	ID          string      `json:"id"`
	Reference   string      `json:"reference"`
	UserID      string      `json:"user_id"`
	EventID     string      `json:"event_id"`
	TotalPrice  float64     `json:"total_price"`
	Currency    string      `json:"currency"`
	Status      OrderStatus `json:"status"`
	Items       []OrderItem `json:"items"`
	CancelledAt *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Validate validates the order fields
func (o *Order) Validate() error {
	if o.UserID == "" {
		return ErrInvalidUserID
	}
	if o.EventID == "" {
		return ErrInvalidEventID
	}
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	for i := range o.Items {
		if o.Items[i].Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// IsCancelled checks if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// BelongsToUser checks if the order belongs to the specified user
func (o *Order) BelongsToUser(userID string) bool {
	return o.UserID == userID
}

// TotalQuantity returns the summed quantity across all items.
func (o *Order) TotalQuantity() int {
	total := 0
	for i := range o.Items {
		total += o.Items[i].Quantity
	}
	return total
}

// Cancel marks the order as cancelled. Cancellation is one-way.
func (o *Order) Cancel() error {
	if o.IsCancelled() {
		return ErrOrderAlreadyCancelled
	}
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	return nil
}
