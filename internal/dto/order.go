package dto

import (
	"time"

	"github.com/eventease/eventease/internal/domain"
)

// OrderLineRequest represents one ticket tier line in an order
type OrderLineRequest struct {
	TicketTypeID string `json:"ticket_type_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest represents request to place a multi-line order
type CreateOrderRequest struct {
	Items []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemResponse represents one line of an order in API response
type OrderItemResponse struct {
	ID           string  `json:"id"`
	TicketTypeID string  `json:"ticket_type_id"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Subtotal     float64 `json:"subtotal"`
}

// OrderResponse represents an order in API response
type OrderResponse struct {
	ID          string              `json:"id"`
	Reference   string              `json:"reference"`
	UserID      string              `json:"user_id"`
	EventID     string              `json:"event_id"`
	TotalPrice  float64             `json:"total_price"`
	Currency    string              `json:"currency"`
	Status      string              `json:"status"`
	Items       []OrderItemResponse `json:"items"`
	CancelledAt *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// OrderFromDomain converts domain Order to OrderResponse
func OrderFromDomain(o *domain.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID:           it.ID,
			TicketTypeID: it.TicketTypeID,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Subtotal:     it.Subtotal,
		})
	}
	return &OrderResponse{
		ID:          o.ID,
		Reference:   o.Reference,
		UserID:      o.UserID,
		EventID:     o.EventID,
		TotalPrice:  o.TotalPrice,
		Currency:    o.Currency,
		Status:      string(o.Status),
		Items:       items,
		CancelledAt: o.CancelledAt,
		CreatedAt:   o.CreatedAt,
	}
}
