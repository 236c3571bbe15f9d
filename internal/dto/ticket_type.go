package dto

import (
	"github.com/eventease/eventease/internal/domain"
)

// CreateTicketTypeRequest represents request to create a ticket tier
type CreateTicketTypeRequest struct {
	Name       string  `json:"name" binding:"required"`
	Price      float64 `json:"price" binding:"min=0"`
	Currency   string  `json:"currency,omitempty"`
	Quantity   int     `json:"quantity" binding:"required,min=1"`
	MaxPerUser int     `json:"max_per_user" binding:"min=0"`
	IsFree     bool    `json:"is_free"`
}

// TicketTypeResponse represents a ticket tier in API response
type TicketTypeResponse struct {
	ID         string  `json:"id"`
	EventID    string  `json:"event_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	Quantity   int     `json:"quantity"`
	Sold       int     `json:"sold"`
	Available  int     `json:"available"`
	MaxPerUser int     `json:"max_per_user"`
	IsFree     bool    `json:"is_free"`
}

// TicketTypeFromDomain converts domain TicketType to TicketTypeResponse
func TicketTypeFromDomain(t *domain.TicketType) *TicketTypeResponse {
	return &TicketTypeResponse{
		ID:         t.ID,
		EventID:    t.EventID,
		Name:       t.Name,
		Price:      t.Price,
		Currency:   t.Currency,
		Quantity:   t.Quantity,
		Sold:       t.Sold,
		Available:  t.Available(),
		MaxPerUser: t.MaxPerUser,
		IsFree:     t.IsFree,
	}
}

// TicketTypesFromDomain converts a list of domain TicketTypes
func TicketTypesFromDomain(types []*domain.TicketType) []*TicketTypeResponse {
	out := make([]*TicketTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, TicketTypeFromDomain(t))
	}
	return out
}
