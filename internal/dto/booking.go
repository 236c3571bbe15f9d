package dto

import (
	"time"

	"github.com/eventease/eventease/internal/domain"
)

// CreateBookingRequest represents request to book tickets for an event
type CreateBookingRequest struct {
	TicketTypeID string `json:"ticket_type_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
}

// BookingResponse represents a booking in API response
type BookingResponse struct {
	ID           string     `json:"id"`
	Reference    string     `json:"reference"`
	UserID       string     `json:"user_id"`
	EventID      string     `json:"event_id"`
	TicketTypeID string     `json:"ticket_type_id"`
	Quantity     int        `json:"quantity"`
	TotalPrice   float64    `json:"total_price"`
	Currency     string     `json:"currency"`
	Status       string     `json:"status"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CancelBookingResponse represents response after cancelling a booking
type CancelBookingResponse struct {
	BookingID   string    `json:"booking_id"`
	Status      string    `json:"status"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// CheckInResponse represents response after checking a booking in
type CheckInResponse struct {
	BookingID   string    `json:"booking_id"`
	Reference   string    `json:"reference"`
	Status      string    `json:"status"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// BookingFromDomain converts domain Booking to BookingResponse
func BookingFromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:           b.ID,
		Reference:    b.Reference,
		UserID:       b.UserID,
		EventID:      b.EventID,
		TicketTypeID: b.TicketTypeID,
		Quantity:     b.Quantity,
		TotalPrice:   b.TotalPrice,
		Currency:     b.Currency,
		Status:       string(b.Status),
		CheckedInAt:  b.CheckedInAt,
		CancelledAt:  b.CancelledAt,
		CreatedAt:    b.CreatedAt,
	}
}

// BookingsFromDomain converts a list of domain Bookings
func BookingsFromDomain(bookings []*domain.Booking) []*BookingResponse {
	out := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingFromDomain(b))
	}
	return out
}
