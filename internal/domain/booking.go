package domain

import (
	"strings"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCheckedIn BookingStatus = "checked_in"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCheckedIn:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// Booking represents a user's claim on units of a TicketType. A booking
// counts toward its ticket type's sold counter while confirmed or
// checked in, and stops counting once cancelled.
type Booking struct {
	ID           string        `json:"id"`
	Reference    string        `json:"reference"`
	UserID       string        `json:"user_id"`
	EventID      string        `json:"event_id"`
	TicketTypeID string        `json:"ticket_type_id"`
	Quantity     int           `json:"quantity"`
	TotalPrice   float64       `json:"total_price"`
	Currency     string        `json:"currency"`
	Status       BookingStatus `json:"status"`
	CheckedInAt  *time.Time    `json:"checked_in_at,omitempty"`
	CancelledAt  *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Validate validates the booking fields
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(b.EventID) == "" {
		return ErrInvalidEventID
	}
	if b.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.TotalPrice < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// CountsTowardSold reports whether this booking's quantity is included
// in its ticket type's sold counter.
func (b *Booking) CountsTowardSold() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusCheckedIn
}

// IsConfirmed checks if the booking is in confirmed status
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsCancelled checks if the booking is in cancelled status
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// IsCheckedIn checks if the booking has been checked in
func (b *Booking) IsCheckedIn() bool {
	return b.Status == BookingStatusCheckedIn
}

// BelongsToUser checks if the booking belongs to the specified user
func (b *Booking) BelongsToUser(userID string) bool {
	return b.UserID == userID
}

// Cancel marks the booking as cancelled. Cancellation is one-way and
// only valid from the confirmed state.
func (b *Booking) Cancel() error {
	if b.IsCancelled() {
		return ErrAlreadyCancelled
	}
	if b.IsCheckedIn() {
		return ErrCannotCancelCheckedIn
	}
	now := time.Now()
	b.Status = BookingStatusCancelled
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

// CheckIn marks the booking as redeemed at the event. Check-in is
// one-way, happens at most once, and has no inventory effect.
func (b *Booking) CheckIn() error {
	if b.IsCancelled() {
		return ErrCannotCheckInCancelled
	}
	if b.IsCheckedIn() {
		return ErrAlreadyCheckedIn
	}
	now := time.Now()
	b.Status = BookingStatusCheckedIn
	b.CheckedInAt = &now
	b.UpdatedAt = now
	return nil
}
