package domain

import "time"

// EventStatus represents the moderation status of an event
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// Event represents an event entity. Bookings are only accepted against
// approved events; the full organizer/moderation flow lives in the
// collaborating event service.
type Event struct {
	ID          string      `json:"id"`
	OrganizerID string      `json:"organizer_id"`
	Name        string      `json:"name"`
	Venue       string      `json:"venue"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// IsApproved checks if the event has passed moderation and is open
// for booking.
func (e *Event) IsApproved() bool {
	return e.Status == EventStatusApproved
}

// IsOwnedBy checks if the event is owned by the given organizer.
func (e *Event) IsOwnedBy(organizerID string) bool {
	return e.OrganizerID == organizerID
}
