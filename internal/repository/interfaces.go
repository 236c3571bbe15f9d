package repository

import (
	"context"
	"errors"

	"github.com/eventease/eventease/internal/domain"
)

// ErrReferenceTaken is returned by Create when the generated reference
// collides with an existing row. The caller retries with a fresh code.
var ErrReferenceTaken = errors.New("reference already taken")

// Store bundles the repositories with a scoped transaction. Inside
// WithTx every repository call runs on the same transaction; on any
// error the whole transaction rolls back. This is the only way
// multi-step mutations (reserve + insert) are allowed to execute.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Events() EventRepository
	TicketTypes() TicketTypeRepository
	Bookings() BookingRepository
	Orders() OrderRepository
}

// EventRepository provides access to events consumed from the
// event/organizer collaborator.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
}

// TicketTypeRepository is the inventory ledger. Reserve and Release
// are the only mutation paths for the sold counter; both re-verify
// their precondition at write time so a stale read can never oversell
// or drive the counter negative.
type TicketTypeRepository interface {
	Create(ctx context.Context, tt *domain.TicketType) error
	GetByID(ctx context.Context, id string) (*domain.TicketType, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	// Must be called inside WithTx.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.TicketType, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.TicketType, error)
	// Reserve atomically adds qty to sold, failing with
	// domain.ErrInsufficientInventory when capacity would be exceeded.
	Reserve(ctx context.Context, id string, qty int) error
	// Release atomically subtracts qty from sold, failing with
	// domain.ErrNegativeInventory when sold would go below zero.
	Release(ctx context.Context, id string, qty int) error
	// Delete removes a ticket type that no bookings reference.
	Delete(ctx context.Context, id string) error
}

// BookingRepository persists bookings and their status transitions.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error)
	// CountUserQuantity sums quantities over the user's non-cancelled
	// bookings of the ticket type. Used for the per-user limit check
	// and must run in the same transaction as Reserve.
	CountUserQuantity(ctx context.Context, userID, ticketTypeID string) (int, error)
	// Cancel transitions confirmed -> cancelled, returning the precise
	// lifecycle error when the booking is in any other state.
	Cancel(ctx context.Context, id string) error
	// CheckIn transitions confirmed -> checked_in, returning the
	// precise lifecycle error when the booking is in any other state.
	CheckIn(ctx context.Context, id string) error
}

// OrderRepository persists multi-ticket checkout orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// Cancel transitions confirmed -> cancelled.
	Cancel(ctx context.Context, id string) error
}
