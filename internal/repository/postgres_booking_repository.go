package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eventease/eventease/internal/domain"
)

const bookingColumns = `id, reference, user_id, event_id, ticket_type_id,
	quantity, total_price, currency, status, checked_in_at, cancelled_at,
	created_at, updated_at`

// PostgresBookingRepository implements BookingRepository
type PostgresBookingRepository struct {
	store *PostgresStore
}

func (r *PostgresBookingRepository) scan(row pgx.Row) (*domain.Booking, error) {
	b := &domain.Booking{}
	var status string
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.UserID,
		&b.EventID,
		&b.TicketTypeID,
		&b.Quantity,
		&b.TotalPrice,
		&b.Currency,
		&status,
		&b.CheckedInAt,
		&b.CancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

// Create inserts a new booking row. A unique-constraint collision on
// the reference surfaces as ErrReferenceTaken so the caller can retry
// with a fresh code. Inside a transaction the insert runs under a
// savepoint: a collision must not abort the surrounding transaction
// before the retry.
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if tx := txFromContext(ctx); tx != nil {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to open savepoint: %w", err)
		}
		if err := r.insert(ctx, sp, booking); err != nil {
			_ = sp.Rollback(ctx)
			return err
		}
		return sp.Commit(ctx)
	}
	return r.insert(ctx, r.store.db(ctx), booking)
}

func (r *PostgresBookingRepository) insert(ctx context.Context, q querier, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (
			id, reference, user_id, event_id, ticket_type_id,
			quantity, total_price, currency, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := q.Exec(ctx, query,
		booking.ID,
		booking.Reference,
		booking.UserID,
		booking.EventID,
		booking.TicketTypeID,
		booking.Quantity,
		booking.TotalPrice,
		booking.Currency,
		booking.Status.String(),
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrReferenceTaken
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scan(r.store.db(ctx).QueryRow(ctx, query, id))
}

// GetByReference retrieves a booking by its reference code
func (r *PostgresBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = $1`
	return r.scan(r.store.db(ctx).QueryRow(ctx, query, reference))
}

// ListByUser retrieves a page of the user's bookings, newest first
func (r *PostgresBookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.store.db(ctx).Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var out []*domain.Booking
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CountUserQuantity sums quantities over the user's non-cancelled
// bookings of a ticket type.
func (r *PostgresBookingRepository) CountUserQuantity(ctx context.Context, userID, ticketTypeID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM bookings
		WHERE user_id = $1 AND ticket_type_id = $2 AND status <> 'cancelled'
	`
	var total int
	if err := r.store.db(ctx).QueryRow(ctx, query, userID, ticketTypeID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count user bookings: %w", err)
	}
	return total, nil
}

// Cancel transitions confirmed -> cancelled. The conditional WHERE
// makes the transition exactly-once under concurrent requests; when no
// row matches, the current status decides the error.
func (r *PostgresBookingRepository) Cancel(ctx context.Context, id string) error {
	query := `
		UPDATE bookings
		SET status = 'cancelled', cancelled_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'confirmed'
	`
	tag, err := r.store.db(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		booking, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		switch booking.Status {
		case domain.BookingStatusCancelled:
			return domain.ErrAlreadyCancelled
		case domain.BookingStatusCheckedIn:
			return domain.ErrCannotCancelCheckedIn
		default:
			return domain.ErrBookingNotFound
		}
	}
	return nil
}

// CheckIn transitions confirmed -> checked_in, exactly once.
func (r *PostgresBookingRepository) CheckIn(ctx context.Context, id string) error {
	query := `
		UPDATE bookings
		SET status = 'checked_in', checked_in_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'confirmed'
	`
	tag, err := r.store.db(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to check in booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		booking, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		switch booking.Status {
		case domain.BookingStatusCancelled:
			return domain.ErrCannotCheckInCancelled
		case domain.BookingStatusCheckedIn:
			return domain.ErrAlreadyCheckedIn
		default:
			return domain.ErrBookingNotFound
		}
	}
	return nil
}
