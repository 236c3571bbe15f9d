package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eventease/eventease/internal/domain"
)

const ticketTypeColumns = `id, event_id, name, price, currency, quantity, sold,
	COALESCE(max_per_user, 0) as max_per_user, is_free, created_at, updated_at`

// PostgresTicketTypeRepository implements TicketTypeRepository
type PostgresTicketTypeRepository struct {
	store *PostgresStore
}

func (r *PostgresTicketTypeRepository) scan(row pgx.Row) (*domain.TicketType, error) {
	tt := &domain.TicketType{}
	err := row.Scan(
		&tt.ID,
		&tt.EventID,
		&tt.Name,
		&tt.Price,
		&tt.Currency,
		&tt.Quantity,
		&tt.Sold,
		&tt.MaxPerUser,
		&tt.IsFree,
		&tt.CreatedAt,
		&tt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketTypeNotFound
		}
		return nil, fmt.Errorf("failed to scan ticket type: %w", err)
	}
	return tt, nil
}

// Create inserts a new ticket type
func (r *PostgresTicketTypeRepository) Create(ctx context.Context, tt *domain.TicketType) error {
	query := `
		INSERT INTO ticket_types (
			id, event_id, name, price, currency, quantity, sold,
			max_per_user, is_free, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.store.db(ctx).Exec(ctx, query,
		tt.ID,
		tt.EventID,
		tt.Name,
		tt.Price,
		tt.Currency,
		tt.Quantity,
		tt.Sold,
		tt.MaxPerUser,
		tt.IsFree,
		tt.CreatedAt,
		tt.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("failed to create ticket type: %w", err)
	}
	return nil
}

// GetByID retrieves a ticket type by ID
func (r *PostgresTicketTypeRepository) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = $1`
	return r.scan(r.store.db(ctx).QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a ticket type and locks its row for the
// rest of the surrounding transaction. Serializes all bookings of the
// same tier so the per-user limit check and the reservation see one
// consistent snapshot.
func (r *PostgresTicketTypeRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = $1 FOR UPDATE`
	return r.scan(r.store.db(ctx).QueryRow(ctx, query, id))
}

// ListByEvent retrieves all ticket types for an event
func (r *PostgresTicketTypeRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE event_id = $1 ORDER BY price, name`
	rows, err := r.store.db(ctx).Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket types: %w", err)
	}
	defer rows.Close()

	var out []*domain.TicketType
	for rows.Next() {
		tt, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tt)
	}
	return out, rows.Err()
}

// Reserve adds qty to the sold counter. The WHERE clause re-verifies
// capacity at write time, so a check made on a stale read can never
// oversell: the update simply matches no row.
func (r *PostgresTicketTypeRepository) Reserve(ctx context.Context, id string, qty int) error {
	if qty < 1 {
		return domain.ErrInvalidQuantity
	}
	query := `
		UPDATE ticket_types
		SET sold = sold + $2, updated_at = now()
		WHERE id = $1 AND sold + $2 <= quantity
	`
	tag, err := r.store.db(ctx).Exec(ctx, query, id, qty)
	if err != nil {
		return fmt.Errorf("failed to reserve inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrInsufficientInventory
	}
	return nil
}

// Release subtracts qty from the sold counter. Driving sold below zero
// means a caller released more than it reserved; that is a defect, not
// a user error, and aborts the transaction.
func (r *PostgresTicketTypeRepository) Release(ctx context.Context, id string, qty int) error {
	if qty < 1 {
		return domain.ErrInvalidQuantity
	}
	query := `
		UPDATE ticket_types
		SET sold = sold - $2, updated_at = now()
		WHERE id = $1 AND sold - $2 >= 0
	`
	tag, err := r.store.db(ctx).Exec(ctx, query, id, qty)
	if err != nil {
		return fmt.Errorf("failed to release inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrNegativeInventory
	}
	return nil
}

// Delete removes a ticket type unless bookings reference it
func (r *PostgresTicketTypeRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM ticket_types
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM bookings WHERE ticket_type_id = $1)
		  AND NOT EXISTS (SELECT 1 FROM order_items WHERE ticket_type_id = $1)
	`
	tag, err := r.store.db(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrTicketTypeInUse
	}
	return nil
}
