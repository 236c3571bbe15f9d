package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eventease/eventease/internal/domain"
)

// PostgresOrderRepository implements OrderRepository
type PostgresOrderRepository struct {
	store *PostgresStore
}

// Create inserts an order and its items. Must run inside WithTx so the
// order, its items, and the inventory reservations commit together.
// The insert runs under a savepoint: a reference collision must not
// abort the surrounding transaction before the retry.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if tx := txFromContext(ctx); tx != nil {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to open savepoint: %w", err)
		}
		if err := r.insert(ctx, sp, order); err != nil {
			_ = sp.Rollback(ctx)
			return err
		}
		return sp.Commit(ctx)
	}
	return r.insert(ctx, r.store.db(ctx), order)
}

func (r *PostgresOrderRepository) insert(ctx context.Context, q querier, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, reference, user_id, event_id, total_price, currency,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := q.Exec(ctx, query,
		order.ID,
		order.Reference,
		order.UserID,
		order.EventID,
		order.TotalPrice,
		order.Currency,
		order.Status.String(),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrReferenceTaken
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, ticket_type_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i := range order.Items {
		item := &order.Items[i]
		if _, err := q.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.TicketTypeID,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
		); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

// GetByID retrieves an order with its items
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, reference, user_id, event_id, total_price, currency,
		       status, cancelled_at, created_at, updated_at
		FROM orders WHERE id = $1
	`
	order := &domain.Order{}
	var status string
	err := r.store.db(ctx).QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.Reference,
		&order.UserID,
		&order.EventID,
		&order.TotalPrice,
		&order.Currency,
		&status,
		&order.CancelledAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	order.Status = domain.OrderStatus(status)

	itemQuery := `
		SELECT id, order_id, ticket_type_id, quantity, unit_price, subtotal
		FROM order_items WHERE order_id = $1 ORDER BY id
	`
	rows, err := r.store.db(ctx).Query(ctx, itemQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.TicketTypeID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return order, rows.Err()
}

// Cancel transitions confirmed -> cancelled, exactly once.
func (r *PostgresOrderRepository) Cancel(ctx context.Context, id string) error {
	query := `
		UPDATE orders
		SET status = 'cancelled', cancelled_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'confirmed'
	`
	tag, err := r.store.db(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		order, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order.IsCancelled() {
			return domain.ErrOrderAlreadyCancelled
		}
		return domain.ErrOrderNotFound
	}
	return nil
}
