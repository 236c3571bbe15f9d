package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eventease/eventease/internal/domain"
)

// PostgresEventRepository implements EventRepository
type PostgresEventRepository struct {
	store *PostgresStore
}

// Create inserts a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (
			id, organizer_id, name, venue, start_time, end_time,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.store.db(ctx).Exec(ctx, query,
		event.ID,
		event.OrganizerID,
		event.Name,
		event.Venue,
		event.StartTime,
		event.EndTime,
		string(event.Status),
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, organizer_id, name, venue, start_time, end_time,
		       status, created_at, updated_at
		FROM events WHERE id = $1
	`
	event := &domain.Event{}
	var status string
	err := r.store.db(ctx).QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Name,
		&event.Venue,
		&event.StartTime,
		&event.EndTime,
		&status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	event.Status = domain.EventStatus(status)
	return event, nil
}
