package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of pgx shared by pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// PostgresStore implements Store over a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool

	events      *PostgresEventRepository
	ticketTypes *PostgresTicketTypeRepository
	bookings    *PostgresBookingRepository
	orders      *PostgresOrderRepository
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	s := &PostgresStore{pool: pool}
	s.events = &PostgresEventRepository{store: s}
	s.ticketTypes = &PostgresTicketTypeRepository{store: s}
	s.bookings = &PostgresBookingRepository{store: s}
	s.orders = &PostgresOrderRepository{store: s}
	return s
}

// Events returns the event repository
func (s *PostgresStore) Events() EventRepository { return s.events }

// TicketTypes returns the ticket type repository
func (s *PostgresStore) TicketTypes() TicketTypeRepository { return s.ticketTypes }

// Bookings returns the booking repository
func (s *PostgresStore) Bookings() BookingRepository { return s.bookings }

// Orders returns the order repository
func (s *PostgresStore) Orders() OrderRepository { return s.orders }

// WithTx runs fn inside a single database transaction. Repository
// calls made with the context passed to fn share that transaction.
// fn returning an error rolls everything back; nested calls reuse the
// surrounding transaction.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// db returns the transaction bound to ctx, or the pool.
func (s *PostgresStore) db(ctx context.Context) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
