// Package memory provides an in-memory Store with snapshot-rollback
// transactions. It backs the service tests: transactions are
// serialized by a store-wide mutex, so concurrent bookings exercise
// the same all-or-nothing semantics the postgres store gets from
// row locks and conditional updates.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/eventease/eventease/internal/domain"
	"github.com/eventease/eventease/internal/repository"
)

type txKey struct{}

// Store implements repository.Store over in-memory maps.
type Store struct {
	mu sync.Mutex

	events      map[string]*domain.Event
	ticketTypes map[string]*domain.TicketType
	bookings    map[string]*domain.Booking
	orders      map[string]*domain.Order
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		events:      make(map[string]*domain.Event),
		ticketTypes: make(map[string]*domain.TicketType),
		bookings:    make(map[string]*domain.Booking),
		orders:      make(map[string]*domain.Order),
	}
}

// Events returns the event repository
func (s *Store) Events() repository.EventRepository { return &eventRepo{s} }

// TicketTypes returns the ticket type repository
func (s *Store) TicketTypes() repository.TicketTypeRepository { return &ticketTypeRepo{s} }

// Bookings returns the booking repository
func (s *Store) Bookings() repository.BookingRepository { return &bookingRepo{s} }

// Orders returns the order repository
func (s *Store) Orders() repository.OrderRepository { return &orderRepo{s} }

// WithTx serializes the transaction under the store mutex and rolls
// back to a snapshot when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock acquires the store mutex for a standalone operation; inside a
// transaction the mutex is already held.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type state struct {
	events      map[string]*domain.Event
	ticketTypes map[string]*domain.TicketType
	bookings    map[string]*domain.Booking
	orders      map[string]*domain.Order
}

func (s *Store) snapshot() state {
	st := state{
		events:      make(map[string]*domain.Event, len(s.events)),
		ticketTypes: make(map[string]*domain.TicketType, len(s.ticketTypes)),
		bookings:    make(map[string]*domain.Booking, len(s.bookings)),
		orders:      make(map[string]*domain.Order, len(s.orders)),
	}
	for k, v := range s.events {
		c := *v
		st.events[k] = &c
	}
	for k, v := range s.ticketTypes {
		c := *v
		st.ticketTypes[k] = &c
	}
	for k, v := range s.bookings {
		c := *v
		st.bookings[k] = &c
	}
	for k, v := range s.orders {
		c := *v
		c.Items = append([]domain.OrderItem(nil), v.Items...)
		st.orders[k] = &c
	}
	return st
}

func (s *Store) restore(st state) {
	s.events = st.events
	s.ticketTypes = st.ticketTypes
	s.bookings = st.bookings
	s.orders = st.orders
}

type eventRepo struct{ s *Store }

func (r *eventRepo) Create(ctx context.Context, event *domain.Event) error {
	defer r.s.lock(ctx)()
	c := *event
	r.s.events[event.ID] = &c
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	defer r.s.lock(ctx)()
	event, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	c := *event
	return &c, nil
}

type ticketTypeRepo struct{ s *Store }

func (r *ticketTypeRepo) Create(ctx context.Context, tt *domain.TicketType) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.events[tt.EventID]; !ok {
		return domain.ErrEventNotFound
	}
	c := *tt
	r.s.ticketTypes[tt.ID] = &c
	return nil
}

func (r *ticketTypeRepo) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	defer r.s.lock(ctx)()
	tt, ok := r.s.ticketTypes[id]
	if !ok {
		return nil, domain.ErrTicketTypeNotFound
	}
	c := *tt
	return &c, nil
}

func (r *ticketTypeRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.TicketType, error) {
	// The store mutex is already the strongest lock available.
	return r.GetByID(ctx, id)
}

func (r *ticketTypeRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	defer r.s.lock(ctx)()
	var out []*domain.TicketType
	for _, tt := range r.s.ticketTypes {
		if tt.EventID == eventID {
			c := *tt
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ticketTypeRepo) Reserve(ctx context.Context, id string, qty int) error {
	defer r.s.lock(ctx)()
	if qty < 1 {
		return domain.ErrInvalidQuantity
	}
	tt, ok := r.s.ticketTypes[id]
	if !ok {
		return domain.ErrTicketTypeNotFound
	}
	if tt.Sold+qty > tt.Quantity {
		return domain.ErrInsufficientInventory
	}
	tt.Sold += qty
	return nil
}

func (r *ticketTypeRepo) Release(ctx context.Context, id string, qty int) error {
	defer r.s.lock(ctx)()
	if qty < 1 {
		return domain.ErrInvalidQuantity
	}
	tt, ok := r.s.ticketTypes[id]
	if !ok {
		return domain.ErrTicketTypeNotFound
	}
	if tt.Sold-qty < 0 {
		return domain.ErrNegativeInventory
	}
	tt.Sold -= qty
	return nil
}

func (r *ticketTypeRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.ticketTypes[id]; !ok {
		return domain.ErrTicketTypeNotFound
	}
	for _, b := range r.s.bookings {
		if b.TicketTypeID == id {
			return domain.ErrTicketTypeInUse
		}
	}
	for _, o := range r.s.orders {
		for _, item := range o.Items {
			if item.TicketTypeID == id {
				return domain.ErrTicketTypeInUse
			}
		}
	}
	delete(r.s.ticketTypes, id)
	return nil
}

type bookingRepo struct{ s *Store }

func (r *bookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	defer r.s.lock(ctx)()
	for _, b := range r.s.bookings {
		if b.Reference == booking.Reference {
			return repository.ErrReferenceTaken
		}
	}
	c := *booking
	r.s.bookings[booking.ID] = &c
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	defer r.s.lock(ctx)()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	c := *b
	return &c, nil
}

func (r *bookingRepo) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	defer r.s.lock(ctx)()
	for _, b := range r.s.bookings {
		if b.Reference == reference {
			c := *b
			return &c, nil
		}
	}
	return nil, domain.ErrBookingNotFound
}

func (r *bookingRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error) {
	defer r.s.lock(ctx)()
	var out []*domain.Booking
	for _, b := range r.s.bookings {
		if b.UserID == userID {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *bookingRepo) CountUserQuantity(ctx context.Context, userID, ticketTypeID string) (int, error) {
	defer r.s.lock(ctx)()
	total := 0
	for _, b := range r.s.bookings {
		if b.UserID == userID && b.TicketTypeID == ticketTypeID && !b.IsCancelled() {
			total += b.Quantity
		}
	}
	return total, nil
}

func (r *bookingRepo) Cancel(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()
	b, ok := r.s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	return b.Cancel()
}

func (r *bookingRepo) CheckIn(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()
	b, ok := r.s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	return b.CheckIn()
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	defer r.s.lock(ctx)()
	for _, o := range r.s.orders {
		if o.Reference == order.Reference {
			return repository.ErrReferenceTaken
		}
	}
	c := *order
	c.Items = append([]domain.OrderItem(nil), order.Items...)
	r.s.orders[order.ID] = &c
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	defer r.s.lock(ctx)()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	c := *o
	c.Items = append([]domain.OrderItem(nil), o.Items...)
	return &c, nil
}

func (r *orderRepo) Cancel(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	return o.Cancel()
}
