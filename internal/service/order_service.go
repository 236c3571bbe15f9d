package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/eventease/eventease/internal/domain"
	"github.com/eventease/eventease/internal/dto"
	"github.com/eventease/eventease/internal/metrics"
	"github.com/eventease/eventease/internal/repository"
	"github.com/eventease/eventease/pkg/telemetry"
)

// OrderService defines the interface for multi-ticket checkout
type OrderService interface {
	// CreateOrder validates and commits a multi-line order atomically:
	// either every line reserves its units or none do
	CreateOrder(ctx context.Context, userID, eventID string, req *dto.CreateOrderRequest) (*dto.OrderResponse, error)

	// GetOrder retrieves an order owned by the user
	GetOrder(ctx context.Context, orderID, userID string) (*dto.OrderResponse, error)

	// CancelOrder cancels a confirmed order and returns every line's
	// units to inventory
	CancelOrder(ctx context.Context, orderID, userID string) (*dto.OrderResponse, error)
}

// orderService implements OrderService
type orderService struct {
	store             repository.Store
	eventPublisher    EventPublisher
	defaultCurrency   string
	referenceAttempts int
	referencePrefix   string
}

// NewOrderService creates a new order service. It shares the booking
// service's configuration shape since both paths follow the same
// reservation discipline.
func NewOrderService(store repository.Store, eventPublisher EventPublisher, cfg *BookingServiceConfig) OrderService {
	currency := "USD"
	attempts := 3
	prefix := "EO"
	if cfg != nil {
		if cfg.DefaultCurrency != "" {
			currency = cfg.DefaultCurrency
		}
		if cfg.ReferenceAttempts > 0 {
			attempts = cfg.ReferenceAttempts
		}
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &orderService{
		store:             store,
		eventPublisher:    eventPublisher,
		defaultCurrency:   currency,
		referenceAttempts: attempts,
		referencePrefix:   prefix,
	}
}

// CreateOrder commits all lines in one storage transaction. Lines are
// locked in ticket type ID order so two concurrent orders touching the
// same tiers cannot deadlock each other.
func (s *orderService) CreateOrder(ctx context.Context, userID, eventID string, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.create")
	defer span.End()

	if userID == "" {
		return nil, domain.ErrInvalidUserID
	}
	if eventID == "" {
		return nil, domain.ErrInvalidEventID
	}
	if req == nil || len(req.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	// Merge duplicate lines so a tier appears at most once.
	quantities := make(map[string]int, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if line.TicketTypeID == "" {
			return nil, domain.ErrTicketTypeNotFound
		}
		quantities[line.TicketTypeID] += line.Quantity
	}
	ticketTypeIDs := make([]string, 0, len(quantities))
	for id := range quantities {
		ticketTypeIDs = append(ticketTypeIDs, id)
	}
	sort.Strings(ticketTypeIDs)

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", eventID),
		attribute.Int("line_count", len(ticketTypeIDs)),
	)

	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsApproved() {
		return nil, domain.ErrEventNotApproved
	}

	var order *domain.Order
	err = s.store.WithTx(ctx, func(txCtx context.Context) error {
		now := time.Now()
		order = &domain.Order{
			ID:        uuid.New().String(),
			UserID:    userID,
			EventID:   eventID,
			Currency:  s.defaultCurrency,
			Status:    domain.OrderStatusConfirmed,
			CreatedAt: now,
			UpdatedAt: now,
		}

		for _, ttID := range ticketTypeIDs {
			qty := quantities[ttID]

			tt, err := s.store.TicketTypes().GetByIDForUpdate(txCtx, ttID)
			if err != nil {
				return err
			}
			if !tt.BelongsToEvent(eventID) {
				return domain.ErrTicketTypeNotFound
			}
			if !tt.HasCapacity(qty) {
				return domain.ErrInsufficientInventory
			}
			if tt.MaxPerUser > 0 {
				held, err := s.store.Bookings().CountUserQuantity(txCtx, userID, ttID)
				if err != nil {
					return err
				}
				if held+qty > tt.MaxPerUser {
					return domain.ErrUserLimitExceeded
				}
			}

			if err := s.store.TicketTypes().Reserve(txCtx, ttID, qty); err != nil {
				return err
			}

			subtotal := tt.PriceFor(qty)
			order.Items = append(order.Items, domain.OrderItem{
				ID:           uuid.New().String(),
				OrderID:      order.ID,
				TicketTypeID: ttID,
				Quantity:     qty,
				UnitPrice:    tt.Price,
				Subtotal:     subtotal,
			})
			order.TotalPrice += subtotal
			if tt.Currency != "" {
				order.Currency = tt.Currency
			}
		}

		return s.createWithReference(txCtx, order)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	_ = s.eventPublisher.PublishOrderCreated(ctx, order)
	metrics.RecordOrderCreated(ctx, eventID, order.TotalQuantity())

	return dto.OrderFromDomain(order), nil
}

func (s *orderService) createWithReference(ctx context.Context, order *domain.Order) error {
	for attempt := 0; attempt < s.referenceAttempts; attempt++ {
		ref, err := generateReference(s.referencePrefix)
		if err != nil {
			return domain.ErrReferenceGenerationFailed
		}
		order.Reference = ref

		err = s.store.Orders().Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrReferenceTaken) {
			return err
		}
	}
	return domain.ErrReferenceGenerationFailed
}

// GetOrder retrieves an order owned by the user
func (s *orderService) GetOrder(ctx context.Context, orderID, userID string) (*dto.OrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.get")
	defer span.End()

	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.BelongsToUser(userID) {
		return nil, domain.ErrOrderNotFound
	}
	return dto.OrderFromDomain(order), nil
}

// CancelOrder cancels a confirmed order and releases every line's
// units in the same transaction.
func (s *orderService) CancelOrder(ctx context.Context, orderID, userID string) (*dto.OrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.BelongsToUser(userID) {
		return nil, domain.ErrOrderNotFound
	}

	err = s.store.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.store.Orders().Cancel(txCtx, orderID); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := s.store.TicketTypes().Release(txCtx, item.TicketTypeID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	cancelled, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	_ = s.eventPublisher.PublishOrderCancelled(ctx, cancelled)
	metrics.RecordOrderCancelled(ctx, cancelled.EventID, cancelled.TotalQuantity())

	return dto.OrderFromDomain(cancelled), nil
}
