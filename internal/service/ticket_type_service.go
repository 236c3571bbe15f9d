package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/eventease/eventease/internal/domain"
	"github.com/eventease/eventease/internal/dto"
	"github.com/eventease/eventease/internal/repository"
	"github.com/eventease/eventease/pkg/logger"
	"github.com/eventease/eventease/pkg/telemetry"
)

// TicketTypeService defines the interface for ticket tier management
type TicketTypeService interface {
	// CreateTicketType creates a ticket tier for an event the organizer
	// owns
	CreateTicketType(ctx context.Context, organizerID, eventID string, req *dto.CreateTicketTypeRequest) (*dto.TicketTypeResponse, error)

	// GetTicketType retrieves a single ticket tier with availability
	GetTicketType(ctx context.Context, ticketTypeID string) (*dto.TicketTypeResponse, error)

	// ListTicketTypes retrieves all tiers of an event with availability
	ListTicketTypes(ctx context.Context, eventID string) ([]*dto.TicketTypeResponse, error)

	// DeleteTicketType removes a tier no bookings reference
	DeleteTicketType(ctx context.Context, organizerID, eventID, ticketTypeID string) error
}

// ticketTypeService implements TicketTypeService
type ticketTypeService struct {
	store           repository.Store
	cache           *redis.Client
	cacheTTL        time.Duration
	defaultCurrency string
}

// TicketTypeServiceConfig contains configuration for the ticket type
// service
type TicketTypeServiceConfig struct {
	CacheTTL        time.Duration
	DefaultCurrency string
}

// NewTicketTypeService creates a new ticket type service. cache may be
// nil, in which case listings always hit the database.
func NewTicketTypeService(store repository.Store, cache *redis.Client, cfg *TicketTypeServiceConfig) TicketTypeService {
	ttl := 5 * time.Second
	currency := "USD"
	if cfg != nil {
		if cfg.CacheTTL > 0 {
			ttl = cfg.CacheTTL
		}
		if cfg.DefaultCurrency != "" {
			currency = cfg.DefaultCurrency
		}
	}
	return &ticketTypeService{
		store:           store,
		cache:           cache,
		cacheTTL:        ttl,
		defaultCurrency: currency,
	}
}

// CreateTicketType creates a ticket tier for an event the organizer
// owns. An event owned by someone else is reported as not found.
func (s *ticketTypeService) CreateTicketType(ctx context.Context, organizerID, eventID string, req *dto.CreateTicketTypeRequest) (*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.create")
	defer span.End()

	if req == nil {
		return nil, domain.ErrInvalidName
	}

	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsOwnedBy(organizerID) {
		return nil, domain.ErrEventNotFound
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	price := req.Price
	if req.IsFree {
		price = 0
	}

	now := time.Now()
	tt := &domain.TicketType{
		ID:         uuid.New().String(),
		EventID:    eventID,
		Name:       req.Name,
		Price:      price,
		Currency:   currency,
		Quantity:   req.Quantity,
		Sold:       0,
		MaxPerUser: req.MaxPerUser,
		IsFree:     req.IsFree,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tt.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.store.TicketTypes().Create(ctx, tt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("ticket_type_id", tt.ID),
		attribute.String("event_id", eventID),
	)

	s.invalidateListing(ctx, eventID)
	return dto.TicketTypeFromDomain(tt), nil
}

// GetTicketType retrieves a single ticket tier with availability
func (s *ticketTypeService) GetTicketType(ctx context.Context, ticketTypeID string) (*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.get")
	defer span.End()

	tt, err := s.store.TicketTypes().GetByID(ctx, ticketTypeID)
	if err != nil {
		return nil, err
	}
	return dto.TicketTypeFromDomain(tt), nil
}

// ListTicketTypes retrieves all tiers of an event with availability.
// Listings are cached briefly: availability is read far more often
// than it changes, and a few seconds of staleness is acceptable here
// because the booking path re-checks against the locked row anyway.
func (s *ticketTypeService) ListTicketTypes(ctx context.Context, eventID string) ([]*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.list")
	defer span.End()

	if cached := s.readListing(ctx, eventID); cached != nil {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached, nil
	}

	if _, err := s.store.Events().GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	types, err := s.store.TicketTypes().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	out := dto.TicketTypesFromDomain(types)
	s.writeListing(ctx, eventID, out)
	return out, nil
}

// DeleteTicketType removes a tier no bookings reference
func (s *ticketTypeService) DeleteTicketType(ctx context.Context, organizerID, eventID, ticketTypeID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.delete")
	defer span.End()

	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.IsOwnedBy(organizerID) {
		return domain.ErrEventNotFound
	}

	tt, err := s.store.TicketTypes().GetByID(ctx, ticketTypeID)
	if err != nil {
		return err
	}
	if !tt.BelongsToEvent(eventID) {
		return domain.ErrTicketTypeNotFound
	}

	if err := s.store.TicketTypes().Delete(ctx, ticketTypeID); err != nil {
		span.RecordError(err)
		return err
	}

	s.invalidateListing(ctx, eventID)
	return nil
}

func listingKey(eventID string) string {
	return fmt.Sprintf("ticket_types:event:%s", eventID)
}

func (s *ticketTypeService) readListing(ctx context.Context, eventID string) []*dto.TicketTypeResponse {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, listingKey(eventID)).Bytes()
	if err != nil {
		return nil
	}
	var out []*dto.TicketTypeResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil
	}
	return out
}

func (s *ticketTypeService) writeListing(ctx context.Context, eventID string, listing []*dto.TicketTypeResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(listing)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, listingKey(eventID), payload, s.cacheTTL).Err(); err != nil {
		logger.Get().Warn("failed to cache ticket type listing",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}
}

func (s *ticketTypeService) invalidateListing(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, listingKey(eventID)).Err(); err != nil {
		logger.Get().Warn("failed to invalidate ticket type listing",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}
}
