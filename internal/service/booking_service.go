package service

import (
	"context"
	"errors"
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

// BookingService defines the interface for booking business logic
type BookingService interface {
	// CreateBooking validates and commits a booking atomically
	CreateBooking(ctx context.Context, userID, eventID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)

	// GetBooking retrieves a booking owned by the user
	GetBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error)

	// GetBookingByReference retrieves a booking by its reference code
	GetBookingByReference(ctx context.Context, reference, userID string) (*dto.BookingResponse, error)

	// ListUserBookings retrieves the user's bookings, newest first
	ListUserBookings(ctx context.Context, userID string, page, pageSize int) ([]*dto.BookingResponse, error)

	// CancelBooking cancels a confirmed booking and returns its units
	// to inventory
	CancelBooking(ctx context.Context, bookingID, userID string) (*dto.CancelBookingResponse, error)

	// CheckInBooking redeems a confirmed booking at the event
	CheckInBooking(ctx context.Context, eventID, bookingID string) (*dto.CheckInResponse, error)
}

// bookingService implements BookingService
type bookingService struct {
	store             repository.Store
	eventPublisher    EventPublisher
	defaultCurrency   string
	referenceAttempts int
	referencePrefix   string
}

// BookingServiceConfig contains configuration for booking service
type BookingServiceConfig struct {
	DefaultCurrency   string
	ReferenceAttempts int
	ReferencePrefix   string
}

// NewBookingService creates a new booking service
func NewBookingService(store repository.Store, eventPublisher EventPublisher, cfg *BookingServiceConfig) BookingService {
	currency := "USD"
	attempts := 3
	prefix := "EE"
	if cfg != nil {
		if cfg.DefaultCurrency != "" {
			currency = cfg.DefaultCurrency
		}
		if cfg.ReferenceAttempts > 0 {
			attempts = cfg.ReferenceAttempts
		}
		if cfg.ReferencePrefix != "" {
			prefix = cfg.ReferencePrefix
		}
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		store:             store,
		eventPublisher:    eventPublisher,
		defaultCurrency:   currency,
		referenceAttempts: attempts,
		referencePrefix:   prefix,
	}
}

// CreateBooking validates the request against the event and ticket
// type, then commits the booking and the inventory increment in one
// storage transaction. Availability and the per-user limit are checked
// on the locked ticket type row, so two concurrent requests for the
// last units cannot both succeed.
func (s *bookingService) CreateBooking(ctx context.Context, userID, eventID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	start := time.Now()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	if req == nil || req.Quantity <= 0 {
		span.SetStatus(codes.Error, "invalid quantity")
		return nil, domain.ErrInvalidQuantity
	}
	if req.TicketTypeID == "" {
		span.SetStatus(codes.Error, "invalid ticket_type_id")
		return nil, domain.ErrTicketTypeNotFound
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", eventID),
		attribute.String("ticket_type_id", req.TicketTypeID),
		attribute.Int("quantity", req.Quantity),
	)

	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		metrics.RecordBookingFailed(ctx, eventID, "event_not_found")
		return nil, err
	}
	if !event.IsApproved() {
		metrics.RecordBookingFailed(ctx, eventID, "event_not_approved")
		return nil, domain.ErrEventNotApproved
	}

	var booking *domain.Booking
	err = s.store.WithTx(ctx, func(txCtx context.Context) error {
		// Lock the ticket type row so the availability and per-user
		// limit checks and the sold increment see one consistent state.
		tt, err := s.store.TicketTypes().GetByIDForUpdate(txCtx, req.TicketTypeID)
		if err != nil {
			return err
		}
		if !tt.BelongsToEvent(eventID) {
			return domain.ErrTicketTypeNotFound
		}
		if !tt.HasCapacity(req.Quantity) {
			return domain.ErrInsufficientInventory
		}
		if tt.MaxPerUser > 0 {
			held, err := s.store.Bookings().CountUserQuantity(txCtx, userID, tt.ID)
			if err != nil {
				return err
			}
			if held+req.Quantity > tt.MaxPerUser {
				return domain.ErrUserLimitExceeded
			}
		}

		if err := s.store.TicketTypes().Reserve(txCtx, tt.ID, req.Quantity); err != nil {
			return err
		}

		now := time.Now()
		booking = &domain.Booking{
			ID:           uuid.New().String(),
			UserID:       userID,
			EventID:      eventID,
			TicketTypeID: tt.ID,
			Quantity:     req.Quantity,
			TotalPrice:   tt.PriceFor(req.Quantity),
			Currency:     s.currencyFor(tt),
			Status:       domain.BookingStatusConfirmed,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return s.createWithReference(txCtx, booking)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordBookingFailed(ctx, eventID, failureReason(err))
		return nil, err
	}

	_ = s.eventPublisher.PublishBookingCreated(ctx, booking)
	metrics.RecordBookingCreated(ctx, eventID, booking.TicketTypeID, booking.Quantity)
	metrics.RecordBookingDuration(ctx, time.Since(start).Seconds())

	return dto.BookingFromDomain(booking), nil
}

// createWithReference inserts the booking, regenerating the reference
// on collision. Collisions are vanishingly rare at this code length,
// so a handful of attempts is plenty; exhausting them signals a fault,
// not contention.
func (s *bookingService) createWithReference(ctx context.Context, booking *domain.Booking) error {
	for attempt := 0; attempt < s.referenceAttempts; attempt++ {
		ref, err := generateReference(s.referencePrefix)
		if err != nil {
			return domain.ErrReferenceGenerationFailed
		}
		booking.Reference = ref

		err = s.store.Bookings().Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrReferenceTaken) {
			return err
		}
	}
	return domain.ErrReferenceGenerationFailed
}

func (s *bookingService) currencyFor(tt *domain.TicketType) string {
	if tt.Currency != "" {
		return tt.Currency
	}
	return s.defaultCurrency
}

// GetBooking retrieves a booking owned by the user. A booking owned by
// someone else is reported as not found so booking IDs cannot be
// probed for existence.
func (s *bookingService) GetBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()

	booking, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.BelongsToUser(userID) {
		return nil, domain.ErrBookingNotFound
	}
	return dto.BookingFromDomain(booking), nil
}

// GetBookingByReference retrieves a booking by its reference code
func (s *bookingService) GetBookingByReference(ctx context.Context, reference, userID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_by_reference")
	defer span.End()

	booking, err := s.store.Bookings().GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !booking.BelongsToUser(userID) {
		return nil, domain.ErrBookingNotFound
	}
	return dto.BookingFromDomain(booking), nil
}

// ListUserBookings retrieves the user's bookings, newest first
func (s *bookingService) ListUserBookings(ctx context.Context, userID string, page, pageSize int) ([]*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	bookings, err := s.store.Bookings().ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return dto.BookingsFromDomain(bookings), nil
}

// CancelBooking cancels a confirmed booking and releases its units
// back to inventory in the same transaction. The conditional status
// update makes cancellation exactly-once: a second caller loses the
// race and gets the precise lifecycle error instead.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID, userID string) (*dto.CancelBookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("user_id", userID),
	)

	booking, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.BelongsToUser(userID) {
		return nil, domain.ErrBookingNotFound
	}

	err = s.store.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.store.Bookings().Cancel(txCtx, bookingID); err != nil {
			return err
		}
		return s.store.TicketTypes().Release(txCtx, booking.TicketTypeID, booking.Quantity)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	cancelled, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	_ = s.eventPublisher.PublishBookingCancelled(ctx, cancelled)
	metrics.RecordBookingCancelled(ctx, cancelled.EventID, cancelled.TicketTypeID, cancelled.Quantity)

	cancelledAt := time.Now()
	if cancelled.CancelledAt != nil {
		cancelledAt = *cancelled.CancelledAt
	}
	return &dto.CancelBookingResponse{
		BookingID:   cancelled.ID,
		Status:      string(cancelled.Status),
		CancelledAt: cancelledAt,
	}, nil
}

// CheckInBooking redeems a confirmed booking at the event. Check-in
// has no inventory effect: a checked-in booking still counts toward
// the sold counter.
func (s *bookingService) CheckInBooking(ctx context.Context, eventID, bookingID string) (*dto.CheckInResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.check_in")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("event_id", eventID),
	)

	booking, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.EventID != eventID {
		return nil, domain.ErrBookingNotFound
	}

	if err := s.store.Bookings().CheckIn(ctx, bookingID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	checkedIn, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	_ = s.eventPublisher.PublishBookingCheckedIn(ctx, checkedIn)
	metrics.RecordBookingCheckedIn(ctx, eventID)

	checkedInAt := time.Now()
	if checkedIn.CheckedInAt != nil {
		checkedInAt = *checkedIn.CheckedInAt
	}
	return &dto.CheckInResponse{
		BookingID:   checkedIn.ID,
		Reference:   checkedIn.Reference,
		Status:      string(checkedIn.Status),
		CheckedInAt: checkedInAt,
	}, nil
}

// failureReason maps a booking failure to a low-cardinality metric label
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientInventory):
		return "insufficient_inventory"
	case errors.Is(err, domain.ErrUserLimitExceeded):
		return "user_limit_exceeded"
	case errors.Is(err, domain.ErrTicketTypeNotFound):
		return "ticket_type_not_found"
	case errors.Is(err, domain.ErrReferenceGenerationFailed):
		return "reference_generation_failed"
	default:
		return "internal"
	}
}
