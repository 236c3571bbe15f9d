package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventease/eventease/internal/domain"
	"github.com/eventease/eventease/pkg/kafka"
	"github.com/eventease/eventease/pkg/logger"
)

// EventPublisher defines the interface for publishing booking events
type EventPublisher interface {
	// PublishBookingCreated publishes a booking created event
	PublishBookingCreated(ctx context.Context, booking *domain.Booking) error

	// PublishBookingCancelled publishes a booking cancelled event
	PublishBookingCancelled(ctx context.Context, booking *domain.Booking) error

	// PublishBookingCheckedIn publishes a booking checked-in event
	PublishBookingCheckedIn(ctx context.Context, booking *domain.Booking) error

	// PublishOrderCreated publishes an order created event
	PublishOrderCreated(ctx context.Context, order *domain.Order) error

	// PublishOrderCancelled publishes an order cancelled event
	PublishOrderCancelled(ctx context.Context, order *domain.Order) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "booking-events"
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "eventease-booking"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "eventease-booking-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// bookingEvent is the envelope for booking lifecycle messages
type bookingEvent struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	BookingID    string    `json:"booking_id"`
	Reference    string    `json:"reference"`
	UserID       string    `json:"user_id"`
	EventRefID   string    `json:"event_ref_id"`
	TicketTypeID string    `json:"ticket_type_id,omitempty"`
	OrderID      string    `json:"order_id,omitempty"`
	Quantity     int       `json:"quantity"`
	TotalPrice   float64   `json:"total_price"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
}

// PublishBookingCreated publishes a booking created event
func (p *KafkaEventPublisher) PublishBookingCreated(ctx context.Context, booking *domain.Booking) error {
	return p.publishBooking(ctx, "booking.created", booking)
}

// PublishBookingCancelled publishes a booking cancelled event
func (p *KafkaEventPublisher) PublishBookingCancelled(ctx context.Context, booking *domain.Booking) error {
	return p.publishBooking(ctx, "booking.cancelled", booking)
}

// PublishBookingCheckedIn publishes a booking checked-in event
func (p *KafkaEventPublisher) PublishBookingCheckedIn(ctx context.Context, booking *domain.Booking) error {
	return p.publishBooking(ctx, "booking.checked_in", booking)
}

// PublishOrderCreated publishes an order created event
func (p *KafkaEventPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publishOrder(ctx, "order.created", order)
}

// PublishOrderCancelled publishes an order cancelled event
func (p *KafkaEventPublisher) PublishOrderCancelled(ctx context.Context, order *domain.Order) error {
	return p.publishOrder(ctx, "order.cancelled", order)
}

func (p *KafkaEventPublisher) publishBooking(ctx context.Context, eventType string, booking *domain.Booking) error {
	event := bookingEvent{
		EventID:      uuid.New().String(),
		EventType:    eventType,
		BookingID:    booking.ID,
		Reference:    booking.Reference,
		UserID:       booking.UserID,
		EventRefID:   booking.EventID,
		TicketTypeID: booking.TicketTypeID,
		Quantity:     booking.Quantity,
		TotalPrice:   booking.TotalPrice,
		Currency:     booking.Currency,
		Status:       string(booking.Status),
		Timestamp:    time.Now().UTC(),
		Source:       p.serviceName,
	}
	return p.publish(ctx, eventType, booking.ID, event)
}

func (p *KafkaEventPublisher) publishOrder(ctx context.Context, eventType string, order *domain.Order) error {
	event := bookingEvent{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		OrderID:    order.ID,
		Reference:  order.Reference,
		UserID:     order.UserID,
		EventRefID: order.EventID,
		Quantity:   order.TotalQuantity(),
		TotalPrice: order.TotalPrice,
		Currency:   order.Currency,
		Status:     string(order.Status),
		Timestamp:  time.Now().UTC(),
		Source:     p.serviceName,
	}
	return p.publish(ctx, eventType, order.ID, event)
}

func (p *KafkaEventPublisher) publish(ctx context.Context, eventType, key string, event bookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type": eventType,
		"source":     p.serviceName,
	}

	// Async with logged failures: publishing must not block or fail
	// the booking transaction that already committed.
	p.producer.ProduceAsync(ctx, p.topic, []byte(key), payload, headers, func(err error) {
		logger.Get().Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	})
	return nil
}

// Close flushes and closes the underlying producer
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// NoOpEventPublisher is a no-op implementation for environments
// without Kafka (local development, tests).
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

func (p *NoOpEventPublisher) PublishBookingCreated(ctx context.Context, booking *domain.Booking) error {
	return nil
}

func (p *NoOpEventPublisher) PublishBookingCancelled(ctx context.Context, booking *domain.Booking) error {
	return nil
}

func (p *NoOpEventPublisher) PublishBookingCheckedIn(ctx context.Context, booking *domain.Booking) error {
	return nil
}

func (p *NoOpEventPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return nil
}

func (p *NoOpEventPublisher) PublishOrderCancelled(ctx context.Context, order *domain.Order) error {
	return nil
}

func (p *NoOpEventPublisher) Close() error {
	return nil
}
