package metrics

import (
	"context"
	"sync"

	"github.com/eventease/eventease/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Booking counters
	BookingsCreated   *telemetry.Counter
	BookingsCancelled *telemetry.Counter
	BookingsCheckedIn *telemetry.Counter
	BookingsFailed    *telemetry.Counter

	// Order counters
	OrdersCreated   *telemetry.Counter
	OrdersCancelled *telemetry.Counter

	// Inventory counters
	TicketsReserved *telemetry.Counter
	TicketsReleased *telemetry.Counter

	// Histograms
	BookingDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all booking metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	BookingsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "bookings_created_total",
		Description: "Total number of bookings created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "bookings_cancelled_total",
		Description: "Total number of bookings cancelled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsCheckedIn, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "bookings_checked_in_total",
		Description: "Total number of bookings checked in",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "bookings_failed_total",
		Description: "Total number of failed booking attempts",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OrdersCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "orders_created_total",
		Description: "Total number of orders created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OrdersCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "orders_cancelled_total",
		Description: "Total number of orders cancelled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsReserved, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tickets_reserved_total",
		Description: "Units added to sold counters",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsReleased, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tickets_released_total",
		Description: "Units returned to inventory",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingDuration, err = telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "booking_duration_seconds",
		Description: "Time taken to complete a booking transaction",
		Unit:        "s",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordBookingCreated records a successful booking with its quantity
func RecordBookingCreated(ctx context.Context, eventID, ticketTypeID string, quantity int) {
	if BookingsCreated == nil || TicketsReserved == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("event_id", eventID),
		attribute.String("ticket_type_id", ticketTypeID),
	}
	BookingsCreated.Add(ctx, 1, attrs...)
	TicketsReserved.Add(ctx, int64(quantity), attrs...)
}

// RecordBookingCancelled records a cancellation and the released units
func RecordBookingCancelled(ctx context.Context, eventID, ticketTypeID string, quantity int) {
	if BookingsCancelled == nil || TicketsReleased == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("event_id", eventID),
		attribute.String("ticket_type_id", ticketTypeID),
	}
	BookingsCancelled.Add(ctx, 1, attrs...)
	TicketsReleased.Add(ctx, int64(quantity), attrs...)
}

// RecordBookingCheckedIn records a check-in
func RecordBookingCheckedIn(ctx context.Context, eventID string) {
	if BookingsCheckedIn == nil {
		return
	}
	BookingsCheckedIn.Add(ctx, 1, attribute.String("event_id", eventID))
}

// RecordBookingFailed records a failed booking attempt with its reason
func RecordBookingFailed(ctx context.Context, eventID, reason string) {
	if BookingsFailed == nil {
		return
	}
	BookingsFailed.Add(ctx, 1,
		attribute.String("event_id", eventID),
		attribute.String("reason", reason),
	)
}

// RecordOrderCreated records a successful order with its total quantity
func RecordOrderCreated(ctx context.Context, eventID string, quantity int) {
	if OrdersCreated == nil || TicketsReserved == nil {
		return
	}
	OrdersCreated.Add(ctx, 1, attribute.String("event_id", eventID))
	TicketsReserved.Add(ctx, int64(quantity), attribute.String("event_id", eventID))
}

// RecordOrderCancelled records an order cancellation
func RecordOrderCancelled(ctx context.Context, eventID string, quantity int) {
	if OrdersCancelled == nil || TicketsReleased == nil {
		return
	}
	OrdersCancelled.Add(ctx, 1, attribute.String("event_id", eventID))
	TicketsReleased.Add(ctx, int64(quantity), attribute.String("event_id", eventID))
}

// RecordBookingDuration records how long a booking transaction took
func RecordBookingDuration(ctx context.Context, seconds float64) {
	if BookingDuration == nil {
		return
	}
	BookingDuration.Record(ctx, seconds)
}
