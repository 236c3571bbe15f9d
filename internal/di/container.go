package di

import (
	"github.com/eventease/eventease/internal/handler"
	"github.com/eventease/eventease/internal/repository"
	"github.com/eventease/eventease/internal/service"
	"github.com/eventease/eventease/pkg/database"
	"github.com/eventease/eventease/pkg/redis"
)

// Container holds all dependencies for the booking service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Storage
	Store repository.Store

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	BookingService    service.BookingService
	OrderService      service.OrderService
	TicketTypeService service.TicketTypeService

	// Handlers
	HealthHandler     *handler.HealthHandler
	BookingHandler    *handler.BookingHandler
	OrderHandler      *handler.OrderHandler
	TicketTypeHandler *handler.TicketTypeHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	Store          repository.Store
	EventPublisher service.EventPublisher
	ServiceConfig  *service.BookingServiceConfig
	TicketConfig   *service.TicketTypeServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		Store:          cfg.Store,
		EventPublisher: cfg.EventPublisher,
	}

	// Initialize services
	c.BookingService = service.NewBookingService(c.Store, c.EventPublisher, cfg.ServiceConfig)
	c.OrderService = service.NewOrderService(c.Store, c.EventPublisher, cfg.ServiceConfig)

	c.TicketTypeService = newTicketTypeService(c.Store, c.Redis, cfg.TicketConfig)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.OrderHandler = handler.NewOrderHandler(c.OrderService)
	c.TicketTypeHandler = handler.NewTicketTypeHandler(c.TicketTypeService)

	return c
}

func newTicketTypeService(store repository.Store, cache *redis.Client, cfg *service.TicketTypeServiceConfig) service.TicketTypeService {
	if cache != nil {
		return service.NewTicketTypeService(store, cache.Client(), cfg)
	}
	return service.NewTicketTypeService(store, nil, cfg)
}
