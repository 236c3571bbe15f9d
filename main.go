package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eventease/eventease/internal/di"
	"github.com/eventease/eventease/internal/metrics"
	"github.com/eventease/eventease/internal/repository"
	"github.com/eventease/eventease/internal/service"
	"github.com/eventease/eventease/migrations"
	"github.com/eventease/eventease/pkg/config"
	"github.com/eventease/eventease/pkg/database"
	"github.com/eventease/eventease/pkg/logger"
	"github.com/eventease/eventease/pkg/middleware"
	pkgredis "github.com/eventease/eventease/pkg/redis"
	"github.com/eventease/eventease/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting EventEase booking service...")

	ctx := context.Background()

	// Tracing and metrics
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Fatal(fmt.Sprintf("Telemetry initialization failed: %v", err))
	}
	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics initialization failed: %v", err))
	}

	// PostgreSQL
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", cfg.Database.MinConns, cfg.Database.MaxConns))

	if err := migrations.Apply(ctx, db.Pool()); err != nil {
		appLog.Fatal(fmt.Sprintf("Migrations failed: %v", err))
	}
	appLog.Info("Migrations applied")

	// Redis is optional: listings are served from the database and
	// idempotency degrades to pass-through when it is absent.
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, continuing without cache: %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info("Redis connected")
	}

	// Kafka event publisher
	var eventPublisher service.EventPublisher
	eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		eventPublisher = service.NewNoOpEventPublisher()
	} else {
		appLog.Info("Kafka event publisher connected")
	}
	defer eventPublisher.Close()

	store := repository.NewPostgresStore(db.Pool())

	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		Store:          store,
		EventPublisher: eventPublisher,
		ServiceConfig: &service.BookingServiceConfig{
			DefaultCurrency:   cfg.Booking.DefaultCurrency,
			ReferenceAttempts: cfg.Booking.ReferenceAttempts,
		},
		TicketConfig: &service.TicketTypeServiceConfig{
			DefaultCurrency: cfg.Booking.DefaultCurrency,
		},
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware())

	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	auth := middleware.AuthMiddleware(&middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	})

	var idempotency gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if redisClient != nil {
		idempotency = middleware.IdempotencyMiddleware(middleware.DefaultIdempotencyConfig(redisClient.Client()))
	}

	v1 := router.Group("/api/v1")
	{
		events := v1.Group("/events/:eventId")
		{
			events.GET("/ticket-types", container.TicketTypeHandler.ListTicketTypes)

			organizer := events.Group("")
			organizer.Use(auth, middleware.RequireRole(middleware.RoleOrganizer, middleware.RoleAdmin))
			{
				organizer.POST("/ticket-types", container.TicketTypeHandler.CreateTicketType)
				organizer.DELETE("/ticket-types/:id", container.TicketTypeHandler.DeleteTicketType)
				organizer.POST("/bookings/:bookingId/check-in", container.BookingHandler.CheckIn)
			}

			attendee := events.Group("")
			attendee.Use(auth)
			{
				attendee.POST("/bookings", idempotency, container.BookingHandler.CreateBooking)
				attendee.POST("/orders", idempotency, container.OrderHandler.CreateOrder)
			}
		}

		bookings := v1.Group("/bookings")
		bookings.Use(auth)
		{
			bookings.GET("", container.BookingHandler.ListBookings)
			bookings.GET("/:id", container.BookingHandler.GetBooking)
			bookings.DELETE("/:id", idempotency, container.BookingHandler.CancelBooking)
		}

		orders := v1.Group("/orders")
		orders.Use(auth)
		{
			orders.GET("/:id", container.OrderHandler.GetOrder)
			orders.DELETE("/:id", idempotency, container.OrderHandler.CancelOrder)
		}

		v1.GET("/ticket-types/:id", container.TicketTypeHandler.GetTicketType)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info(fmt.Sprintf("EventEase booking service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry shutdown failed: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
