package main

import (
	"context"

	"surfaura/internal/bookings/events"
	"surfaura/internal/bookings/handler"
	"surfaura/internal/bookings/repository"
	"surfaura/internal/bookings/service"
	"surfaura/internal/bookings/validator"
	"surfaura/internal/catalog"
	"surfaura/internal/diagnostics"
	"surfaura/pkg/app"
	"surfaura/pkg/config"
	"surfaura/pkg/kafka"
	kafka_middleware "surfaura/pkg/kafka/middleware"
	"surfaura/pkg/metrics"
)

const ServiceName = "surfaura-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetStore(context.Background())

	m := metrics.New()
	serverApp := app.NewApplication(cfg, m)

	cfg.Log.Info("Starting SurfAura API")
	bookingService := initBookingService(cfg, m, serverApp)

	cat, err := catalog.Default()
	if err != nil {
		cfg.Log.Fatal("Failed to load catalog", "error", err)
	}

	serverApp.SetApp(
		diagnostics.NewHandler(cfg.Store, nil, cfg.Log),
		catalog.NewHandler(cat, cfg.Log),
		handler.NewBookingHandler(bookingService, cfg.Log),
	)
	serverApp.Run()
}

func initBookingService(cfg *config.Config, m *metrics.Metrics, serverApp *app.Application) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewBookingRepository(cfg.Store)

	var publisher service.EventPublisher
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
		serverApp.OnShutdown("kafka producer", func(context.Context) error {
			return producer.Close()
		})

		publisher = events.NewPublisher(producer, cfg.Kafka.PublishTimeout)
		cfg.Log.Info("Booking events enabled", "topic", producer.Topic())
	} else {
		cfg.Log.Info("Booking events disabled; KAFKA_BROKERS is empty")
	}

	bookingService := service.NewBookingService(
		bookingRepo,
		bookingValidator,
		publisher,
		m,
		cfg.Log,
	)

	cfg.Log.Info("Booking service initialized", "store_driver", cfg.StoreDriver, "database", cfg.DatabaseName)
	return bookingService
}
