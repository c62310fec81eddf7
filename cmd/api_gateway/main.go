package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/garage-sale-marketplace/internal/api_gateway"
	"github.com/garage-sale-marketplace/internal/api_gateway/service"
	"github.com/garage-sale-marketplace/internal/config"
	"github.com/garage-sale-marketplace/internal/data/mongo"
	"github.com/garage-sale-marketplace/internal/data/postgres"
	"github.com/garage-sale-marketplace/internal/logger"
	"github.com/garage-sale-marketplace/internal/platform/email"
	"github.com/garage-sale-marketplace/internal/platform/geocoding"
	"github.com/garage-sale-marketplace/internal/platform/identity"
	"github.com/garage-sale-marketplace/internal/platform/messaging/producers"
	"github.com/garage-sale-marketplace/internal/platform/payments"
	"github.com/garage-sale-marketplace/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting API Gateway",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	if err := mongo.EnsureIndexes(appCtx, log, mongoDB.Database(), cfg.MongoDB.GeocodeCacheTTL); err != nil {
		log.Error("Failed to ensure MongoDB indexes", "error", err)
		os.Exit(1)
	}

	// sale.recorded is published directly, listing.paid goes through the outbox
	eventProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka event producer", "error", err)
		os.Exit(1)
	}

	// External providers
	verifier, err := identity.NewFirebaseVerifier(appCtx, log, &cfg.Firebase)
	if err != nil {
		log.Error("Failed to initialize identity verifier", "error", err)
		os.Exit(1)
	}
	gateway := payments.NewStripeGateway(log, &cfg.Stripe)
	geocoder := geocoding.NewNominatimClient(log, &cfg.Geocoding)
	emailClient := email.NewSendGridClient(log, &cfg.Email)
	mailer := email.NewMailer(emailClient)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(log, postgresDB)
	listingRepo := postgres.NewListingRepository(log, postgresDB)
	savedRepo := postgres.NewSavedListingRepository(log, postgresDB)
	paymentRepo := postgres.NewPaymentRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	saleRepo := mongo.NewSaleRepository(log, mongoDB.Database())
	statsRepo := mongo.NewStatsRepository(log, mongoDB.Database())
	geocodeCache := mongo.NewGeocodeCacheRepository(log, mongoDB.Database(), cfg.MongoDB.GeocodeCacheTTL)

	// Initialize services
	geoService := service.NewGeoService(log, cfg.Geocoding, geocodeCache, geocoder)
	services := api_gateway.Services{
		Sales:    service.NewSaleService(log, cfg.Sales, cfg.Stats, saleRepo, statsRepo, userRepo, gateway, eventProducer),
		Checkout: service.NewCheckoutService(log, cfg.Checkout, postgresDB, listingRepo, paymentRepo, outboxRepo, gateway),
		Users:    service.NewUserService(log, userRepo, verifier),
		Geo:      geoService,
		Listings: service.NewListingService(log, listingRepo, savedRepo, userRepo, geoService, mailer),
	}

	server := api_gateway.NewServer(log, cfg, verifier, services)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Drain in-flight requests before closing their dependencies
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if closeErr := emailClient.Close(); closeErr != nil {
		log.Error("Error closing email client", "error", closeErr)
	}
	if closeErr := geocoder.Close(); closeErr != nil {
		log.Error("Error closing geocoding client", "error", closeErr)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
