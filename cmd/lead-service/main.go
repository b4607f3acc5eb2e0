package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	leadevents "github.com/leadflow/leadflow-backend/internal/leads/events"
	leadhandler "github.com/leadflow/leadflow-backend/internal/leads/handler"
	"github.com/leadflow/leadflow-backend/internal/leads/repository"
	leadservice "github.com/leadflow/leadflow-backend/internal/leads/service"
	"github.com/leadflow/leadflow-backend/internal/ownership/analyzer"
	"github.com/leadflow/leadflow-backend/internal/ownership/classifier"
	"github.com/leadflow/leadflow-backend/internal/ownership/consumers"
	ownershipevents "github.com/leadflow/leadflow-backend/internal/ownership/events"
	ownershiphandler "github.com/leadflow/leadflow-backend/internal/ownership/handler"
	"github.com/leadflow/leadflow-backend/internal/ownership/registry"
	ownershipservice "github.com/leadflow/leadflow-backend/internal/ownership/service"
	"github.com/leadflow/leadflow-backend/pkg/actor"
	"github.com/leadflow/leadflow-backend/pkg/config"
	"github.com/leadflow/leadflow-backend/pkg/database"
	"github.com/leadflow/leadflow-backend/pkg/httputil"
	"github.com/leadflow/leadflow-backend/pkg/i18n"
	"github.com/leadflow/leadflow-backend/pkg/logger"
	"github.com/leadflow/leadflow-backend/pkg/messaging"
)

const serviceName = "lead-service"

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting Lead Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	leadRepo := repository.NewLeadRepository(db)
	if err := leadRepo.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure leads schema")
	}

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	if err := rmq.DeclareDeadLetterQueue(serviceName); err != nil {
		log.Fatal().Err(err).Msg("failed to declare dead letter queue")
	}

	// Initialize event publishers
	leadPublisher, err := leadevents.NewLeadEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create lead event publisher")
	}
	ownershipPublisher, err := ownershipevents.NewOwnershipEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create ownership event publisher")
	}

	// Initialize services
	leadService := leadservice.NewLeadService(leadRepo, leadPublisher, log)
	dedupService := leadservice.NewDedupService(leadRepo, leadPublisher, cfg.Dedup, log)

	ownerAnalyzer := analyzer.New(classifier.New(cfg.Classifier))
	registryClient := registry.NewClient(cfg.Registry, log)
	ownershipService := ownershipservice.NewService(ownerAnalyzer, registryClient, leadRepo, ownershipPublisher, cfg.Ownership, log)

	// Initialize handlers
	leadHandler := leadhandler.NewLeadHandler(leadService, log)
	dedupHandler := leadhandler.NewDedupHandler(dedupService, log)
	ownershipHandler := ownershiphandler.NewOwnershipHandler(ownershipService, log)

	// Start registry event consumer
	registryConsumer, err := consumers.NewRegistryConsumer(rmq, ownershipService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create registry event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := registryConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start registry event consumer")
	}

	// Create router
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "Accept-Language", actor.Header},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(i18n.Middleware)
	r.Use(actor.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  serviceName,
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	leadhandler.Routes(r, leadHandler, dedupHandler)
	ownershiphandler.Routes(r, ownershipHandler)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
