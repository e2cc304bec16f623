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
	"github.com/joho/godotenv"

	"github.com/questbank/questbank-backend/internal/extraction/events"
	"github.com/questbank/questbank-backend/internal/extraction/handler"
	"github.com/questbank/questbank-backend/internal/extraction/layout"
	"github.com/questbank/questbank-backend/internal/extraction/repository"
	"github.com/questbank/questbank-backend/internal/extraction/sanitize"
	"github.com/questbank/questbank-backend/internal/extraction/semantic"
	"github.com/questbank/questbank-backend/internal/extraction/service"
	"github.com/questbank/questbank-backend/pkg/config"
	"github.com/questbank/questbank-backend/pkg/database"
	"github.com/questbank/questbank-backend/pkg/httputil"
	"github.com/questbank/questbank-backend/pkg/logger"
	"github.com/questbank/questbank-backend/pkg/messaging"
)

const serviceName = "extraction-service"

func main() {
	// Local development reads credentials from a .env file
	if config.IsDevelopment() {
		_ = godotenv.Load()
	}

	// Load configuration
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting Extraction Service")

	if !cfg.Layout.Configured() {
		log.Warn().Msg("layout analysis service not configured, extraction requests will be rejected")
	}
	if !cfg.Generative.Configured() {
		log.Warn().Msg("generative extraction service not configured, extraction requests will be rejected")
	}

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ. Run events are best effort, so a missing broker
	// degrades the service instead of stopping it.
	var rmq *messaging.RabbitMQ
	var publisher *messaging.Publisher
	rmq, err = messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to RabbitMQ, run events disabled")
		rmq = nil
	} else {
		defer rmq.Close()
		publisher, err = messaging.NewPublisher(rmq, messaging.ExchangeExtractionEvents, serviceName, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to create event publisher, run events disabled")
			publisher = nil
		}
	}
	notifier := events.NewNotifier(publisher, log)

	// Wire the pipeline
	layoutClient := layout.New(cfg.Layout, log)
	semanticClient := semantic.New(cfg.Generative, log)
	questionRepo := repository.NewQuestionRepository(db)
	sanitizer := sanitize.New(log)
	extractionService := service.New(layoutClient, semanticClient, questionRepo, sanitizer, notifier, log)
	extractionHandler := handler.NewHandler(extractionService, cfg.Extraction, log)

	// Create router
	metrics := httputil.NewMetrics()
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check reports dependency state; missing upstream credentials
	// mark the service degraded rather than down.
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		status := "healthy"
		if !cfg.Layout.Configured() || !cfg.Generative.Configured() {
			status = "degraded"
		}
		health := map[string]interface{}{
			"status":   status,
			"service":  serviceName,
			"database": db.Health(req.Context()),
			"services": map[string]bool{
				"layout":     cfg.Layout.Configured(),
				"generative": cfg.Generative.Configured(),
			},
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/extract", extractionHandler.Extract)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
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

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
