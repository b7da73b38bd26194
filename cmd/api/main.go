package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farmacliniq/fieldcrm/backend/internal/adapters/cache"
	"github.com/farmacliniq/fieldcrm/backend/internal/adapters/database"
	"github.com/farmacliniq/fieldcrm/backend/internal/adapters/events"
	"github.com/farmacliniq/fieldcrm/backend/internal/adapters/providers/calendar"
	"github.com/farmacliniq/fieldcrm/backend/internal/adapters/search"
	"github.com/farmacliniq/fieldcrm/backend/internal/api/handlers"
	"github.com/farmacliniq/fieldcrm/backend/internal/api/routes"
	"github.com/farmacliniq/fieldcrm/backend/internal/application/services"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/providers"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/repositories"
	"github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/clients/postgres"
	"github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/clients/redis"
	"github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/clients/typesense"
	"github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/observability"
	"github.com/farmacliniq/fieldcrm/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	if err := database.EnsureSchema(ctx, pgClient); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure database schema")
	}

	// Initialize Redis client. The local cache is the offline source of
	// truth, so Redis is not optional here.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Redis client")
	}
	defer redisClient.Close()

	// Initialize Typesense client; search degrades gracefully without it
	var searchRepo repositories.DoctorSearchRepository
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Typesense client, search disabled")
	} else {
		searchAdapter := search.NewTypesenseAdapter(typesenseClient)
		if err := searchAdapter.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to ensure search schema, search disabled")
		} else {
			searchRepo = searchAdapter
		}
	}

	// Initialize adapters
	doctorRepo := database.NewDoctorAdapter(pgClient)
	accountRepo := database.NewAccountAdapter(pgClient)
	protocolRepo := database.NewProtocolAdapter(pgClient)
	doctorCache := cache.NewRedisDoctorCache(redisClient)
	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	var calendarProvider providers.CalendarProvider = calendar.NewCalendarProvider(&cfg.Calendar)

	// Initialize services
	syncService := services.NewSyncService(doctorRepo, accountRepo, doctorCache, searchRepo, eventBus, metrics)
	rosterService := services.NewRosterService(doctorCache, doctorRepo, searchRepo)
	followUpService := services.NewFollowUpService()
	statsService := services.NewStatsService()
	protocolService := services.NewProtocolService(protocolRepo)
	visitService := services.NewVisitService(rosterService, calendarProvider, cfg.Calendar.TimeZone)
	importService := services.NewImportService(doctorCache)

	// Initialize handlers
	doctorHandler := handlers.NewDoctorHandler(rosterService, followUpService, statsService, searchRepo)
	syncHandler := handlers.NewSyncHandler(syncService)
	protocolHandler := handlers.NewProtocolHandler(protocolService)
	visitHandler := handlers.NewVisitHandler(visitService)
	importHandler := handlers.NewImportHandler(importService)

	router := routes.NewRouter(
		doctorHandler,
		syncHandler,
		protocolHandler,
		visitHandler,
		importHandler,
		cfg.Auth.JWTSecret,
		metrics,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
