package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopify-ingest/internal/application"
	"shopify-ingest/internal/application/webhook_handlers"
	"shopify-ingest/internal/config"
	apiinfra "shopify-ingest/internal/infrastructure/api"
	"shopify-ingest/internal/infrastructure/cache"
	"shopify-ingest/internal/infrastructure/encryption"
	"shopify-ingest/internal/infrastructure/messaging"
	"shopify-ingest/internal/infrastructure/metrics"
	"shopify-ingest/internal/infrastructure/pubsub"
	"shopify-ingest/internal/infrastructure/repository"
	shopifyinfra "shopify-ingest/internal/infrastructure/shopify"
	"shopify-ingest/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := config.LoadDotEnv(); err != nil {
		logger.Warn().Msg(".env file not found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger = newLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterDefault()

	// Stores
	tenantRepo, recordRepo, closeStore := openStore(ctx, cfg.Store, logger)
	defer closeStore()

	var tenantCache ports.TenantCache = cache.NoopTenantCache{}
	if cfg.Redis.URL != "" {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, tenant lookups will hit the store")
		}
		tenantCache = cache.NewRedisTenantCache(rdb, cfg.Redis.TenantTTL)
		logger.Info().Dur("ttl", cfg.Redis.TenantTTL).Msg("Tenant cache enabled")
	}

	encryptionService, err := encryption.NewService(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	tokenManager := shopifyinfra.NewTokenManager(encryptionService, logger)

	// Bus
	bus, err := messaging.Connect(messaging.BusConfig{
		URL:      cfg.NATS.URL,
		Stream:   cfg.NATS.Stream,
		Consumer: cfg.NATS.Consumer,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer bus.Close()

	setupCtx, cancelSetup := context.WithTimeout(ctx, 30*time.Second)
	if err := bus.EnsureStream(setupCtx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up JetStream stream")
	}
	jsConsumer, err := bus.EnsureConsumer(setupCtx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up JetStream consumer")
	}
	cancelSetup()

	// Shopify
	clientPool := shopifyinfra.NewClientPool(shopifyinfra.ClientOptions{
		APIVersion:  cfg.Shopify.APIVersion,
		HTTPTimeout: cfg.Shopify.HTTPTimeout,
		RateLimiter: shopifyinfra.NewRateLimiter(cfg.Shopify.RateLimitRPS, cfg.Shopify.RateLimitBurst),
	}, logger)

	// Application services
	tenantService := application.NewTenantService(tenantRepo, tenantCache, tokenManager, logger)
	ingestionService := application.NewIngestionService(recordRepo, logger)
	intakeService := application.NewWebhookIntakeService(
		tenantService,
		bus,
		shopifyinfra.NewWebhookVerifier(),
		cfg.Shopify.WebhookSecret,
		logger,
	)
	syncService := application.NewSyncService(tenantService, bus, logger)

	dispatcher := application.NewDispatcher(tenantService, clientPool, ingestionService, bus, cfg.Shopify.SyncPageSize, logger)
	dispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(ingestionService, logger))
	dispatcher.RegisterHandler(webhook_handlers.NewProductHandler(ingestionService, logger))
	dispatcher.RegisterHandler(webhook_handlers.NewCustomerHandler(ingestionService, logger))
	dispatcher.RegisterHandler(webhook_handlers.NewCheckoutHandler(ingestionService, logger))

	eventPubSub := pubsub.NewEventPubSub(logger)
	dispatcher.AddEventPublisher(eventPubSub)
	dispatcher.AddEventPublisher(metrics.NewEventRecorder())

	if cfg.Seed.Enabled() {
		if _, err := tenantService.EnsureTenant(ctx, cfg.Seed.ShopDomain, cfg.Seed.AccessToken); err != nil {
			logger.Error().Err(err).Str("shop", cfg.Seed.ShopDomain).Msg("Failed to seed tenant")
		}
	}

	// Worker
	worker := messaging.NewConsumer(jsConsumer, dispatcher, 0, logger)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("Ingestion worker failed")
			stop()
		}
	}()

	// HTTP
	router := apiinfra.NewRouter(apiinfra.Services{
		Intake:  intakeService,
		Sync:    syncService,
		Tenants: tenantService,
		Events:  eventPubSub,

		KnownTopic: dispatcher.Handles,
	}, apiinfra.RouterConfig{
		AdminUsername:       cfg.Admin.Username,
		AdminPassword:       cfg.Admin.Password,
		CORSAllowedOrigins:  cfg.App.CORSAllowedOrigins,
		WebhookMaxBodyBytes: cfg.App.WebhookMaxBodyBytes,
	}, logger)

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("port", cfg.App.Port).Msg("Starting API server")
		logger.Info().Msg("Swagger documentation available at http://localhost:" + cfg.App.Port + "/swagger/index.html")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("API server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown failed")
	}
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		logger.Warn().Msg("Ingestion worker did not stop in time")
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

// openStore returns the tenant and record repositories for the configured driver
func openStore(ctx context.Context, cfg config.StoreConfig, logger zerolog.Logger) (ports.TenantRepository, ports.RecordRepository, func()) {
	if cfg.Driver == "memory" {
		logger.Warn().Msg("Using in-memory store, data is lost on restart")
		repo := repository.NewMemoryRepository()
		return repo, repo, func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping MongoDB")
	}
	db := client.Database(cfg.MongoDatabase)

	tenantRepo := repository.NewMongoTenantRepository(db)
	recordRepo := repository.NewMongoRecordRepository(db)
	if err := tenantRepo.EnsureIndexes(connectCtx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create tenant indexes")
	}
	if err := recordRepo.EnsureIndexes(connectCtx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create record indexes")
	}
	logger.Info().Str("database", cfg.MongoDatabase).Msg("Connected to MongoDB")

	return tenantRepo, recordRepo, func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}
}
