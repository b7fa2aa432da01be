package cmd

import (
	"context"
	"fmt"
	"time"

	"predictor/application"
	"predictor/bot"
	"predictor/config"
	"predictor/database"
	"predictor/events"
	"predictor/infrastructure"
	"predictor/infrastructure/observability"
	"predictor/repository"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	cfg.ConfigureLogging()

	log.WithField("environment", cfg.Environment).Info("Starting predictor bot...")

	// Apply pending migrations
	log.Info("Running database migrations...")
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("Closing database connection...")
		db.Close()
	}()
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Failed to shut down metrics provider")
		}
	}()
	metrics.Attach(eventBus)

	// Initialize event forwarding
	messagePublisher, closeNATS, err := setupMessagePublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeNATS()
	infrastructure.NewNATSEventPublisher(messagePublisher, infrastructure.NewEventSubjectMapper(), metrics).Attach(eventBus)

	// Initialize leaderboard lock
	locker, closeRedis, err := setupLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRedis()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:                cfg.DiscordToken,
		GuildID:              cfg.GuildID,
		PredictionsChannelID: cfg.PredictionsChannelID,
		LeaderboardChannelID: cfg.LeaderboardChannelID,
		XPAward:              cfg.XPAward,
	}
	discordBot, err := bot.New(botConfig, uowFactory, locker, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	defer func() {
		log.Info("Closing Discord session...")
		if err := discordBot.Close(); err != nil {
			log.WithError(err).Error("Error closing Discord bot")
		}
	}()
	log.Info("Discord bot initialized successfully")

	// Start background workers
	stopLeaderboardWorker := discordBot.StartLeaderboardWorker(ctx, cfg.LeaderboardUpdateInterval())
	defer stopLeaderboardWorker()

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	return nil
}

// setupMessagePublisher connects to NATS when configured, otherwise events stay in-process
func setupMessagePublisher(ctx context.Context, cfg *config.Config) (infrastructure.MessagePublisher, func(), error) {
	if cfg.NATSServers == "" {
		log.Info("NATS_SERVERS not set, event forwarding disabled")
		return infrastructure.NewNoopMessagePublisher(), func() {}, nil
	}

	log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := client.EnsureStream(infrastructure.EventStreamName, mapper.StreamSubjects()); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}

	return client, func() {
		log.Info("Closing NATS connection...")
		if err := client.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}, nil
}

// setupLocker uses Redis when configured so refreshes are serialised across replicas
func setupLocker(ctx context.Context, cfg *config.Config) (application.Locker, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, using in-process leaderboard lock")
		return infrastructure.NewLocalLocker(), func() {}, nil
	}

	log.WithField("addr", cfg.RedisAddr).Info("Connecting to Redis...")
	rdb, err := infrastructure.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return infrastructure.NewRedisLocker(rdb), func() {
		log.Info("Closing Redis connection...")
		if err := rdb.Close(); err != nil {
			log.WithError(err).Error("Error closing Redis connection")
		}
	}, nil
}
