package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cerealbot/bot"
	"cerealbot/config"
	"cerealbot/content"
	"cerealbot/database"
	"cerealbot/events"
	"cerealbot/health"
	"cerealbot/metrics"
	"cerealbot/repository"
	"cerealbot/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"guildSync":   cfg.GuildSyncMode(),
	}).Info("Starting Cereal Bot...")

	databaseURL := database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)

	// Schema first so the services never see a half-migrated database
	log.Info("Applying database migrations...")
	if err := database.RunMigrationsWithURL(databaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	m := metrics.New()

	services := bot.Services{
		Users:          service.NewUserService(uowFactory),
		Guilds:         service.NewGuildService(uowFactory),
		Warnings:       service.NewWarningService(uowFactory, cfg.WarnLimit),
		CustomCommands: service.NewCustomCommandService(uowFactory),
		Giveaways:      service.NewGiveawayService(uowFactory),
	}
	log.Info("Services initialized successfully")

	contentClient := content.New(
		content.WithHTTPClient(&http.Client{Timeout: seconds(cfg.HTTPTimeoutSeconds)}),
		content.WithMetrics(m),
	)

	botConfig := bot.Config{
		Token:                 cfg.DiscordToken,
		GuildID:               cfg.GuildID,
		OwnerIDs:              cfg.OwnerIDs,
		Prefix:                cfg.Prefix,
		Status:                cfg.Status,
		CommandCooldown:       seconds(cfg.CommandCooldownSeconds),
		ReminderInterval:      seconds(cfg.ReminderIntervalSeconds),
		GiveawaySweepInterval: seconds(cfg.GiveawaySweepSeconds),
		AutoModEnabled:        cfg.AutoModEnabled,
		MuteDuration:          time.Duration(cfg.MuteDurationMinutes) * time.Minute,
	}
	discordBot, err := bot.New(botConfig, services, contentClient, eventBus, m)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.WithField("commands", discordBot.Registry().Len()).Info("Discord bot initialized successfully")

	healthServer := health.NewServer(health.StatusFunc(discordBot.Status), m)
	if err := healthServer.Start(fmt.Sprintf(":%d", cfg.HealthPort)); err != nil {
		return err
	}

	if err := discordBot.Open(ctx); err != nil {
		shutdownHealth(healthServer)
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	shutdownHealth(healthServer)
	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	log.Info("Shutdown completed")
	return nil
}

func shutdownHealth(s *health.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("Health server shutdown failed")
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
