package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"karma/bot"
	"karma/cache"
	"karma/config"
	"karma/database"
	"karma/events"
	"karma/repository"
	"karma/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting karma bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// One shared lookup cache for the whole process
	lookupCache := cache.New[string, any](cfg.CacheCapacity, cfg.CacheTTL)

	// The session exists before the services so the permission gate can
	// check administrator status against it
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}
	session, err := bot.NewSession(botConfig)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Initialize services
	log.Println("Initializing services...")
	accountService := service.NewAccountService(uowFactory, lookupCache)
	chatService := service.NewChatService(uowFactory, lookupCache)
	ledgerService := service.NewLedgerService(uowFactory)
	resolver := service.NewMentionResolver(uowFactory, lookupCache)
	gate := service.NewPermissionGate(uowFactory, lookupCache, bot.NewAdminChecker(session))
	engine := service.NewEngineService(resolver, gate, ledgerService, accountService, cfg.SelfScoreAllowlist)
	pending := service.NewPendingActions(accountService, gate, ledgerService, cfg.SelfScoreAllowlist, cfg.PendingTimeout)
	log.Println("Services initialized successfully")

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	discordBot, err := bot.New(botConfig, session, accountService, chatService, ledgerService, engine, pending, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
