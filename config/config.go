package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Cache configuration
	CacheCapacity int
	CacheTTL      time.Duration

	// Pending-action configuration
	PendingTimeout time.Duration

	// Actor names allowed to change their own score
	SelfScoreAllowlist []string

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Cache defaults
		CacheCapacity: 1000,
		CacheTTL:      24 * time.Hour,

		// Pending-action default
		PendingTimeout: 10 * time.Minute,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if capacity := os.Getenv("CACHE_CAPACITY"); capacity != "" {
		if parsed, err := strconv.Atoi(capacity); err == nil && parsed > 0 {
			config.CacheCapacity = parsed
		}
	}
	if hours := os.Getenv("CACHE_TTL_HOURS"); hours != "" {
		if parsed, err := strconv.Atoi(hours); err == nil && parsed > 0 {
			config.CacheTTL = time.Duration(parsed) * time.Hour
		}
	}
	if minutes := os.Getenv("PENDING_TIMEOUT_MINUTES"); minutes != "" {
		if parsed, err := strconv.Atoi(minutes); err == nil && parsed > 0 {
			config.PendingTimeout = time.Duration(parsed) * time.Minute
		}
	}

	// Parse the self-score allow-list
	if allowlist := os.Getenv("SELF_SCORE_ALLOWLIST"); allowlist != "" {
		for _, name := range strings.Split(allowlist, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				config.SelfScoreAllowlist = append(config.SelfScoreAllowlist, name)
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
