package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	GuildID      string // Target guild for instant command sync; empty means global sync
	OwnerIDs     []string
	Prefix       string
	Status       string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Moderation
	AutoModEnabled      bool
	WarnLimit           int
	MuteDurationMinutes int

	// Runtime tunables
	CommandCooldownSeconds  int
	ReminderIntervalSeconds int
	GiveawaySweepSeconds    int
	HTTPTimeoutSeconds      int

	// Health server
	HealthPort int

	// Logging
	LogLevel  string
	DebugMode bool

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads the configuration without panicking so callers can abort startup cleanly.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance, nil
	}

	cfg, err := load()
	if err != nil {
		return nil, err
	}
	instance = cfg
	return instance, nil
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine; the process environment wins either way.
	_ = godotenv.Load()

	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		GuildID:      getEnvWithDefault("GUILD_ID", os.Getenv("DEV_GUILD_ID")),
		Prefix:       getEnvWithDefault("BOT_PREFIX", "!"),
		Status:       getEnvWithDefault("BOT_STATUS", "/help | Cereal Bot 🥣"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		AutoModEnabled:      os.Getenv("ENABLE_AUTO_MOD") == "true",
		WarnLimit:           getIntWithDefault("WARN_LIMIT", 3),
		MuteDurationMinutes: getIntWithDefault("MUTE_DURATION_MINUTES", 60),

		CommandCooldownSeconds:  getIntWithDefault("COMMAND_COOLDOWN_SECONDS", getIntWithDefault("COMMAND_COOLDOWN_GLOBAL", 3)),
		ReminderIntervalSeconds: getIntWithDefault("REMINDER_INTERVAL_SECONDS", 30),
		GiveawaySweepSeconds:    getIntWithDefault("GIVEAWAY_SWEEP_SECONDS", 60),
		HTTPTimeoutSeconds:      getIntWithDefault("HTTP_TIMEOUT_SECONDS", 10),

		HealthPort: getIntWithDefault("HEALTH_PORT", 8080),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		DebugMode: os.Getenv("DEBUG_MODE") == "true",

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Parse owner IDs
	if ownerIDs := os.Getenv("OWNER_IDS"); ownerIDs != "" {
		for _, id := range strings.Split(ownerIDs, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, err := strconv.ParseUint(id, 10, 64); err == nil {
				config.OwnerIDs = append(config.OwnerIDs, id)
			}
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.WarnLimit < 1 {
			return nil, fmt.Errorf("WARN_LIMIT must be at least 1, got %d", config.WarnLimit)
		}
	}

	return config, nil
}

// GuildSyncMode reports whether commands are registered to a single guild instead of globally
func (c *Config) GuildSyncMode() bool {
	return c.GuildID != ""
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:             "test",
		Prefix:                  "!",
		WarnLimit:               3,
		MuteDurationMinutes:     60,
		CommandCooldownSeconds:  3,
		ReminderIntervalSeconds: 30,
		GiveawaySweepSeconds:    60,
		HTTPTimeoutSeconds:      10,
		HealthPort:              8080,
		LogLevel:                "debug",
	}
}
