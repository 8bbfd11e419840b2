package config

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the level and formatter for the configured environment
func ConfigureLogging(cfg *Config) {
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, falling back to info", cfg.LogLevel)
		level = log.InfoLevel
	}
	if cfg.DebugMode {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}
