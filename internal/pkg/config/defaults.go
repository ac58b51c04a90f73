package config

import "time"

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	// Viewer defaults
	DefaultCurrentUserName = "You"
	DefaultTranscriptPath  = "chat.json"
	DefaultMediaBasePath   = "media/"
	DefaultMediaDir        = "media"
	DefaultTitle           = "WhatsApp Chat"

	// Cache defaults
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCleanupInterval = 1 * time.Minute

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// Sentry defaults
	DefaultSentryEnvironment = "production"
)

// DefaultConfigFile - путь к файлу конфигурации, который читает LoadConfig.
const DefaultConfigFile = "config.yml"
