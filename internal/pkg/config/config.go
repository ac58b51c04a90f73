// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Server содержит конфигурацию сервера
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Viewer содержит настройки отображения транскрипта
type Viewer struct {
	CurrentUserName string `yaml:"current_user_name"`
	TranscriptPath  string `yaml:"transcript_path"` // путь к файлу или http(s) URL
	MediaBasePath   string `yaml:"media_base_path"` // префикс URL вложений
	MediaDir        string `yaml:"media_dir"`       // каталог, который сервер отдает по MediaBasePath
	Timezone        string `yaml:"timezone"`        // пусто - локальный часовой пояс
	Title           string `yaml:"title"`
}

// Cache содержит конфигурацию кэша разобранных транскриптов
type Cache struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Sentry содержит конфигурацию отправки ошибок. Пустой DSN отключает отправку.
type Sentry struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// Config содержит конфигурацию приложения
type Config struct {
	Server  Server  `yaml:"server"`
	Viewer  Viewer  `yaml:"viewer"`
	Cache   Cache   `yaml:"cache"`
	Logging Logging `yaml:"logging"`
	Sentry  Sentry  `yaml:"sentry"`
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем .env, config.yml и
// переменные окружения. Результат не валидируется, это делает вызывающий код.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom делает то же, что LoadConfig, но читает YAML из указанного файла.
func LoadConfigFrom(path string) (*Config, error) {
	// Отсутствие .env - нормальная ситуация
	_ = godotenv.Load()

	cfg := defaultConfig()
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию из env: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: Server{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Viewer: Viewer{
			CurrentUserName: DefaultCurrentUserName,
			TranscriptPath:  DefaultTranscriptPath,
			MediaBasePath:   DefaultMediaBasePath,
			MediaDir:        DefaultMediaDir,
			Title:           DefaultTitle,
		},
		Cache: Cache{
			TTL:             DefaultCacheTTL,
			CleanupInterval: DefaultCleanupInterval,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Sentry: Sentry{
			Environment: DefaultSentryEnvironment,
		},
	}
}

// loadFromYAML накладывает значения из YAML-файла поверх cfg. Отсутствующий файл не ошибка.
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}
	return nil
}

// applyEnv переопределяет значения переменными окружения
func applyEnv(cfg *Config) error {
	cfg.Viewer.CurrentUserName = getEnv("CHAT_CURRENT_USER", cfg.Viewer.CurrentUserName)
	cfg.Viewer.TranscriptPath = getEnv("CHAT_TRANSCRIPT_PATH", cfg.Viewer.TranscriptPath)
	cfg.Viewer.MediaBasePath = getEnv("CHAT_MEDIA_BASE_PATH", cfg.Viewer.MediaBasePath)
	cfg.Viewer.MediaDir = getEnv("CHAT_MEDIA_DIR", cfg.Viewer.MediaDir)
	cfg.Viewer.Timezone = getEnv("CHAT_TIMEZONE", cfg.Viewer.Timezone)
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)
	cfg.Sentry.DSN = getEnv("SENTRY_DSN", cfg.Sentry.DSN)

	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("недопустимый SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	return nil
}

// Address возвращает адрес сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Location возвращает часовой пояс для дат и времени в транскрипте.
func (c *Config) Location() (*time.Location, error) {
	if c.Viewer.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Viewer.Timezone)
	if err != nil {
		return nil, fmt.Errorf("недопустимый viewer.timezone %q: %w", c.Viewer.Timezone, err)
	}
	return loc, nil
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть действительным номером порта (1-65535)")
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("server.read_timeout, write_timeout и idle_timeout должны быть положительными")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout должно быть положительным")
	}

	if strings.TrimSpace(c.Viewer.TranscriptPath) == "" {
		return fmt.Errorf("viewer.transcript_path не может быть пустым")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl должно быть положительным")
	}

	if c.Cache.CleanupInterval <= 0 {
		return fmt.Errorf("cache.cleanup_interval должно быть положительным")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format должен быть одним из: text, json")
	}

	return nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
