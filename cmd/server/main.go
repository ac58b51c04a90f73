package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"whatsapp-chat-viewer/internal/adapters/exporter"
	"whatsapp-chat-viewer/internal/adapters/parser"
	"whatsapp-chat-viewer/internal/adapters/source"
	"whatsapp-chat-viewer/internal/cache"
	"whatsapp-chat-viewer/internal/core/services"
	applog "whatsapp-chat-viewer/internal/log"
	"whatsapp-chat-viewer/internal/pkg/config"
	"whatsapp-chat-viewer/internal/server"
	"whatsapp-chat-viewer/internal/server/usecase"
)

// fetchTimeout ограничивает загрузку транскрипта по HTTP.
const fetchTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализация логгера
	level, err := applog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v, using info\n", err)
	}
	slog.SetDefault(applog.NewLogger(level, cfg.Logging.Format, os.Stderr))

	// 3. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// 4. Sentry включается только при заданном DSN
	reportError := func(error) {}
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			return fmt.Errorf("failed to init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
		reportError = func(err error) { sentry.CaptureException(err) }
		slog.Info("Sentry reporting enabled", "environment", cfg.Sentry.Environment)
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// 5. Инициализация зависимостей
	cacheStore := cache.NewCacheStore()
	cacheStore.StartCleanupTicker(appCtx, cfg.Cache.CleanupInterval)

	transcriptSource := source.ForPath(cfg.Viewer.TranscriptPath, &http.Client{Timeout: fetchTimeout})
	transcriptParser := parser.ForPath(cfg.Viewer.TranscriptPath)
	renderer := services.NewTranscriptRenderer(services.WithLocation(loc))
	pages := usecase.NewViewTranscriptUseCase(cfg, transcriptSource, transcriptParser, renderer, cacheStore)
	html := exporter.NewHTMLExporter(exporter.WithViewerEndpoint(server.ViewerEndpoint))

	// 6. Создание HTTP-сервера
	srv, err := server.New(cfg, pages, html, server.WithLoadErrorHook(reportError))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// 7. Запуск сервера и graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		defer close(serverErr)
		slog.Info("Starting server", "addr", cfg.Address(), "transcript", cfg.Viewer.TranscriptPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("Signal received, shutting down...")
	case err := <-serverErr:
		reportError(err)
		return fmt.Errorf("server error: %w", err)
	}

	// Останавливаем очистку кэша, затем HTTP-сервер
	appCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	<-serverErr
	slog.Info("Application exited gracefully")
	return nil
}
