package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"whatsapp-chat-viewer/internal/adapters/exporter"
	"whatsapp-chat-viewer/internal/adapters/parser"
	"whatsapp-chat-viewer/internal/adapters/source"
	"whatsapp-chat-viewer/internal/core/services"
	"whatsapp-chat-viewer/internal/domain"
	applog "whatsapp-chat-viewer/internal/log"
	"whatsapp-chat-viewer/internal/pkg/config"
	"whatsapp-chat-viewer/internal/ports"
)

var opts struct {
	Input       string `short:"i" long:"input" env:"CHAT_TRANSCRIPT_PATH" default:"chat.json" description:"transcript file (.json or WhatsApp .txt export), http(s) URL or - for JSON on stdin"`
	Output      string `short:"o" long:"output" default:"-" description:"output file, - for stdout"`
	Format      string `short:"f" long:"format" default:"html" choice:"html" choice:"terminal" description:"output format"`
	CurrentUser string `long:"current-user" env:"CHAT_CURRENT_USER" default:"You" description:"sender name shown as outgoing"`
	MediaPath   string `long:"media-path" env:"CHAT_MEDIA_BASE_PATH" default:"media/" description:"prefix for media URLs"`
	Title       string `long:"title" default:"WhatsApp Chat" description:"page title"`
	Timezone    string `long:"timezone" env:"CHAT_TIMEZONE" description:"IANA time zone for dates, local if empty"`
	Width       int    `long:"width" description:"terminal width, detected if not set"`
	LogLevel    string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"debug, info, warn, error"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	level, _ := applog.ParseLevel(opts.LogLevel)
	log := applog.NewLogger(level, "text", os.Stderr)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func inputSource() (ports.DataSource, error) {
	if opts.Input != "-" {
		return source.ForPath(opts.Input, &http.Client{Timeout: 30 * time.Second}), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return source.NewMemorySource(data), nil
}

func run(ctx context.Context) error {
	cfg := config.Config{Viewer: config.Viewer{Timezone: opts.Timezone}}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	src, err := inputSource()
	if err != nil {
		return err
	}
	data, err := src.Fetch(ctx)
	if err != nil {
		return err
	}
	transcript, err := parser.ForPath(opts.Input).Parse(data)
	if err != nil {
		return err
	}

	blocks := services.NewTranscriptRenderer(services.WithLocation(loc)).Render(transcript, opts.CurrentUser, opts.MediaPath)
	page := domain.Page{Title: opts.Title, Blocks: blocks, Catalog: domain.BuildMediaCatalog(blocks)}

	var exp ports.Exporter
	switch opts.Format {
	case "terminal":
		exp = exporter.NewConsoleExporter(exporter.WithWidth(opts.Width))
	default:
		exp = exporter.NewHTMLExporter()
	}

	var out io.Writer = os.Stdout
	if opts.Output != "-" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := exp.Export(out, page); err != nil {
		return err
	}

	slog.Info("chat exported", "messages", len(transcript), "blocks", len(blocks), "format", opts.Format, "output", opts.Output)
	return nil
}
