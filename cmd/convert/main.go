package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"whatsapp-chat-viewer/internal/adapters/parser"
	"whatsapp-chat-viewer/internal/adapters/source"
	"whatsapp-chat-viewer/internal/domain"
	applog "whatsapp-chat-viewer/internal/log"
)

var opts struct {
	Input    string `short:"i" long:"input" default:"chat.txt" description:"WhatsApp .txt export"`
	Output   string `short:"o" long:"output" default:"chat.json" description:"output JSON file"`
	LogLevel string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"debug, info, warn, error"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	level, _ := applog.ParseLevel(opts.LogLevel)
	log := applog.NewLogger(level, "text", os.Stderr)
	slog.SetDefault(log)

	if err := run(context.Background(), log); err != nil {
		log.Error("conversion failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	data, err := source.NewFileSource(opts.Input).Fetch(ctx)
	if err != nil {
		return err
	}

	transcript, err := parser.NewWhatsAppTextParser().Parse(data)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(transcript); err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	if err := os.WriteFile(opts.Output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.Output, err)
	}

	counts := transcript.CountByType()
	args := []any{"input", opts.Input, "output", opts.Output, "messages", len(transcript)}
	for _, msgType := range []domain.MessageType{domain.MessageTypeText, domain.MessageTypeMedia, domain.MessageTypeSystem} {
		args = append(args, string(msgType), counts[msgType])
	}
	log.Info("transcript converted", args...)
	return nil
}
