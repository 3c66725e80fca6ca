// Package main implements the flashcards API server. It generates bilingual
// flashcards from text or images, stores them and serves pronunciation
// audio.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/lingocards/internal/config"
	"github.com/phrazzld/lingocards/internal/platform/gemini"
	"github.com/phrazzld/lingocards/internal/platform/logger"
	"github.com/phrazzld/lingocards/internal/platform/tts"
	"github.com/phrazzld/lingocards/internal/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run loads configuration, wires the application and serves until ctx is
// cancelled.
func run(ctx context.Context) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: os.Getenv("LINGOCARDS_CONFIG")})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.RequireServerSecrets(); err != nil {
		return err
	}

	log, err := logger.Setup(logger.LoggerConfig{
		Level:  cfg.Server.LogLevel,
		Format: cfg.Server.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_backend", cfg.Database.Backend)

	generator, err := gemini.NewGenerator(ctx, log, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	var speaker speech.Speaker
	if cfg.TTS.OpenAIAPIKey != "" {
		s, err := tts.New(cfg.TTS, log)
		if err != nil {
			return fmt.Errorf("failed to create speech provider: %w", err)
		}
		speaker = s
	} else {
		log.Warn("tts.openai_api_key is not set, text-to-speech is disabled")
	}

	app, err := newApplication(ctx, cfg, log, generator, speaker)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return app.startHTTPServer(ctx)
}
