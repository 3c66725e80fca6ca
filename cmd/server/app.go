package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/lingocards/internal/config"
	"github.com/phrazzld/lingocards/internal/events"
	"github.com/phrazzld/lingocards/internal/generation"
	"github.com/phrazzld/lingocards/internal/platform/memory"
	"github.com/phrazzld/lingocards/internal/platform/postgres"
	"github.com/phrazzld/lingocards/internal/service"
	"github.com/phrazzld/lingocards/internal/speech"
	"github.com/phrazzld/lingocards/internal/store"
)

// Names reported by GET / for the active storage backend.
const (
	databasePostgres = "PostgreSQL"
	databaseMemory   = "In-Memory"
)

// application holds the server's wired dependencies.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	db       *sql.DB
	store    store.FlashcardStore
	database string
	emitter  *events.InMemoryEmitter
	service  *service.FlashcardService
}

// newApplication opens the store and builds the flashcard service. speaker
// may be nil, which disables text-to-speech.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	generator generation.Generator,
	speaker speech.Speaker,
) (*application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &application{config: cfg, logger: logger}
	app.openStore(ctx)

	app.emitter = events.NewInMemoryEmitter(logger)
	app.emitter.RegisterHandler(events.HandlerFunc(app.logEvent))

	opts := []service.Option{service.WithEmitter(app.emitter)}
	if speaker != nil {
		opts = append(opts, service.WithSpeaker(speaker))
	}
	svc, err := service.NewFlashcardService(generator, app.store, logger, opts...)
	if err != nil {
		app.cleanup()
		return nil, err
	}
	app.service = svc
	return app, nil
}

// openStore connects to PostgreSQL and applies migrations. When the database
// is unreachable, or the memory backend is configured, cards are kept in
// memory for the life of the process.
func (app *application) openStore(ctx context.Context) {
	if app.config.Database.Backend == config.BackendPostgres {
		db, err := postgres.Open(ctx, app.config.Database.URL, app.config.Database.MaxOpenConns)
		if err == nil {
			if err = postgres.Migrate(ctx, db, app.logger); err == nil {
				app.db = db
				app.store = postgres.NewFlashcardStore(db, app.logger)
				app.database = databasePostgres
				app.logger.Info("using PostgreSQL flashcard store")
				return
			}
			_ = db.Close()
		}
		app.logger.Warn("PostgreSQL unavailable, falling back to in-memory storage",
			"error", err)
	}

	app.store = memory.NewFlashcardStore()
	app.database = databaseMemory
	app.logger.Info("using in-memory flashcard store")
}

// logEvent records every flashcard event.
func (app *application) logEvent(ctx context.Context, event *events.Event) error {
	app.logger.InfoContext(ctx, "flashcard event",
		"event_id", event.ID,
		"event_type", event.Type,
		"payload", string(event.Payload))
	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
		app.db = nil
	}
}
