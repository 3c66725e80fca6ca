package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/platform/logger"
	"github.com/phrazzld/lingocards/internal/store"
)

const flashcardsTable = "flashcards"

var flashcardColumns = []string{
	"id",
	"original_text",
	"translated_text",
	"image_description",
	"image",
	"created_at",
}

// FlashcardStore implements store.FlashcardStore using PostgreSQL.
type FlashcardStore struct {
	db     *sql.DB
	sb     squirrel.StatementBuilderType
	logger *slog.Logger
}

var (
	_ store.FlashcardStore = (*FlashcardStore)(nil)
	_ store.Pinger         = (*FlashcardStore)(nil)
)

// NewFlashcardStore creates a FlashcardStore on db. The schema must already
// be migrated. If logger is nil, a default logger will be used.
func NewFlashcardStore(db *sql.DB, logger *slog.Logger) *FlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FlashcardStore{
		db:     db,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

// Ping implements store.Pinger.
func (s *FlashcardStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create implements store.FlashcardStore.Create.
// Returns validation errors from the domain Flashcard if data is invalid.
func (s *FlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("flashcard validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return store.NewStoreError("flashcard", "create", "invalid flashcard", err)
	}

	query, args, err := s.sb.Insert(flashcardsTable).
		Columns(flashcardColumns...).
		Values(
			card.ID,
			card.OriginalText,
			card.TranslatedText,
			card.ImageDescription,
			nullableBytes(card.Image),
			card.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create flashcard",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return store.NewStoreError("flashcard", "create", "insert failed", MapError(err))
	}

	log.Info("flashcard created successfully",
		slog.String("card_id", card.ID.String()),
		slog.Bool("has_image", card.HasImage()))
	return nil
}

// GetByID implements store.FlashcardStore.GetByID.
// Returns store.ErrFlashcardNotFound if the card does not exist.
func (s *FlashcardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	logger.FromContextOrDefault(ctx, s.logger).Debug("retrieving flashcard by ID", slog.String("card_id", id.String()))
	return s.get(ctx, s.db, id, false)
}

// List implements store.FlashcardStore.List, newest first.
func (s *FlashcardStore) List(ctx context.Context) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := s.sb.Select(flashcardColumns...).
		From(flashcardsTable).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list flashcards", slog.String("error", err.Error()))
		return nil, store.NewStoreError("flashcard", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	cards := []*domain.Flashcard{}
	for rows.Next() {
		card, err := scanFlashcard(rows)
		if err != nil {
			return nil, store.NewStoreError("flashcard", "list", "scan failed", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("flashcard", "list", "iteration failed", MapError(err))
	}

	log.Debug("listed flashcards", slog.Int("count", len(cards)))
	return cards, nil
}

// Update implements store.FlashcardStore.Update. The row is locked, the
// update applied and validated, then written back in one transaction.
func (s *FlashcardStore) Update(
	ctx context.Context,
	id uuid.UUID,
	update domain.FlashcardUpdate,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Flashcard
	err := store.RunInTransaction(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		card, err := s.get(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := update.Apply(card); err != nil {
			return err
		}

		query, args, err := s.sb.Update(flashcardsTable).
			Set("original_text", card.OriginalText).
			Set("translated_text", card.TranslatedText).
			Set("image_description", card.ImageDescription).
			Set("image", nullableBytes(card.Image)).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return store.NewStoreError("flashcard", "update", "update failed", MapError(err))
		}
		if err := CheckRowsAffected(result); err != nil {
			return err
		}
		updated = card
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) && !domain.IsValidationError(err) {
			log.Error("failed to update flashcard",
				slog.String("error", err.Error()),
				slog.String("card_id", id.String()))
		}
		return nil, err
	}

	log.Info("flashcard updated successfully", slog.String("card_id", id.String()))
	return updated, nil
}

// Delete implements store.FlashcardStore.Delete.
// Returns store.ErrFlashcardNotFound if the card does not exist.
func (s *FlashcardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := s.sb.Delete(flashcardsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete flashcard",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return store.NewStoreError("flashcard", "delete", "delete failed", MapError(err))
	}
	if err := CheckRowsAffected(result); err != nil {
		log.Debug("flashcard not found for deletion", slog.String("card_id", id.String()))
		return err
	}

	log.Info("flashcard deleted successfully", slog.String("card_id", id.String()))
	return nil
}

// get loads one card through q, optionally locking the row.
func (s *FlashcardStore) get(ctx context.Context, q store.DBTX, id uuid.UUID, forUpdate bool) (*domain.Flashcard, error) {
	builder := s.sb.Select(flashcardColumns...).
		From(flashcardsTable).
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	card, err := scanFlashcard(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrFlashcardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get flashcard",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, store.NewStoreError("flashcard", "get", "query failed", err)
	}
	return card, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlashcard(row rowScanner) (*domain.Flashcard, error) {
	var card domain.Flashcard
	err := row.Scan(
		&card.ID,
		&card.OriginalText,
		&card.TranslatedText,
		&card.ImageDescription,
		&card.Image,
		&card.CreatedAt,
	)
	if err != nil {
		return nil, MapError(err)
	}
	card.CreatedAt = card.CreatedAt.UTC()
	if len(card.Image) == 0 {
		card.Image = nil
	}
	return &card, nil
}

// nullableBytes stores an absent image as NULL rather than an empty bytea.
func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
