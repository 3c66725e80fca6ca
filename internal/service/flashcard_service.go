package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lingocards/internal/creation"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/events"
	"github.com/phrazzld/lingocards/internal/generation"
	"github.com/phrazzld/lingocards/internal/platform/logger"
	"github.com/phrazzld/lingocards/internal/speech"
	"github.com/phrazzld/lingocards/internal/store"
)

// FlashcardService provides flashcard generation, storage and pronunciation.
type FlashcardService struct {
	generator generation.Generator
	store     store.FlashcardStore
	speaker   speech.Speaker
	emitter   events.Emitter
	logger    *slog.Logger
}

var (
	_ creation.ContentService     = (*FlashcardService)(nil)
	_ creation.PersistenceService = (*FlashcardService)(nil)
)

// Option customizes a FlashcardService.
type Option func(*FlashcardService)

// WithSpeaker enables Speak.
func WithSpeaker(s speech.Speaker) Option {
	return func(svc *FlashcardService) { svc.speaker = s }
}

// WithEmitter publishes created and deleted events.
func WithEmitter(e events.Emitter) Option {
	return func(svc *FlashcardService) { svc.emitter = e }
}

// NewFlashcardService creates a FlashcardService.
// It returns an error if any of the required dependencies are nil.
func NewFlashcardService(
	generator generation.Generator,
	flashcards store.FlashcardStore,
	logger *slog.Logger,
	opts ...Option,
) (*FlashcardService, error) {
	if generator == nil {
		return nil, NewFlashcardServiceError("new", "generator cannot be nil", ErrNilDependency)
	}
	if flashcards == nil {
		return nil, NewFlashcardServiceError("new", "store cannot be nil", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}

	svc := &FlashcardService{
		generator: generator,
		store:     flashcards,
		logger:    logger.With(slog.String("component", "flashcard_service")),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// GenerateFromText returns an unsaved draft for text. Missing fields in the
// model output fall back to the input text and a generic description.
func (s *FlashcardService) GenerateFromText(
	ctx context.Context,
	text string,
	source, target domain.Language,
) (domain.FlashcardDraft, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.FlashcardDraft{}, domain.NewValidationError("text", "is required", domain.ErrEmptyContent)
	}
	if err := source.Validate(); err != nil {
		return domain.FlashcardDraft{}, domain.NewValidationError("source_language", "must be en or th", err)
	}
	if err := target.Validate(); err != nil {
		return domain.FlashcardDraft{}, domain.NewValidationError("target_language", "must be en or th", err)
	}

	draft, err := s.generator.GenerateFromText(ctx, text, source, target)
	if err != nil {
		log.ErrorContext(ctx, "text generation failed",
			slog.String("error", err.Error()),
			slog.String("source", source.String()),
			slog.String("target", target.String()))
		return domain.FlashcardDraft{}, NewFlashcardServiceError("generate_from_text", "generation failed", err)
	}

	draft.OriginalText = text
	if strings.TrimSpace(draft.TranslatedText) == "" {
		draft.TranslatedText = text
	}
	if strings.TrimSpace(draft.ImageDescription) == "" {
		draft.ImageDescription = generation.DefaultDescription(text)
	}

	log.DebugContext(ctx, "generated draft", slog.String("source", source.String()), slog.String("target", target.String()))
	return draft, nil
}

// GenerateAndPersistFromImage analyzes image and stores a card holding the
// image bytes.
func (s *FlashcardService) GenerateAndPersistFromImage(
	ctx context.Context,
	image []byte,
	target domain.Language,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(image) == 0 {
		return nil, domain.NewValidationError("file", "is required", generation.ErrEmptyImage)
	}
	if ct := http.DetectContentType(image); !strings.HasPrefix(ct, "image/") {
		return nil, domain.NewValidationError("file", "must be an image, got "+ct, ErrInvalidImage)
	}
	if err := target.Validate(); err != nil {
		return nil, domain.NewValidationError("target_language", "must be en or th", err)
	}

	draft, err := s.generator.AnalyzeImage(ctx, image, target)
	if err != nil {
		log.ErrorContext(ctx, "image analysis failed",
			slog.String("error", err.Error()),
			slog.Int("bytes", len(image)))
		return nil, NewFlashcardServiceError("generate_from_image", "image analysis failed", err)
	}
	if strings.TrimSpace(draft.OriginalText) == "" {
		draft.OriginalText = generation.UnknownWord
	}
	if strings.TrimSpace(draft.TranslatedText) == "" {
		draft.TranslatedText = generation.UnknownWord
	}
	if strings.TrimSpace(draft.ImageDescription) == "" {
		draft.ImageDescription = generation.DefaultImageText
	}

	card, err := domain.NewFlashcard(draft, image)
	if err != nil {
		return nil, NewFlashcardServiceError("generate_from_image", "invalid generated card", err)
	}
	if err := s.save(ctx, card, "image"); err != nil {
		return nil, err
	}
	return card, nil
}

// Create stores a card built from draft. It implements
// creation.PersistenceService.
func (s *FlashcardService) Create(ctx context.Context, draft domain.FlashcardDraft) (*domain.Flashcard, error) {
	return s.CreateWithImage(ctx, draft, nil)
}

// CreateWithImage stores a card built from draft and optional image bytes.
func (s *FlashcardService) CreateWithImage(
	ctx context.Context,
	draft domain.FlashcardDraft,
	image []byte,
) (*domain.Flashcard, error) {
	card, err := domain.NewFlashcard(draft, image)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, card, "manual"); err != nil {
		return nil, err
	}
	return card, nil
}

// Get returns one card.
func (s *FlashcardService) Get(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	card, err := s.store.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewFlashcardServiceError("get", "flashcard not found", store.ErrFlashcardNotFound)
		}
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to retrieve flashcard",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, NewFlashcardServiceError("get", "failed to retrieve flashcard", err)
	}
	return card, nil
}

// List returns every card, newest first.
func (s *FlashcardService) List(ctx context.Context) ([]*domain.Flashcard, error) {
	cards, err := s.store.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to list flashcards",
			slog.String("error", err.Error()))
		return nil, NewFlashcardServiceError("list", "failed to list flashcards", err)
	}
	if cards == nil {
		cards = []*domain.Flashcard{}
	}
	return cards, nil
}

// Update applies a partial update.
func (s *FlashcardService) Update(
	ctx context.Context,
	id uuid.UUID,
	update domain.FlashcardUpdate,
) (*domain.Flashcard, error) {
	if update.IsEmpty() {
		return nil, NewFlashcardServiceError("update", "no fields to update", ErrNothingToUpdate)
	}

	card, err := s.store.Update(ctx, id, update)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewFlashcardServiceError("update", "flashcard not found", store.ErrFlashcardNotFound)
		}
		if domain.IsValidationError(err) {
			return nil, err
		}
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to update flashcard",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, NewFlashcardServiceError("update", "failed to update flashcard", err)
	}
	return card, nil
}

// Delete removes a card.
func (s *FlashcardService) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.store.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return NewFlashcardServiceError("delete", "flashcard not found", store.ErrFlashcardNotFound)
		}
		log.ErrorContext(ctx, "failed to delete flashcard",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return NewFlashcardServiceError("delete", "failed to delete flashcard", err)
	}

	log.InfoContext(ctx, "flashcard deleted", slog.String("card_id", id.String()))
	if event, err := events.NewFlashcardDeleted(id); err == nil {
		s.emit(ctx, event)
	}
	return nil
}

// Speak returns MP3 audio for text. The language is Thai when text contains
// Thai script and English otherwise.
func (s *FlashcardService) Speak(ctx context.Context, text string) ([]byte, error) {
	if s.speaker == nil {
		return nil, ErrSpeechUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("text", "is required", speech.ErrEmptyText)
	}

	lang := domain.DetectSpeechLanguage(text)
	audio, err := s.speaker.Synthesize(ctx, text, lang)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "speech synthesis failed",
			slog.String("error", err.Error()),
			slog.String("language", lang.String()))
		return nil, NewFlashcardServiceError("speak", "speech synthesis failed", err)
	}
	return audio, nil
}

func (s *FlashcardService) save(ctx context.Context, card *domain.Flashcard, origin string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.store.Create(ctx, card); err != nil {
		log.ErrorContext(ctx, "failed to save flashcard",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return NewFlashcardServiceError("create", "failed to save flashcard", err)
	}

	log.InfoContext(ctx, "flashcard created",
		slog.String("card_id", card.ID.String()),
		slog.String("origin", origin))
	if event, err := events.NewFlashcardCreated(card.ID, origin, card.OriginalText); err == nil {
		s.emit(ctx, event)
	}
	return nil
}

func (s *FlashcardService) emit(ctx context.Context, event *events.Event) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "event handler failed",
			slog.String("error", err.Error()),
			slog.String("event_type", event.Type))
	}
}
