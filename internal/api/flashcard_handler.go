package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/lingocards/internal/api/shared"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/generation"
	"github.com/phrazzld/lingocards/internal/platform/logger"
	"github.com/phrazzld/lingocards/internal/redact"
	"github.com/phrazzld/lingocards/internal/service"
	"github.com/phrazzld/lingocards/internal/speech"
)

// DefaultMaxUploadBytes bounds image uploads.
const DefaultMaxUploadBytes = 10 << 20

// FlashcardService is the subset of service.FlashcardService used by the
// handlers.
type FlashcardService interface {
	GenerateFromText(ctx context.Context, text string, source, target domain.Language) (domain.FlashcardDraft, error)
	GenerateAndPersistFromImage(ctx context.Context, image []byte, target domain.Language) (*domain.Flashcard, error)
	CreateWithImage(ctx context.Context, draft domain.FlashcardDraft, image []byte) (*domain.Flashcard, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)
	List(ctx context.Context) ([]*domain.Flashcard, error)
	Update(ctx context.Context, id uuid.UUID, update domain.FlashcardUpdate) (*domain.Flashcard, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Speak(ctx context.Context, text string) ([]byte, error)
}

var _ FlashcardService = (*service.FlashcardService)(nil)

// FlashcardHandler serves the flashcard endpoints.
type FlashcardHandler struct {
	service        FlashcardService
	database       string
	maxUploadBytes int64
	logger         *slog.Logger
}

// HandlerOption customizes a FlashcardHandler.
type HandlerOption func(*FlashcardHandler)

// WithMaxUploadBytes overrides DefaultMaxUploadBytes.
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *FlashcardHandler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// NewFlashcardHandler creates a FlashcardHandler. database names the active
// storage backend for the root endpoint.
func NewFlashcardHandler(
	svc FlashcardService,
	database string,
	logger *slog.Logger,
	opts ...HandlerOption,
) *FlashcardHandler {
	if svc == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("service cannot be nil for FlashcardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FlashcardHandler")
	}

	h := &FlashcardHandler{
		service:        svc,
		database:       database,
		maxUploadBytes: DefaultMaxUploadBytes,
		logger:         logger.With(slog.String("component", "flashcard_handler")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Root handles GET /.
func (h *FlashcardHandler) Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, RootResponse{
		Message:  "AI Language Flashcards API",
		Version:  APIVersion,
		Database: h.database,
	})
}

// GenerateFlashcard handles POST /generate-flashcard/. It returns an
// unsaved draft.
func (h *FlashcardHandler) GenerateFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req GenerateFlashcardRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	source, err := languageOrDefault(req.SourceLanguage, domain.DefaultSource, "source_language")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	target, err := languageOrDefault(req.TargetLanguage, domain.DefaultTarget, "target_language")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	draft, err := h.service.GenerateFromText(r.Context(), req.Text, source, target)
	if err != nil {
		HandleAPIError(w, r, err, "Error generating flashcard")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, draft)
}

// GenerateFromImage handles POST /generate-flashcard-from-image/. The image
// is read from the multipart field "file" and the stored card is returned.
func (h *FlashcardHandler) GenerateFromImage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	target, err := languageOrDefault(r.URL.Query().Get("target_language"), domain.DefaultTarget, "target_language")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	image, err := h.readUpload(w, r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, "Image file is too large", err)
			return
		}
		log.Warn("invalid upload", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "No image file provided", err)
		return
	}

	card, err := h.service.GenerateAndPersistFromImage(r.Context(), image, target)
	if err != nil {
		HandleAPIError(w, r, err, "Error processing image")
		return
	}

	log.Debug("created flashcard from image", slog.String("card_id", card.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

func (h *FlashcardHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, generation.ErrEmptyImage
	}
	return data, nil
}

// ListFlashcards handles GET /flashcards/.
func (h *FlashcardHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Error retrieving flashcards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cards)
}

// CreateFlashcard handles POST /flashcards/.
func (h *FlashcardHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req CreateFlashcardRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	var image []byte
	if len(req.Image) > 0 {
		image = req.Image
	}
	card, err := h.service.CreateWithImage(r.Context(), req.Draft(), image)
	if err != nil {
		HandleAPIError(w, r, err, "Error creating flashcard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// GetFlashcard handles GET /flashcards/{id}.
func (h *FlashcardHandler) GetFlashcard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	card, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Error retrieving flashcard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// UpdateFlashcard handles PUT /flashcards/{id}.
func (h *FlashcardHandler) UpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req UpdateFlashcardRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	card, err := h.service.Update(r.Context(), id, req.Update())
	if err != nil {
		HandleAPIError(w, r, err, "Error updating flashcard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DeleteFlashcard handles DELETE /flashcards/{id}.
func (h *FlashcardHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Error deleting flashcard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: "Flashcard deleted successfully"})
}

// TextToSpeech handles GET /tts/?text=. It returns MP3 audio as an
// attachment.
func (h *FlashcardHandler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")

	audio, err := h.service.Speak(r.Context(), text)
	if err != nil {
		HandleAPIError(w, r, err, "Error generating speech")
		return
	}

	w.Header().Set("Content-Type", speech.MIMEType)
	w.Header().Set("Content-Disposition", "attachment; filename=tts.mp3")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Error("failed to write audio response", slog.String("error", err.Error()))
	}
}

// Health handles GET /health.
func (h *FlashcardHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Error("failed to write health check response", slog.String("error", err.Error()))
	}
}

func (h *FlashcardHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid flashcard ID", err)
		return uuid.Nil, false
	}
	return id, true
}
