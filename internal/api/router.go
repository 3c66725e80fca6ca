package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/lingocards/internal/api/middleware"
)

// NewRouter registers the flashcard routes and the standard middleware.
// Collection paths keep the trailing slash of the public API and also
// answer without it.
func NewRouter(h *FlashcardHandler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.CORS(allowedOrigins))

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Post("/generate-flashcard/", h.GenerateFlashcard)
	r.Post("/generate-flashcard", h.GenerateFlashcard)
	r.Post("/generate-flashcard-from-image/", h.GenerateFromImage)
	r.Post("/generate-flashcard-from-image", h.GenerateFromImage)

	r.Route("/flashcards", func(r chi.Router) {
		r.Get("/", h.ListFlashcards)
		r.Post("/", h.CreateFlashcard)
		r.Get("/{id}", h.GetFlashcard)
		r.Put("/{id}", h.UpdateFlashcard)
		r.Delete("/{id}", h.DeleteFlashcard)
	})

	r.Get("/tts/", h.TextToSpeech)
	r.Get("/tts", h.TextToSpeech)

	return r
}
