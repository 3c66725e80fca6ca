package generation

import (
	"context"

	"github.com/phrazzld/lingocards/internal/domain"
)

// Generator produces flashcard drafts from text or from an image.
type Generator interface {
	// GenerateFromText translates text from source to target and describes
	// it visually. The returned draft keeps text as OriginalText.
	GenerateFromText(ctx context.Context, text string, source, target domain.Language) (domain.FlashcardDraft, error)

	// AnalyzeImage names the main subject of image in English and translates
	// it to target.
	AnalyzeImage(ctx context.Context, image []byte, target domain.Language) (domain.FlashcardDraft, error)
}

// Fallback values used when the model omits a field.
const (
	UnknownWord      = "Unknown"
	DefaultImageText = "Image content"
)

// DefaultDescription is used when a text response has no description.
func DefaultDescription(text string) string {
	return "Visual representation of " + text
}
