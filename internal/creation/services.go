package creation

import (
	"context"

	"github.com/phrazzld/lingocards/internal/capture"
	"github.com/phrazzld/lingocards/internal/domain"
)

// ContentService produces flashcard content.
type ContentService interface {
	// GenerateFromText returns an unsaved draft for text.
	GenerateFromText(ctx context.Context, text string, source, target domain.Language) (domain.FlashcardDraft, error)

	// GenerateAndPersistFromImage analyzes image and stores the resulting
	// card in one remote operation.
	GenerateAndPersistFromImage(ctx context.Context, image []byte, target domain.Language) (*domain.Flashcard, error)
}

// FileUploader is an optional ContentService extension. File submissions
// use it to send the selected file's name and media type along with its data.
type FileUploader interface {
	GenerateAndPersistFromFile(ctx context.Context, file ImageFile, target domain.Language) (*domain.Flashcard, error)
}

// PersistenceService stores flashcards.
type PersistenceService interface {
	Create(ctx context.Context, draft domain.FlashcardDraft) (*domain.Flashcard, error)
}

// Acceptor hands over an accepted still. *capture.Controller implements it.
type Acceptor interface {
	Accept() (capture.Photo, error)
}

var _ Acceptor = (*capture.Controller)(nil)
