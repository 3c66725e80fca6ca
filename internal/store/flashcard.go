package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/lingocards/internal/domain"
)

// FlashcardStore defines the interface for flashcard persistence.
type FlashcardStore interface {
	// Create saves a new flashcard. The card must be valid according to
	// domain validation rules.
	Create(ctx context.Context, card *domain.Flashcard) error

	// GetByID retrieves a flashcard by its unique ID.
	// Returns ErrFlashcardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)

	// List returns all flashcards, newest first.
	List(ctx context.Context) ([]*domain.Flashcard, error)

	// Update applies a partial update and returns the stored result.
	// Returns ErrFlashcardNotFound if the card does not exist.
	Update(ctx context.Context, id uuid.UUID, update domain.FlashcardUpdate) (*domain.Flashcard, error)

	// Delete removes a flashcard by its ID.
	// Returns ErrFlashcardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Pinger is implemented by stores backed by a remote database.
type Pinger interface {
	Ping(ctx context.Context) error
}
