package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/store"
)

var _ store.FlashcardStore = (*MockFlashcardStore)(nil)

// MockFlashcardStore implements store.FlashcardStore. Unset functions
// return DefaultError, or succeed with zero values when it is nil.
type MockFlashcardStore struct {
	CreateFn  func(ctx context.Context, card *domain.Flashcard) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)
	ListFn    func(ctx context.Context) ([]*domain.Flashcard, error)
	UpdateFn  func(ctx context.Context, id uuid.UUID, update domain.FlashcardUpdate) (*domain.Flashcard, error)
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	DefaultError error
}

// Create implements store.FlashcardStore.
func (m *MockFlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, card)
	}
	return m.DefaultError
}

// GetByID implements store.FlashcardStore.
func (m *MockFlashcardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	return nil, store.ErrFlashcardNotFound
}

// List implements store.FlashcardStore.
func (m *MockFlashcardStore) List(ctx context.Context) ([]*domain.Flashcard, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, m.DefaultError
}

// Update implements store.FlashcardStore.
func (m *MockFlashcardStore) Update(
	ctx context.Context,
	id uuid.UUID,
	update domain.FlashcardUpdate,
) (*domain.Flashcard, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, update)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	return nil, store.ErrFlashcardNotFound
}

// Delete implements store.FlashcardStore.
func (m *MockFlashcardStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return m.DefaultError
}
