// Package memory provides a process-local flashcard store. It is used when
// no database is configured or reachable.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/store"
)

// FlashcardStore is a mutex-guarded map of cards. Cards are copied on the
// way in and out so callers never share state with the store.
type FlashcardStore struct {
	mu    sync.RWMutex
	cards map[uuid.UUID]*domain.Flashcard
}

var _ store.FlashcardStore = (*FlashcardStore)(nil)

// NewFlashcardStore returns an empty store.
func NewFlashcardStore() *FlashcardStore {
	return &FlashcardStore{cards: make(map[uuid.UUID]*domain.Flashcard)}
}

// Create implements store.FlashcardStore.
func (s *FlashcardStore) Create(_ context.Context, card *domain.Flashcard) error {
	if err := card.Validate(); err != nil {
		return store.NewStoreError("flashcard", "create", "invalid flashcard", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[card.ID]; ok {
		return store.NewStoreError("flashcard", "create", "id already exists", store.ErrDuplicate)
	}
	s.cards[card.ID] = clone(card)
	return nil
}

// GetByID implements store.FlashcardStore.
func (s *FlashcardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrFlashcardNotFound
	}
	return clone(card), nil
}

// List implements store.FlashcardStore.
func (s *FlashcardStore) List(_ context.Context) ([]*domain.Flashcard, error) {
	s.mu.RLock()
	out := make([]*domain.Flashcard, 0, len(s.cards))
	for _, card := range s.cards {
		out = append(out, clone(card))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update implements store.FlashcardStore.
func (s *FlashcardStore) Update(
	_ context.Context,
	id uuid.UUID,
	update domain.FlashcardUpdate,
) (*domain.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrFlashcardNotFound
	}

	next := clone(card)
	if err := update.Apply(next); err != nil {
		return nil, err
	}
	s.cards[id] = next
	return clone(next), nil
}

// Delete implements store.FlashcardStore.
func (s *FlashcardStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[id]; !ok {
		return store.ErrFlashcardNotFound
	}
	delete(s.cards, id)
	return nil
}

// Len returns the number of stored cards.
func (s *FlashcardStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

func clone(c *domain.Flashcard) *domain.Flashcard {
	out := *c
	if c.Image != nil {
		out.Image = append([]byte(nil), c.Image...)
	}
	return &out
}
