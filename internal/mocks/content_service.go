package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/lingocards/internal/creation"
	"github.com/phrazzld/lingocards/internal/domain"
)

var (
	_ creation.ContentService     = (*MockContentService)(nil)
	_ creation.PersistenceService = (*MockPersistenceService)(nil)
)

// ContentCall records one call to MockContentService.
type ContentCall struct {
	Method string
	Text   string
	Image  []byte
	Source domain.Language
	Target domain.Language
}

// MockContentService implements creation.ContentService.
type MockContentService struct {
	GenerateFromTextFn            func(ctx context.Context, text string, source, target domain.Language) (domain.FlashcardDraft, error)
	GenerateAndPersistFromImageFn func(ctx context.Context, image []byte, target domain.Language) (*domain.Flashcard, error)

	// Log, when set, receives the method name of every call. Tests share
	// one Log between mocks to assert call order.
	Log *CallLog

	mu    sync.Mutex
	calls []ContentCall
}

// GenerateFromText implements creation.ContentService.
func (m *MockContentService) GenerateFromText(
	ctx context.Context,
	text string,
	source, target domain.Language,
) (domain.FlashcardDraft, error) {
	m.record(ContentCall{Method: "GenerateFromText", Text: text, Source: source, Target: target})

	if m.GenerateFromTextFn != nil {
		return m.GenerateFromTextFn(ctx, text, source, target)
	}
	return domain.FlashcardDraft{
		OriginalText:     text,
		TranslatedText:   text,
		ImageDescription: "Visual representation of " + text,
	}, nil
}

// GenerateAndPersistFromImage implements creation.ContentService.
func (m *MockContentService) GenerateAndPersistFromImage(
	ctx context.Context,
	image []byte,
	target domain.Language,
) (*domain.Flashcard, error) {
	m.record(ContentCall{Method: "GenerateAndPersistFromImage", Image: image, Target: target})

	if m.GenerateAndPersistFromImageFn != nil {
		return m.GenerateAndPersistFromImageFn(ctx, image, target)
	}
	return domain.NewFlashcard(domain.FlashcardDraft{
		OriginalText:     "Unknown",
		TranslatedText:   "ไม่ทราบ",
		ImageDescription: "Image content",
	}, image)
}

// Calls returns a copy of the recorded calls.
func (m *MockContentService) Calls() []ContentCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ContentCall(nil), m.calls...)
}

func (m *MockContentService) record(c ContentCall) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
	m.Log.Add(c.Method)
}

// MockPersistenceService implements creation.PersistenceService.
type MockPersistenceService struct {
	CreateFn func(ctx context.Context, draft domain.FlashcardDraft) (*domain.Flashcard, error)

	Log *CallLog

	mu     sync.Mutex
	drafts []domain.FlashcardDraft
}

// Create implements creation.PersistenceService. By default it returns a new
// card built from draft.
func (m *MockPersistenceService) Create(ctx context.Context, draft domain.FlashcardDraft) (*domain.Flashcard, error) {
	m.mu.Lock()
	m.drafts = append(m.drafts, draft)
	m.mu.Unlock()
	m.Log.Add("Create")

	if m.CreateFn != nil {
		return m.CreateFn(ctx, draft)
	}
	return domain.NewFlashcard(draft, nil)
}

// Drafts returns the drafts passed to Create.
func (m *MockPersistenceService) Drafts() []domain.FlashcardDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.FlashcardDraft(nil), m.drafts...)
}

// CallLog is an ordered, concurrency-safe list of call names. A nil
// *CallLog ignores additions.
type CallLog struct {
	mu    sync.Mutex
	names []string
}

// Add appends name.
func (l *CallLog) Add(name string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.names = append(l.names, name)
	l.mu.Unlock()
}

// Names returns the recorded names in call order.
func (l *CallLog) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}
