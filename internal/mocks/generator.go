package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/generation"
)

var _ generation.Generator = (*MockGenerator)(nil)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	GenerateFromTextFn func(ctx context.Context, text string, source, target domain.Language) (domain.FlashcardDraft, error)
	AnalyzeImageFn     func(ctx context.Context, image []byte, target domain.Language) (domain.FlashcardDraft, error)

	// Default response values
	Draft domain.FlashcardDraft
	Err   error

	mu         sync.Mutex
	textCalls  []string
	imageCalls int
}

// GenerateFromText implements generation.Generator.
func (m *MockGenerator) GenerateFromText(
	ctx context.Context,
	text string,
	source, target domain.Language,
) (domain.FlashcardDraft, error) {
	m.mu.Lock()
	m.textCalls = append(m.textCalls, text)
	m.mu.Unlock()

	if m.GenerateFromTextFn != nil {
		return m.GenerateFromTextFn(ctx, text, source, target)
	}
	return m.Draft, m.Err
}

// AnalyzeImage implements generation.Generator.
func (m *MockGenerator) AnalyzeImage(
	ctx context.Context,
	image []byte,
	target domain.Language,
) (domain.FlashcardDraft, error) {
	m.mu.Lock()
	m.imageCalls++
	m.mu.Unlock()

	if m.AnalyzeImageFn != nil {
		return m.AnalyzeImageFn(ctx, image, target)
	}
	return m.Draft, m.Err
}

// TextCalls returns the texts passed to GenerateFromText.
func (m *MockGenerator) TextCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.textCalls...)
}

// ImageCalls returns how many times AnalyzeImage was called.
func (m *MockGenerator) ImageCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.imageCalls
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}
