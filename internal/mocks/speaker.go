package mocks

import (
	"context"

	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/speech"
)

var _ speech.Speaker = (*MockSpeaker)(nil)

// MockSpeaker implements speech.Speaker.
type MockSpeaker struct {
	SynthesizeFn func(ctx context.Context, text string, lang domain.Language) ([]byte, error)

	Audio []byte
	Err   error
}

// Synthesize implements speech.Speaker.
func (m *MockSpeaker) Synthesize(ctx context.Context, text string, lang domain.Language) ([]byte, error) {
	if m.SynthesizeFn != nil {
		return m.SynthesizeFn(ctx, text, lang)
	}
	return m.Audio, m.Err
}
