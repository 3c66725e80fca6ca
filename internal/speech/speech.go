// Package speech defines the boundary to the text-to-speech provider used
// for pronunciation audio.
package speech

import (
	"context"
	"errors"

	"github.com/phrazzld/lingocards/internal/domain"
)

// MIMEType is the media type of synthesized audio.
const MIMEType = "audio/mpeg"

var (
	// ErrEmptyText is returned when there is nothing to pronounce.
	ErrEmptyText = errors.New("text to speak cannot be empty")

	// ErrSynthesisFailed wraps provider failures.
	ErrSynthesisFailed = errors.New("speech synthesis failed")

	// ErrNoAudio is returned when the provider answered without audio data.
	ErrNoAudio = errors.New("no audio data received")
)

// Speaker turns text into MP3 audio.
type Speaker interface {
	Synthesize(ctx context.Context, text string, lang domain.Language) ([]byte, error)
}
