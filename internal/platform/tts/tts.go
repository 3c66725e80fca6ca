// Package tts implements speech.Speaker with the OpenAI text-to-speech API.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/phrazzld/lingocards/internal/config"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/platform/logger"
	"github.com/phrazzld/lingocards/internal/speech"
	"github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey is returned by New when no OpenAI key is configured.
var ErrMissingAPIKey = errors.New("OpenAI API key is required")

// maxAudioBytes bounds the response read into memory.
const maxAudioBytes = 16 << 20

// Speaker synthesizes MP3 audio with OpenAI TTS.
type Speaker struct {
	client *openai.Client
	config config.TTSConfig
	logger *slog.Logger
}

var _ speech.Speaker = (*Speaker)(nil)

// New creates a Speaker for cfg.
func New(cfg config.TTSConfig, logger *slog.Logger) (*Speaker, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return NewWithClientConfig(cfg, openai.DefaultConfig(cfg.OpenAIAPIKey), logger), nil
}

// NewWithClientConfig creates a Speaker using an explicit client
// configuration, for example a different base URL.
func NewWithClientConfig(cfg config.TTSConfig, clientCfg openai.ClientConfig, logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Speaker{
		client: openai.NewClientWithConfig(clientCfg),
		config: cfg,
		logger: logger.With("component", "openai_tts"),
	}
}

// Synthesize implements speech.Speaker. OpenAI detects the spoken language
// from the text itself; lang is only logged.
func (s *Speaker) Synthesize(ctx context.Context, text string, lang domain.Language) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, speech.ErrEmptyText
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.config.Model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.config.Voice),
		Speed:          s.config.Speed,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}

	log.DebugContext(ctx, "requesting speech",
		"model", s.config.Model,
		"voice", s.config.Voice,
		"language", lang.String(),
		"text_length", len(text))

	response, err := s.client.CreateSpeech(ctx, req)
	if err != nil {
		log.ErrorContext(ctx, "OpenAI TTS API error", "error", err)
		return nil, fmt.Errorf("%w: %v", speech.ErrSynthesisFailed, err)
	}
	defer func() { _ = response.Close() }()

	audio, err := io.ReadAll(io.LimitReader(response, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", speech.ErrSynthesisFailed, err)
	}
	if len(audio) == 0 {
		return nil, speech.ErrNoAudio
	}

	log.DebugContext(ctx, "speech synthesized", "bytes", len(audio))
	return audio, nil
}
