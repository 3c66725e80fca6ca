package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/lingocards/internal/config"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/generation"
	"github.com/phrazzld/lingocards/internal/platform/logger"
	"google.golang.org/genai"
)

// ContentGenerator is the subset of the genai client used by Generator.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	logger *slog.Logger
	config config.LLMConfig
	models ContentGenerator

	// sleep waits between retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error

	rngMu sync.Mutex
	rng   *rand.Rand
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator backed by a genai client for cfg.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return NewGeneratorWithClient(logger, cfg, client.Models)
}

// NewGeneratorWithClient creates a Generator that sends requests to models.
func NewGeneratorWithClient(logger *slog.Logger, cfg config.LLMConfig, models ContentGenerator) (*Generator, error) {
	if models == nil {
		return nil, fmt.Errorf("%w: content generator cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		logger: logger.With("component", "gemini_generator", "model", cfg.ModelName),
		config: cfg,
		models: models,
		sleep:  sleepContext,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// GenerateFromText implements generation.Generator.
func (g *Generator) GenerateFromText(
	ctx context.Context,
	text string,
	source, target domain.Language,
) (domain.FlashcardDraft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.FlashcardDraft{}, ErrEmptyText
	}

	parts := []*genai.Part{genai.NewPartFromText(textPrompt(text, source, target))}
	answer, err := g.callWithRetry(ctx, parts)
	if err != nil {
		return domain.FlashcardDraft{}, err
	}

	_, translation, description := parseResponse(answer)
	if translation == "" {
		translation = text
	}
	if description == "" {
		description = generation.DefaultDescription(text)
	}

	return domain.FlashcardDraft{
		OriginalText:     text,
		TranslatedText:   translation,
		ImageDescription: description,
	}, nil
}

// AnalyzeImage implements generation.Generator.
func (g *Generator) AnalyzeImage(
	ctx context.Context,
	image []byte,
	target domain.Language,
) (domain.FlashcardDraft, error) {
	if len(image) == 0 {
		return domain.FlashcardDraft{}, generation.ErrEmptyImage
	}

	parts := []*genai.Part{
		genai.NewPartFromText(imagePrompt(target)),
		genai.NewPartFromBytes(image, imageMIMEType(image)),
	}
	answer, err := g.callWithRetry(ctx, parts)
	if err != nil {
		return domain.FlashcardDraft{}, err
	}

	word, translation, description := parseResponse(answer)
	if word == "" {
		word = generation.UnknownWord
	}
	if translation == "" {
		translation = generation.UnknownWord
	}
	if description == "" {
		description = generation.DefaultImageText
	}

	return domain.FlashcardDraft{
		OriginalText:     word,
		TranslatedText:   translation,
		ImageDescription: description,
	}, nil
}

// callWithRetry sends parts as a single user turn, retrying transient
// failures with exponential backoff and jitter. It returns the response text.
func (g *Generator) callWithRetry(ctx context.Context, parts []*genai.Part) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		log.WarnContext(ctx, "Invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		log.WarnContext(ctx, "Invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		log.DebugContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		text, err := g.call(ctx, contents)
		if err == nil {
			log.DebugContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return text, nil
		}

		log.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !errors.Is(err, generation.ErrTransientFailure) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
		if attempt >= maxRetries {
			log.WarnContext(ctx, "Maximum retry attempts reached", "max_retries", maxRetries)
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)", err, maxRetries)
		}

		delay := g.backoff(baseDelaySeconds, attempt)
		log.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay_seconds", delay.Seconds())

		if err := g.sleep(ctx, delay); err != nil {
			log.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", err)
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
	}
}

// call performs one request and classifies its failure. Transport and
// server errors wrap ErrTransientFailure; everything else is permanent.
func (g *Generator) call(ctx context.Context, contents []*genai.Content) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.config.ModelName, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.4),
	})
	switch {
	case err != nil:
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	case resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "":
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: response has no text", generation.ErrInvalidResponse)
	}
	return text, nil
}

// backoff returns baseDelay * 2^attempt * (0.5 + rand(0, 0.5)).
func (g *Generator) backoff(baseDelaySeconds, attempt int) time.Duration {
	g.rngMu.Lock()
	jitterFactor := 0.5 + g.rng.Float64()*0.5
	g.rngMu.Unlock()

	backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
	return time.Duration(backoffSeconds * jitterFactor * float64(time.Second))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// imageMIMEType sniffs the image format, defaulting to JPEG which is what
// the camera produces.
func imageMIMEType(image []byte) string {
	if ct := http.DetectContentType(image); strings.HasPrefix(ct, "image/") {
		return ct
	}
	return "image/jpeg"
}
