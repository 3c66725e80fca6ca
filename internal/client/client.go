package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingocards/internal/config"
	"github.com/phrazzld/lingocards/internal/creation"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/platform/logger"
	"github.com/sony/gobreaker"
)

// maxResponseBytes bounds response bodies, which may carry images or audio.
const maxResponseBytes = 32 << 20

// uploadFileName is the file name sent with image uploads.
const uploadFileName = "camera-capture.jpg"

// Client talks to the flashcard API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

var (
	_ creation.ContentService     = (*Client)(nil)
	_ creation.PersistenceService = (*Client)(nil)
	_ creation.FileUploader       = (*Client)(nil)
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a Client for cfg.BaseURL. The breaker opens after
// cfg.BreakerFailures consecutive failures and probes again after
// cfg.BreakerTimeoutSeconds.
func New(cfg config.ClientConfig, log *slog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", cfg.BaseURL)
	}
	if log == nil {
		log = slog.Default()
	}

	failures := uint32(max(cfg.BreakerFailures, 1))
	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout()},
		logger:  log.With(slog.String("component", "api_client")),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "flashcards-api",
		MaxRequests: 1,
		Timeout:     time.Duration(max(cfg.BreakerTimeoutSeconds, 1)) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || clientError(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GenerateFromText implements creation.ContentService.
func (c *Client) GenerateFromText(
	ctx context.Context,
	text string,
	source, target domain.Language,
) (domain.FlashcardDraft, error) {
	body, err := json.Marshal(map[string]string{
		"text":            text,
		"source_language": source.String(),
		"target_language": target.String(),
	})
	if err != nil {
		return domain.FlashcardDraft{}, err
	}

	var draft domain.FlashcardDraft
	if err := c.doJSON(ctx, http.MethodPost, "/generate-flashcard/", nil, jsonBody(body), &draft); err != nil {
		return domain.FlashcardDraft{}, err
	}
	return draft, nil
}

// GenerateAndPersistFromImage implements creation.ContentService. The image
// is uploaded as a multipart file named camera-capture.jpg.
func (c *Client) GenerateAndPersistFromImage(
	ctx context.Context,
	image []byte,
	target domain.Language,
) (*domain.Flashcard, error) {
	return c.GenerateAndPersistFromFile(ctx, creation.ImageFile{Data: image}, target)
}

// GenerateAndPersistFromFile implements creation.FileUploader. A blank name
// or media type falls back to the camera file name and the sniffed type.
func (c *Client) GenerateAndPersistFromFile(
	ctx context.Context,
	file creation.ImageFile,
	target domain.Language,
) (*domain.Flashcard, error) {
	name := path.Base(strings.ReplaceAll(file.Name, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = uploadFileName
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(file.Data)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	query := url.Values{"target_language": {target.String()}}
	payload := requestBody{data: buf.Bytes(), contentType: mw.FormDataContentType()}

	var card domain.Flashcard
	if err := c.doJSON(ctx, http.MethodPost, "/generate-flashcard-from-image/", query, payload, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// Create implements creation.PersistenceService.
func (c *Client) Create(ctx context.Context, draft domain.FlashcardDraft) (*domain.Flashcard, error) {
	body, err := json.Marshal(map[string]string{
		"original_text":     draft.OriginalText,
		"translated_text":   draft.TranslatedText,
		"image_description": draft.ImageDescription,
	})
	if err != nil {
		return nil, err
	}

	var card domain.Flashcard
	if err := c.doJSON(ctx, http.MethodPost, "/flashcards/", nil, jsonBody(body), &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// Get returns one card.
func (c *Client) Get(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	var card domain.Flashcard
	if err := c.doJSON(ctx, http.MethodGet, "/flashcards/"+id.String(), nil, requestBody{}, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// List returns every card, newest first.
func (c *Client) List(ctx context.Context) ([]*domain.Flashcard, error) {
	var cards []*domain.Flashcard
	if err := c.doJSON(ctx, http.MethodGet, "/flashcards/", nil, requestBody{}, &cards); err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []*domain.Flashcard{}
	}
	return cards, nil
}

// Delete removes a card.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, "/flashcards/"+id.String(), nil, requestBody{}, nil)
}

// Speech returns MP3 pronunciation audio for text.
func (c *Client) Speech(ctx context.Context, text string) ([]byte, error) {
	query := url.Values{"text": {text}}
	return c.do(ctx, http.MethodGet, "/tts/", query, requestBody{})
}

type requestBody struct {
	data        []byte
	contentType string
}

func jsonBody(data []byte) requestBody {
	return requestBody{data: data, contentType: "application/json"}
}

func (c *Client) doJSON(
	ctx context.Context,
	method, path string,
	query url.Values,
	body requestBody,
	out any,
) error {
	data, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// do sends one request through the breaker and returns the response body.
func (c *Client) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	body requestBody,
) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.send(ctx, method, path, query, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Warn("request rejected by circuit breaker",
				slog.String("method", method),
				slog.String("path", path))
			return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
		}
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) send(
	ctx context.Context,
	method, path string,
	query url.Values,
	body requestBody,
) ([]byte, error) {
	u := c.baseURL.JoinPath(path)
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body.data != nil {
		reader = bytes.NewReader(body.data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	if body.contentType != "" {
		req.Header.Set("Content-Type", body.contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	c.logger.Debug("api request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp, data)
	}
	return data, nil
}

func decodeAPIError(resp *http.Response, data []byte) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, TraceID: resp.Header.Get("X-Trace-ID")}

	var body struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		TraceID string `json:"trace_id"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Detail
		}
		if body.TraceID != "" {
			apiErr.TraceID = body.TraceID
		}
	}
	return apiErr
}
