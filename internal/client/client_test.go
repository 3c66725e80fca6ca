package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/lingocards/internal/config"
	"github.com/phrazzld/lingocards/internal/creation"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")

func newTestClient(t *testing.T, handler http.HandlerFunc, failures int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(config.ClientConfig{
		BaseURL:               srv.URL + "/",
		TimeoutSeconds:        5,
		BreakerFailures:       failures,
		BreakerTimeoutSeconds: 60,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(config.ClientConfig{BaseURL: "ftp://example.com"}, nil)
	assert.Error(t, err)

	_, err = New(config.ClientConfig{BaseURL: "://bad"}, nil)
	assert.Error(t, err)

	c, err := New(config.ClientConfig{BaseURL: "http://localhost:8000"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost:8000", c.baseURL.Host)
}

func TestGenerateFromText(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate-flashcard/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, map[string]string{"text": "hello", "source_language": "en", "target_language": "th"}, req)

		writeJSON(w, http.StatusOK, domain.FlashcardDraft{
			OriginalText:     "hello",
			TranslatedText:   "สวัสดี",
			ImageDescription: "A wave",
		})
	}, 3)

	draft, err := c.GenerateFromText(context.Background(), "hello", domain.English, domain.Thai)
	require.NoError(t, err)
	assert.Equal(t, "สวัสดี", draft.TranslatedText)
	assert.Equal(t, "A wave", draft.ImageDescription)
}

func TestGenerateAndPersistFromImage(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate-flashcard-from-image/", r.URL.Path)
		assert.Equal(t, "th", r.URL.Query().Get("target_language"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, jpegBytes, data)
		assert.Equal(t, "camera-capture.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))

		writeJSON(w, http.StatusOK, domain.Flashcard{ID: id, OriginalText: "cup", TranslatedText: "ถ้วย", Image: data})
	}, 3)

	card, err := c.GenerateAndPersistFromImage(context.Background(), jpegBytes, domain.Thai)
	require.NoError(t, err)
	assert.Equal(t, id, card.ID)
	assert.Equal(t, jpegBytes, card.Image)
}

func TestGenerateAndPersistFromFile(t *testing.T) {
	t.Parallel()

	pngBytes := []byte("\x89PNG\r\n\x1a\n")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate-flashcard-from-image/", r.URL.Path)
		assert.Equal(t, "en", r.URL.Query().Get("target_language"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, data)
		assert.Equal(t, "cat.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		writeJSON(w, http.StatusOK, domain.Flashcard{ID: uuid.New(), OriginalText: "แมว", TranslatedText: "cat"})
	}, 3)

	card, err := c.GenerateAndPersistFromFile(context.Background(), creation.ImageFile{
		Name:        "photos/cat.png",
		ContentType: "image/png",
		Data:        pngBytes,
	}, domain.English)
	require.NoError(t, err)
	assert.Equal(t, "cat", card.TranslatedText)
}

func TestCreate(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/flashcards/", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cat", req["original_text"])
		assert.Equal(t, "แมว", req["translated_text"])

		writeJSON(w, http.StatusOK, domain.Flashcard{ID: uuid.New(), OriginalText: "cat", TranslatedText: "แมว"})
	}, 3)

	card, err := c.Create(context.Background(), domain.FlashcardDraft{OriginalText: "cat", TranslatedText: "แมว"})
	require.NoError(t, err)
	assert.Equal(t, "cat", card.OriginalText)
}

func TestListGetDelete(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/flashcards/":
			writeJSON(w, http.StatusOK, []domain.Flashcard{{ID: id, OriginalText: "a", TranslatedText: "b"}})
		case r.Method == http.MethodGet && r.URL.Path == "/flashcards/"+id.String():
			writeJSON(w, http.StatusOK, domain.Flashcard{ID: id, OriginalText: "a", TranslatedText: "b"})
		case r.Method == http.MethodDelete && r.URL.Path == "/flashcards/"+id.String():
			writeJSON(w, http.StatusOK, map[string]string{"message": "Flashcard deleted successfully"})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Flashcard not found", "trace_id": "t-1"})
		}
	}, 3)
	ctx := context.Background()

	cards, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, id, cards[0].ID)

	card, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a", card.OriginalText)

	require.NoError(t, c.Delete(ctx, id))

	err = c.Delete(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Flashcard not found", apiErr.Message)
	assert.Equal(t, "t-1", apiErr.TraceID)
	assert.Equal(t, "api error 404: Flashcard not found", apiErr.Error())
}

func TestListEmpty(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, nil)
	}, 3)

	cards, err := c.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

func TestSpeech(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tts/", r.URL.Path)
		assert.Equal(t, "สวัสดี", r.URL.Query().Get("text"))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3audio"))
	}, 3)

	audio, err := c.Speech(context.Background(), "สวัสดี")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3audio"), audio)
}

func TestAPIErrorWithoutBody(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, 5)

	_, err := c.List(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "api error 502: Bad Gateway", apiErr.Error())
}

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	t.Run("opens after consecutive server errors", func(t *testing.T) {
		t.Parallel()
		var hits atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error retrieving flashcards"})
		}, 2)
		ctx := context.Background()

		for range 2 {
			_, err := c.List(ctx)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
		}

		_, err := c.List(ctx)
		assert.ErrorIs(t, err, ErrServiceUnavailable)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("client errors do not trip", func(t *testing.T) {
		t.Parallel()
		var hits atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid text: required field"})
		}, 1)

		for range 3 {
			_, err := c.GenerateFromText(context.Background(), "", domain.English, domain.Thai)
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrServiceUnavailable))
		}
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("connection failures trip", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := New(config.ClientConfig{
			BaseURL:               url,
			TimeoutSeconds:        1,
			BreakerFailures:       1,
			BreakerTimeoutSeconds: 60,
		}, nil)
		require.NoError(t, err)

		_, err = c.List(context.Background())
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrServiceUnavailable))

		_, err = c.List(context.Background())
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})
}
