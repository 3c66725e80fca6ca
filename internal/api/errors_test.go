package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/lingocards/internal/api/shared"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/generation"
	"github.com/phrazzld/lingocards/internal/service"
	"github.com/phrazzld/lingocards/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", store.ErrFlashcardNotFound, http.StatusNotFound},
		{"wrapped not found", service.NewFlashcardServiceError("get", "flashcard not found", store.ErrFlashcardNotFound), http.StatusNotFound},
		{"duplicate", store.NewStoreError("flashcard", "create", "id already exists", store.ErrDuplicate), http.StatusConflict},
		{"validation", domain.NewValidationError("text", "is required", domain.ErrEmptyContent), http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"invalid image", service.ErrInvalidImage, http.StatusBadRequest},
		{"nothing to update", service.ErrNothingToUpdate, http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"empty image", generation.ErrEmptyImage, http.StatusBadRequest},
		{"blocked", fmt.Errorf("%w: safety", generation.ErrContentBlocked), http.StatusUnprocessableEntity},
		{"speech unavailable", service.ErrSpeechUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"transient", generation.ErrTransientFailure, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"not found", store.ErrFlashcardNotFound, "Flashcard not found"},
		{"validation", domain.NewValidationError("source_language", "must be en or th", domain.ErrUnsupportedLanguage), "Invalid source_language: must be en or th"},
		{"nothing to update", service.ErrNothingToUpdate, "No fields to update"},
		{"speech", service.ErrSpeechUnavailable, "Text-to-speech is not available"},
		{"internal details hidden", errors.New("dial tcp 10.0.0.5:5432: connection refused"), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := shared.ValidateRequest(GenerateFlashcardRequest{Text: "hi", SourceLanguage: "xx"})
	assert.Equal(t, "Invalid source_language: must be en or th", SanitizeValidationError(err))

	err = shared.ValidateRequest(CreateFlashcardRequest{TranslatedText: "x"})
	assert.Equal(t, "Invalid original_text: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("Key: 'X' Error: secret")))
}

func TestJSONFieldName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "text", jsonFieldName("Text"))
	assert.Equal(t, "image_description", jsonFieldName("ImageDescription"))
	assert.Equal(t, "target_language", jsonFieldName("TargetLanguage"))
}
