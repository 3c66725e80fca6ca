package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/lingocards/internal/domain"
)

// getPathUUID extracts a UUID from the URL path parameters.
// It parses and validates the UUID, handling common error cases.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// languageOrDefault parses code, returning def when code is blank.
func languageOrDefault(code string, def domain.Language, field string) (domain.Language, error) {
	if strings.TrimSpace(code) == "" {
		return def, nil
	}
	lang, err := domain.ParseLanguage(code)
	if err != nil {
		return "", domain.NewValidationError(field, "must be en or th", err)
	}
	return lang, nil
}
