package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyText is returned when the text to translate is blank.
	ErrEmptyText = errors.New("text cannot be empty")
)
