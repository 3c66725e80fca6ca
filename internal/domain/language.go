package domain

import (
	"fmt"
	"strings"
)

// Language is one of the two supported flashcard languages.
type Language string

const (
	// English is the default source language.
	English Language = "en"
	// Thai is the default target language.
	Thai Language = "th"
)

// DefaultSource and DefaultTarget mirror the defaults of the creation form.
const (
	DefaultSource = English
	DefaultTarget = Thai
)

// SupportedLanguages lists every accepted language in display order.
var SupportedLanguages = []Language{English, Thai}

// ParseLanguage converts a language code into a Language.
// Codes are matched case-insensitively after trimming.
func ParseLanguage(code string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(code)))
	if err := lang.Validate(); err != nil {
		return "", err
	}
	return lang, nil
}

// Validate returns ErrUnsupportedLanguage unless l is en or th.
func (l Language) Validate() error {
	switch l {
	case English, Thai:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, string(l))
	}
}

// Name returns the English name of the language as used in prompts.
func (l Language) Name() string {
	switch l {
	case English:
		return "English"
	case Thai:
		return "Thai"
	default:
		return string(l)
	}
}

func (l Language) String() string {
	return string(l)
}

// DetectSpeechLanguage returns Thai when text contains any rune from the
// Thai Unicode block and English otherwise.
func DetectSpeechLanguage(text string) Language {
	for _, r := range text {
		if r >= '\u0E00' && r <= '\u0E7F' {
			return Thai
		}
	}
	return English
}
