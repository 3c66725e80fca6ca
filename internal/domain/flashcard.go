package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Flashcard-specific validation errors
var (
	// ErrFlashcardIDEmpty is returned when a flashcard ID is nil.
	ErrFlashcardIDEmpty = errors.New("flashcard ID cannot be empty")

	// ErrOriginalTextEmpty is returned when the source-language text is blank.
	ErrOriginalTextEmpty = errors.New("original text cannot be empty")

	// ErrTranslatedTextEmpty is returned when the target-language text is blank.
	ErrTranslatedTextEmpty = errors.New("translated text cannot be empty")
)

// FlashcardDraft is generated content that has not been persisted yet.
// It has no identity of its own.
type FlashcardDraft struct {
	OriginalText     string `json:"original_text"`
	TranslatedText   string `json:"translated_text"`
	ImageDescription string `json:"image_description,omitempty"`
}

// Validate checks that both texts are present.
func (d FlashcardDraft) Validate() error {
	if strings.TrimSpace(d.OriginalText) == "" {
		return NewValidationError("original_text", "is required", ErrOriginalTextEmpty)
	}
	if strings.TrimSpace(d.TranslatedText) == "" {
		return NewValidationError("translated_text", "is required", ErrTranslatedTextEmpty)
	}
	return nil
}

// Flashcard is a persisted bilingual card. Image holds raw bytes and is
// base64 encoded on the wire by encoding/json.
type Flashcard struct {
	ID               uuid.UUID `json:"id"`
	OriginalText     string    `json:"original_text"`
	TranslatedText   string    `json:"translated_text"`
	ImageDescription string    `json:"image_description,omitempty"`
	Image            []byte    `json:"image,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewFlashcard assigns a new ID to the draft content and validates the result.
// image may be nil for text-derived cards.
func NewFlashcard(draft FlashcardDraft, image []byte) (*Flashcard, error) {
	card := &Flashcard{
		ID:               uuid.New(),
		OriginalText:     draft.OriginalText,
		TranslatedText:   draft.TranslatedText,
		ImageDescription: draft.ImageDescription,
		Image:            image,
		CreatedAt:        time.Now().UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
func (c *Flashcard) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrFlashcardIDEmpty)
	}
	return c.Draft().Validate()
}

// Draft returns the text content of the card.
func (c *Flashcard) Draft() FlashcardDraft {
	return FlashcardDraft{
		OriginalText:     c.OriginalText,
		TranslatedText:   c.TranslatedText,
		ImageDescription: c.ImageDescription,
	}
}

// HasImage reports whether the card was derived from an image.
func (c *Flashcard) HasImage() bool {
	return len(c.Image) > 0
}

// FlashcardUpdate is a partial update. Nil fields are left unchanged.
type FlashcardUpdate struct {
	OriginalText     *string `json:"original_text,omitempty"`
	TranslatedText   *string `json:"translated_text,omitempty"`
	ImageDescription *string `json:"image_description,omitempty"`
	Image            []byte  `json:"image,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u FlashcardUpdate) IsEmpty() bool {
	return u.OriginalText == nil && u.TranslatedText == nil &&
		u.ImageDescription == nil && u.Image == nil
}

// Apply copies the set fields onto card and revalidates it.
// The card is left untouched when the result would be invalid.
func (u FlashcardUpdate) Apply(card *Flashcard) error {
	next := *card
	if u.OriginalText != nil {
		next.OriginalText = *u.OriginalText
	}
	if u.TranslatedText != nil {
		next.TranslatedText = *u.TranslatedText
	}
	if u.ImageDescription != nil {
		next.ImageDescription = *u.ImageDescription
	}
	if u.Image != nil {
		next.Image = u.Image
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*card = next
	return nil
}
