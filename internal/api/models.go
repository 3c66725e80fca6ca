package api

import "github.com/phrazzld/lingocards/internal/domain"

// APIVersion is reported by the root endpoint.
const APIVersion = "1.0.0"

// RootResponse is the body of GET /.
type RootResponse struct {
	Message  string `json:"message"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// GenerateFlashcardRequest is the body of POST /generate-flashcard/.
// Missing languages default to en and th.
type GenerateFlashcardRequest struct {
	Text           string `json:"text"            validate:"required,max=500"`
	SourceLanguage string `json:"source_language" validate:"omitempty,oneof=en th"`
	TargetLanguage string `json:"target_language" validate:"omitempty,oneof=en th"`
}

// CreateFlashcardRequest is the body of POST /flashcards/. Image is base64
// on the wire and may be empty.
type CreateFlashcardRequest struct {
	OriginalText     string `json:"original_text"     validate:"required"`
	TranslatedText   string `json:"translated_text"   validate:"required"`
	ImageDescription string `json:"image_description"`
	Image            []byte `json:"image"`
}

// Draft returns the text fields as a draft.
func (r CreateFlashcardRequest) Draft() domain.FlashcardDraft {
	return domain.FlashcardDraft{
		OriginalText:     r.OriginalText,
		TranslatedText:   r.TranslatedText,
		ImageDescription: r.ImageDescription,
	}
}

// UpdateFlashcardRequest is the body of PUT /flashcards/{id}. Only the
// fields present are changed.
type UpdateFlashcardRequest struct {
	OriginalText     *string `json:"original_text"`
	TranslatedText   *string `json:"translated_text"`
	ImageDescription *string `json:"image_description"`
	Image            []byte  `json:"image"`
}

// Update converts the request into a domain update.
func (r UpdateFlashcardRequest) Update() domain.FlashcardUpdate {
	return domain.FlashcardUpdate{
		OriginalText:     r.OriginalText,
		TranslatedText:   r.TranslatedText,
		ImageDescription: r.ImageDescription,
		Image:            r.Image,
	}
}
