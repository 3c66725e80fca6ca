package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	// TypeFlashcardCreated is emitted after a submission produced a persisted card.
	TypeFlashcardCreated = "flashcard.created"
	// TypeFlashcardDeleted is emitted after the list view deleted a card.
	TypeFlashcardDeleted = "flashcard.deleted"
)

// Event is a notification published to registered handlers.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the specified type and payload.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// FlashcardCreated is the payload of TypeFlashcardCreated.
type FlashcardCreated struct {
	CardID       uuid.UUID `json:"card_id"`
	Modality     string    `json:"modality"`
	OriginalText string    `json:"original_text"`
}

// FlashcardDeleted is the payload of TypeFlashcardDeleted.
type FlashcardDeleted struct {
	CardID uuid.UUID `json:"card_id"`
}

// NewFlashcardCreated builds a TypeFlashcardCreated event.
func NewFlashcardCreated(cardID uuid.UUID, modality, originalText string) (*Event, error) {
	return NewEvent(TypeFlashcardCreated, FlashcardCreated{
		CardID:       cardID,
		Modality:     modality,
		OriginalText: originalText,
	})
}

// NewFlashcardDeleted builds a TypeFlashcardDeleted event.
func NewFlashcardDeleted(cardID uuid.UUID) (*Event, error) {
	return NewEvent(TypeFlashcardDeleted, FlashcardDeleted{CardID: cardID})
}

// Handler processes events.
type Handler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Emitter publishes events without knowing who handles them.
type Emitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
