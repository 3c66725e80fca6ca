// Package generation defines the boundary to the AI model that produces
// flashcard content. Implementations live under internal/platform; the
// service layer depends only on the Generator interface.
package generation
