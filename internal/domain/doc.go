// Package domain contains the flashcard entities shared by every layer:
// languages, generated drafts, persisted cards and partial updates.
// It has no dependencies on storage or transport.
package domain
