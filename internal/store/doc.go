// Package store defines the flashcard persistence boundary. Implementations
// live in internal/platform/postgres and internal/platform/memory.
package store
