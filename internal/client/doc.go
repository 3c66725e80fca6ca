// Package client is the REST client the CLI uses to reach the flashcard
// API. It implements the creation package's content and persistence
// contracts over HTTP. Every call runs through a circuit breaker so that a
// dead server fails fast instead of stalling each submission.
package client
