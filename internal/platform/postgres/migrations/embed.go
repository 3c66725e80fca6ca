// Package migrations contains the embedded goose migrations for the
// PostgreSQL flashcard store.
package migrations

import "embed"

// FS holds every *.sql migration in version order.
//
//go:embed *.sql
var FS embed.FS
