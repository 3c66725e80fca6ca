// Package api serves the flashcard HTTP API. It decodes and validates
// requests, calls the flashcard service and maps its errors to status codes
// and safe messages. Routes are registered by NewRouter.
package api
