// Package service contains the flashcard use cases behind the HTTP API.
//
// FlashcardService combines a generation.Generator, a store.FlashcardStore
// and an optional speech.Speaker. Text generation returns an unsaved draft;
// image generation analyzes and stores the card in one call. It also
// implements the creation package's content and persistence contracts, so
// the orchestrator can run in-process.
package service
