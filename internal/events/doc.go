// Package events carries notifications between the creation pipeline and
// whatever displays flashcards, without either side importing the other.
//
// The primary components are:
// - Event: an envelope with a type and a JSON payload
// - Handler: implemented by anything that reacts to events
// - Emitter: implemented by anything that publishes them
package events
