// Package gemini implements generation.Generator with Google's Gemini API.
//
// Text requests send a translation prompt; image requests send an analysis
// prompt together with the image bytes. Both ask the model for a
// line-oriented answer ("Word:", "Translation:", "Description:") which is
// parsed into a domain.FlashcardDraft.
//
// API failures are retried with exponential backoff and jitter. Responses
// blocked by safety filters and responses without usable text are permanent
// errors and are returned immediately.
package gemini
