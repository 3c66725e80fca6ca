// Package mocks provides shared test doubles for the application's
// interfaces.
//
// Each mock has a function field per method. When the field is nil the
// mock falls back to its default values, so a test only sets what it
// cares about:
//
//	gen := &mocks.MockGenerator{
//	    GenerateFromTextFn: func(ctx context.Context, text string, source, target domain.Language) (domain.FlashcardDraft, error) {
//	        return domain.FlashcardDraft{OriginalText: text, TranslatedText: "สวัสดี"}, nil
//	    },
//	}
//
// Calls are recorded under a mutex and can be inspected after the fact.
package mocks
