// Package creation turns one user submission at a time into a persisted
// flashcard.
//
// A submission is typed text, a selected image file, or a photo accepted
// from the camera controller. All three run through one pipeline:
//
//	validate -> Generating -> [Persisting] -> Succeeded | Failed
//
// The text path makes two calls, generation then persistence. The image
// paths make one combined call to the content service, which stores the
// card itself. Only one submission may be in flight; others are rejected
// with ErrBusy. The outcome of the last submission is kept as a single
// State value that the host shell observes through Subscribe.
//
// Input is kept on failure so Retry can resubmit it, and cleared only when
// its modality succeeds.
package creation
