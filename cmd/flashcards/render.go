package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/phrazzld/lingocards/internal/capture"
	"github.com/phrazzld/lingocards/internal/creation"
	"github.com/phrazzld/lingocards/internal/domain"
)

// renderState prints the orchestrator state as one or two lines.
func renderState(w io.Writer, s creation.State) {
	switch s.Phase {
	case creation.Generating:
		fmt.Fprintf(w, "Generating flashcard from %s...\n", s.Modality)
	case creation.Persisting:
		fmt.Fprintln(w, "Saving flashcard...")
	case creation.Succeeded:
		fmt.Fprintln(w, s.SuccessMessage)
		if s.LastCreated != nil {
			renderCard(w, s.LastCreated)
		}
	case creation.Failed:
		fmt.Fprintf(w, "Error: %s\n", s.ErrorMessage)
	case creation.Idle:
	}
}

// newStateRenderer returns an orchestrator observer that prints each phase
// a submission passes through once. Notifications that leave the phase and
// submission unchanged, such as a target language change, print nothing.
func newStateRenderer(w io.Writer) func(creation.State) {
	var (
		mu          sync.Mutex
		lastPhase   = creation.Idle
		lastAttempt uint64
	)
	return func(s creation.State) {
		mu.Lock()
		defer mu.Unlock()
		if s.Phase == lastPhase && s.Attempt == lastAttempt {
			return
		}
		lastPhase, lastAttempt = s.Phase, s.Attempt
		renderState(w, s)
	}
}

// renderStatus prints the full orchestrator state, including the latest
// camera error.
func renderStatus(w io.Writer, s creation.State) {
	fmt.Fprintf(w, "state: %s, target: %s\n", s.Phase, s.TargetLanguage)
	if s.Phase == creation.Failed {
		fmt.Fprintf(w, "last error: %s\n", s.ErrorMessage)
	}
	if s.CaptureError != "" {
		fmt.Fprintf(w, "camera error: %s\n", s.CaptureError)
	}
	if s.LastCreated != nil {
		fmt.Fprint(w, "last created: ")
		renderCard(w, s.LastCreated)
	}
}

// renderSession prints a capture session snapshot.
func renderSession(w io.Writer, s capture.Session) {
	line := fmt.Sprintf("camera: %s, facing %s", s.Phase, s.Facing)
	if s.DeviceCount > 0 {
		line += fmt.Sprintf(", %d device(s)", s.DeviceCount)
	}
	if s.Phase == capture.Reviewing && !s.StillBounds.Empty() {
		line += fmt.Sprintf(", still %dx%d", s.StillBounds.Dx(), s.StillBounds.Dy())
	}
	fmt.Fprintln(w, line)
}

// renderCard prints one card on a single line, with its description
// indented below when present.
func renderCard(w io.Writer, c *domain.Flashcard) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s = %s", c.ID, c.OriginalText, c.TranslatedText)
	if c.HasImage() {
		b.WriteString("  [image]")
	}
	fmt.Fprintln(w, b.String())
	if c.ImageDescription != "" {
		fmt.Fprintf(w, "    %s\n", c.ImageDescription)
	}
}
