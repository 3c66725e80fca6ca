package creation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/lingocards/internal/capture"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/events"
)

// Orchestrator runs one submission at a time through generate then persist
// and exposes the outcome as a single State.
type Orchestrator struct {
	content     ContentService
	persistence PersistenceService
	emitter     events.Emitter
	logger      *slog.Logger

	mu        sync.Mutex
	state     State
	input     Input
	inFlight  bool
	attempt   uint64
	observers []func(State)
}

var _ events.Handler = (*Orchestrator)(nil)

// New creates an Idle orchestrator targeting Thai. emitter may be nil.
func New(
	content ContentService,
	persistence PersistenceService,
	emitter events.Emitter,
	logger *slog.Logger,
) (*Orchestrator, error) {
	if content == nil {
		return nil, ErrNilContentService
	}
	if persistence == nil {
		return nil, ErrNilPersistenceService
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		content:     content,
		persistence: persistence,
		emitter:     emitter,
		logger:      logger.With("component", "creation_orchestrator"),
		state:       State{Phase: Idle, TargetLanguage: domain.DefaultTarget},
		input:       Input{Source: domain.DefaultSource, Target: domain.DefaultTarget},
	}, nil
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Input returns the preserved transient input. The byte slices are shared
// and must not be modified.
func (o *Orchestrator) Input() Input {
	o.mu.Lock()
	defer o.mu.Unlock()
	in := o.input
	if in.File != nil {
		f := *in.File
		in.File = &f
	}
	return in
}

// Subscribe registers fn to receive every state change. fn is called
// outside the lock and must not block.
func (o *Orchestrator) Subscribe(fn func(State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// SetTargetLanguage changes the language used by file and camera submissions.
func (o *Orchestrator) SetTargetLanguage(lang domain.Language) error {
	if err := lang.Validate(); err != nil {
		return err
	}
	o.mu.Lock()
	o.state.TargetLanguage = lang
	o.mu.Unlock()
	o.notify()
	return nil
}

// SubmitText generates a draft for text and persists it.
func (o *Orchestrator) SubmitText(ctx context.Context, text string, source, target domain.Language) error {
	return o.submit(ctx, func(in *Input, _ domain.Language) submission {
		in.Text, in.Source, in.Target = text, source, target
		return textSubmission{text: strings.TrimSpace(text), source: source, target: target}
	})
}

// SubmitFile creates a card from a selected image file.
func (o *Orchestrator) SubmitFile(ctx context.Context, file ImageFile) error {
	return o.submit(ctx, func(in *Input, target domain.Language) submission {
		f := file
		in.File = &f
		return fileSubmission{file: &f, target: target}
	})
}

// SubmitCameraPhoto creates a card from an already accepted photo.
func (o *Orchestrator) SubmitCameraPhoto(ctx context.Context, photo []byte) error {
	return o.submit(ctx, func(in *Input, target domain.Language) submission {
		in.CameraPhoto = photo
		return cameraSubmission{photo: photo, target: target}
	})
}

// SubmitCapture accepts the still held by acc and submits it. An accept
// failure is reported as Failed with ReasonCaptureFailed.
func (o *Orchestrator) SubmitCapture(ctx context.Context, acc Acceptor) error {
	if !o.acquire() {
		return ErrBusy
	}

	photo, err := acc.Accept()
	if err != nil {
		o.logger.WarnContext(ctx, "accepting captured photo failed", "error", err)
		o.finish(State{
			Phase:        Failed,
			Modality:     ModalityCamera,
			Reason:       ReasonCaptureFailed,
			ErrorMessage: msgCaptureProcessed,
			Err:          err,
		}, nil)
		return fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	o.mu.Lock()
	o.input.CameraPhoto = photo.Data
	sub := cameraSubmission{photo: photo.Data, target: o.state.TargetLanguage}
	o.mu.Unlock()

	return o.run(ctx, sub)
}

// Retry resubmits the preserved input of the last failed submission. A
// failed accept has no input to resend; the host must accept again.
func (o *Orchestrator) Retry(ctx context.Context) error {
	o.mu.Lock()
	if o.state.Phase != Failed || o.inFlight || o.state.Reason == ReasonCaptureFailed {
		o.mu.Unlock()
		return ErrNothingToRetry
	}
	modality := o.state.Modality
	in := o.input
	target := o.state.TargetLanguage
	o.mu.Unlock()

	switch modality {
	case ModalityText:
		return o.SubmitText(ctx, in.Text, in.Source, in.Target)
	case ModalityFile:
		if in.File == nil {
			return o.submit(ctx, func(*Input, domain.Language) submission {
				return fileSubmission{target: target}
			})
		}
		return o.SubmitFile(ctx, *in.File)
	default:
		return o.SubmitCameraPhoto(ctx, in.CameraPhoto)
	}
}

// ReportCaptureError records a camera error raised outside a submission.
// It never changes Phase.
func (o *Orchestrator) ReportCaptureError(err error) {
	if err == nil {
		return
	}
	o.mu.Lock()
	o.state.CaptureError = capture.Message(err)
	o.mu.Unlock()
	o.notify()
}

// Dismiss returns a finished submission to Idle, clearing its messages.
// LastCreated is kept.
func (o *Orchestrator) Dismiss() {
	o.mu.Lock()
	if o.inFlight || o.state.Phase.Busy() {
		o.mu.Unlock()
		return
	}
	o.state = State{
		Phase:          Idle,
		LastCreated:    o.state.LastCreated,
		TargetLanguage: o.state.TargetLanguage,
	}
	o.mu.Unlock()
	o.notify()
}

// Forget drops LastCreated if it refers to id, so no stale reference is
// kept once a card is deleted elsewhere.
func (o *Orchestrator) Forget(id uuid.UUID) {
	o.mu.Lock()
	if o.state.LastCreated == nil || o.state.LastCreated.ID != id {
		o.mu.Unlock()
		return
	}
	o.state.LastCreated = nil
	o.mu.Unlock()
	o.notify()
}

// HandleEvent implements events.Handler. Deletions clear LastCreated.
func (o *Orchestrator) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeFlashcardDeleted {
		return nil
	}
	var payload events.FlashcardDeleted
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	o.Forget(payload.CardID)
	return nil
}

// submit records the input under the lock and runs the resulting submission.
func (o *Orchestrator) submit(ctx context.Context, build func(in *Input, target domain.Language) submission) error {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return ErrBusy
	}
	o.inFlight = true
	o.attempt++
	sub := build(&o.input, o.state.TargetLanguage)
	o.mu.Unlock()

	return o.run(ctx, sub)
}

// acquire claims the single in-flight slot.
func (o *Orchestrator) acquire() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return false
	}
	o.inFlight = true
	o.attempt++
	return true
}

// run is the only pipeline. The caller must hold the in-flight slot; run
// always releases it.
func (o *Orchestrator) run(ctx context.Context, sub submission) error {
	modality := sub.modality()
	log := o.logger.With("modality", string(modality))

	if msg := sub.validate(); msg != "" {
		log.DebugContext(ctx, "submission rejected", "reason", msg)
		err := fmt.Errorf("%w: %s", ErrInvalidInput, msg)
		o.finish(State{
			Phase:        Failed,
			Modality:     modality,
			Reason:       ReasonInvalidInput,
			ErrorMessage: msg,
			Err:          err,
		}, nil)
		return err
	}

	o.transition(Generating, modality)

	var (
		card *domain.Flashcard
		err  error
	)
	switch s := sub.(type) {
	case textSubmission:
		card, err = o.runText(ctx, s)
	default:
		card, err = o.runImage(ctx, sub)
		if err == nil && card == nil {
			err = errors.New("empty response from content service")
		}
	}

	if err != nil {
		log.ErrorContext(ctx, "submission failed", "error", err)
		o.finish(State{
			Phase:        Failed,
			Modality:     modality,
			Reason:       ReasonServiceError,
			ErrorMessage: fmt.Sprintf("%s (%v)", failureMessages[modality], err),
			Err:          err,
		}, nil)
		return fmt.Errorf("%w: %w", ErrServiceError, err)
	}

	log.InfoContext(ctx, "flashcard created", "card_id", card.ID.String())
	o.finish(State{
		Phase:          Succeeded,
		Modality:       modality,
		SuccessMessage: successMessages[modality],
		LastCreated:    card,
	}, &modality)

	o.emitCreated(ctx, card, modality)
	return nil
}

// runImage sends the payload in one combined call. Selected files keep their
// name and media type when the content service can carry them.
func (o *Orchestrator) runImage(ctx context.Context, sub submission) (*domain.Flashcard, error) {
	if fs, ok := sub.(fileSubmission); ok {
		if up, ok := o.content.(FileUploader); ok {
			return up.GenerateAndPersistFromFile(ctx, *fs.file, fs.target)
		}
	}
	data, target, _ := imagePayload(sub)
	return o.content.GenerateAndPersistFromImage(ctx, data, target)
}

// runText performs the two sequential calls of the text path.
func (o *Orchestrator) runText(ctx context.Context, s textSubmission) (*domain.Flashcard, error) {
	draft, err := o.content.GenerateFromText(ctx, s.text, s.source, s.target)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	o.transition(Persisting, ModalityText)

	card, err := o.persistence.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	if card == nil {
		return nil, errors.New("persist: empty response from persistence service")
	}
	return card, nil
}

func (o *Orchestrator) transition(phase Phase, modality Modality) {
	o.mu.Lock()
	o.state.Phase = phase
	o.state.Modality = modality
	o.state.Reason = ReasonNone
	o.state.ErrorMessage = ""
	o.state.Err = nil
	o.state.SuccessMessage = ""
	o.state.Attempt = o.attempt
	if modality == ModalityCamera {
		o.state.CaptureError = ""
	}
	o.mu.Unlock()
	o.notify()
}

// finish publishes the outcome and releases the in-flight slot. A nil
// LastCreated in next keeps the previous one. cleared names the modality
// whose input is discarded.
func (o *Orchestrator) finish(next State, cleared *Modality) {
	o.mu.Lock()
	if next.LastCreated == nil {
		next.LastCreated = o.state.LastCreated
	}
	next.TargetLanguage = o.state.TargetLanguage
	next.CaptureError = o.state.CaptureError
	next.Attempt = o.attempt
	o.state = next
	if cleared != nil {
		o.input.clear(*cleared)
	}
	o.inFlight = false
	o.mu.Unlock()
	o.notify()
}

func (o *Orchestrator) emitCreated(ctx context.Context, card *domain.Flashcard, modality Modality) {
	if o.emitter == nil {
		return
	}
	event, err := events.NewFlashcardCreated(card.ID, string(modality), card.OriginalText)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to build creation event", "error", err)
		return
	}
	if err := o.emitter.EmitEvent(ctx, event); err != nil {
		o.logger.WarnContext(ctx, "creation event handler failed",
			"error", err,
			"card_id", card.ID.String())
	}
}

func (o *Orchestrator) notify() {
	o.mu.Lock()
	snapshot := o.state
	observers := make([]func(State), len(o.observers))
	copy(observers, o.observers)
	o.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}
