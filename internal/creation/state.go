package creation

import (
	"github.com/phrazzld/lingocards/internal/domain"
)

// Phase is the orchestrator state.
type Phase int

const (
	Idle Phase = iota
	Generating
	Persisting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Generating:
		return "generating"
	case Persisting:
		return "persisting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether a submission is in flight.
func (p Phase) Busy() bool {
	return p == Generating || p == Persisting
}

// Modality is the origin of a submission.
type Modality string

const (
	ModalityText   Modality = "text"
	ModalityFile   Modality = "file"
	ModalityCamera Modality = "camera"
)

// Reason classifies a Failed state.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonInvalidInput  Reason = "invalid_input"
	ReasonServiceError  Reason = "service_error"
	ReasonCaptureFailed Reason = "capture_failed"
)

// State is the single value observed by the host shell.
type State struct {
	Phase    Phase
	Modality Modality

	// Reason, ErrorMessage and Err are set only when Phase is Failed.
	Reason       Reason
	ErrorMessage string
	Err          error

	// Attempt numbers the submission that produced Phase. Two outcomes with
	// the same phase are distinct when their Attempt differs.
	Attempt uint64

	// SuccessMessage is set only when Phase is Succeeded.
	SuccessMessage string

	// LastCreated is the card produced by the most recent success.
	LastCreated *domain.Flashcard

	// CaptureError holds the latest standalone camera error. It is
	// independent of Phase.
	CaptureError string

	// TargetLanguage is used by file and camera submissions.
	TargetLanguage domain.Language
}

// ImageFile is a user-selected image.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Input is the transient input of each modality. A field is cleared only
// when a submission of its modality succeeds.
type Input struct {
	Text   string
	Source domain.Language
	Target domain.Language

	File *ImageFile

	// CameraPhoto is the accepted still awaiting a successful submission.
	CameraPhoto []byte
}

func (in *Input) clear(m Modality) {
	switch m {
	case ModalityText:
		in.Text = ""
	case ModalityFile:
		in.File = nil
	case ModalityCamera:
		in.CameraPhoto = nil
	}
}

const (
	msgEmptyText        = "Please enter some text"
	msgNoFile           = "Please select an image file"
	msgNoPhoto          = "Please capture a photo first"
	msgLanguage         = "Please choose English or Thai"
	msgCaptureProcessed = "Failed to process captured image"
)

var failureMessages = map[Modality]string{
	ModalityText:   "Failed to create flashcard. Please try again.",
	ModalityFile:   "Failed to process image. Please try again.",
	ModalityCamera: "Failed to process camera image. Please try again.",
}

var successMessages = map[Modality]string{
	ModalityText:   "Flashcard created successfully!",
	ModalityFile:   "Flashcard created successfully from image!",
	ModalityCamera: "Flashcard created successfully from camera!",
}
