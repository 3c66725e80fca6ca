package creation

import (
	"strings"

	"github.com/phrazzld/lingocards/internal/domain"
)

// submission is a closed union of the three input kinds. The pipeline in
// Orchestrator.run switches on the concrete type.
type submission interface {
	modality() Modality
	// validate returns the user message for invalid input, or "".
	validate() string
}

type textSubmission struct {
	text   string
	source domain.Language
	target domain.Language
}

func (textSubmission) modality() Modality { return ModalityText }

func (s textSubmission) validate() string {
	if strings.TrimSpace(s.text) == "" {
		return msgEmptyText
	}
	if s.source.Validate() != nil || s.target.Validate() != nil {
		return msgLanguage
	}
	return ""
}

type fileSubmission struct {
	file   *ImageFile
	target domain.Language
}

func (fileSubmission) modality() Modality { return ModalityFile }

func (s fileSubmission) validate() string {
	if s.file == nil || len(s.file.Data) == 0 {
		return msgNoFile
	}
	if s.target.Validate() != nil {
		return msgLanguage
	}
	return ""
}

type cameraSubmission struct {
	photo  []byte
	target domain.Language
}

func (cameraSubmission) modality() Modality { return ModalityCamera }

func (s cameraSubmission) validate() string {
	if len(s.photo) == 0 {
		return msgNoPhoto
	}
	if s.target.Validate() != nil {
		return msgLanguage
	}
	return ""
}

// imagePayload returns the payload of an image-shaped submission.
func imagePayload(sub submission) ([]byte, domain.Language, bool) {
	switch s := sub.(type) {
	case fileSubmission:
		return s.file.Data, s.target, true
	case cameraSubmission:
		return s.photo, s.target, true
	default:
		return nil, "", false
	}
}
