package gemini

import (
	"fmt"
	"strings"

	"github.com/phrazzld/lingocards/internal/domain"
)

// Response line labels.
const (
	labelWord        = "Word:"
	labelTranslation = "Translation:"
	labelDescription = "Description:"
)

func textPrompt(text string, source, target domain.Language) string {
	return fmt.Sprintf(`
You are a language learning assistant. Given a word or phrase in %s, provide:
1. The translation in %s
2. A brief description of the word/phrase that would help create a visual representation

Input: "%s"

Please respond in the following format:
Translation: [translation here]
Description: [brief visual description here]
`, source.Name(), target.Name(), text)
}

func imagePrompt(target domain.Language) string {
	return fmt.Sprintf(`
Analyze this image and provide:
1. A single word or short phrase in English that best describes the main subject or object in the image
2. The translation of that word/phrase in %[1]s
3. A brief description of what you see in the image

Please respond in the following format:
Word: [English word/phrase]
Translation: [translation in %[1]s]
Description: [brief description of the image]
`, target.Name())
}

// parseResponse reads the labelled lines of a model answer. Unlabelled lines
// are ignored and a repeated label keeps the last value. Missing fields are
// returned empty; the caller decides the fallbacks.
func parseResponse(text string) (word, translation, description string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "*-"))
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		switch {
		case strings.HasPrefix(line, labelWord):
			word = strings.TrimSpace(strings.TrimPrefix(line, labelWord))
		case strings.HasPrefix(line, labelTranslation):
			translation = strings.TrimSpace(strings.TrimPrefix(line, labelTranslation))
		case strings.HasPrefix(line, labelDescription):
			description = strings.TrimSpace(strings.TrimPrefix(line, labelDescription))
		}
	}
	return word, translation, description
}
