package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		code    string
		want    Language
		wantErr bool
	}{
		{name: "english", code: "en", want: English},
		{name: "thai", code: "th", want: Thai},
		{name: "mixed case and spaces", code: " TH ", want: Thai},
		{name: "unsupported", code: "fr", wantErr: true},
		{name: "empty", code: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLanguage(tc.code)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnsupportedLanguage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLanguageName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "English", English.Name())
	assert.Equal(t, "Thai", Thai.Name())
	assert.Equal(t, "xx", Language("xx").Name())
}

func TestDetectSpeechLanguage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Thai, DetectSpeechLanguage("สวัสดี"))
	assert.Equal(t, Thai, DetectSpeechLanguage("hello แมว"))
	assert.Equal(t, English, DetectSpeechLanguage("hello"))
	assert.Equal(t, English, DetectSpeechLanguage(""))
}
