package question

import (
	"strings"
	"unicode/utf8"
)

// PromptType tells the client how to render a prompt
type PromptType string

const (
	PromptWord     PromptType = "word"
	PromptEmoji    PromptType = "emoji"
	PromptSentence PromptType = "sentence"
	PromptAudio    PromptType = "audio"
)

// Prompt is what the student is shown or played
type Prompt struct {
	Type        PromptType `json:"type"`
	Text        string     `json:"text"`
	Translation string     `json:"translation,omitempty"`
	AudioText   string     `json:"audio_text,omitempty"` // text handed to speech synthesis
}

// Spec is one generated question. Choices is nil for typed questions.
type Spec struct {
	ID      string   `json:"id"`
	Kind    Kind     `json:"kind"`
	WordID  int64    `json:"word_id"`
	Prompt  Prompt   `json:"prompt"`
	Choices []string `json:"choices,omitempty"`
	Answer  string   `json:"answer"`
	Hint    string   `json:"hint,omitempty"`
}

// IsTyped reports whether the question expects free-text input
func (s Spec) IsTyped() bool {
	return s.Choices == nil
}

// TypedHint shows the first letter of each token and masks the rest
func TypedHint(answer string) string {
	tokens := strings.Fields(answer)
	for i, tok := range tokens {
		r, size := utf8.DecodeRuneInString(tok)
		tokens[i] = string(r) + strings.Repeat("_", utf8.RuneCountInString(tok[size:]))
	}
	return strings.Join(tokens, " ")
}
