package question

import (
	"errors"
	"fmt"
	"strings"

	"wordmastery/internal/lexicon"
	"wordmastery/internal/models"
)

// DefaultChoiceCount is the number of options on a choice question
const DefaultChoiceCount = 4

// Info describes a kind for clients and graders
type Info struct {
	Kind   Kind
	Label  string
	Prompt PromptType
	Typed  bool
	Answer Field
}

// Registry owns the engines and their lookup tables. It is immutable after construction.
type Registry struct {
	engines map[Kind]Engine
	info    map[Kind]Info
}

// NewRegistry builds the registry around an emoji table. A nil table disables emoji questions.
func NewRegistry(emoji *lexicon.EmojiTable) *Registry {
	engines := []Engine{
		enToL1Engine{},
		l1ToENEngine{},
		l1ToENTypedEngine{},
		emojiToENEngine{table: emoji},
		sentenceClozeEngine{},
		audioToENEngine{},
		audioToL1Engine{},
		audioToENTypedEngine{},
		antonymTypedEngine{},
		antonymChoiceEngine{},
	}
	r := &Registry{
		engines: make(map[Kind]Engine, len(engines)),
		info: map[Kind]Info{
			KindENToL1:         {KindENToL1, "English to Korean", PromptWord, false, FieldKorean},
			KindL1ToEN:         {KindL1ToEN, "Korean to English", PromptWord, false, FieldEnglish},
			KindL1ToENTyped:    {KindL1ToENTyped, "Korean to English (typing)", PromptWord, true, FieldEnglish},
			KindEmojiToEN:      {KindEmojiToEN, "Emoji", PromptEmoji, false, FieldEnglish},
			KindSentenceCloze:  {KindSentenceCloze, "Sentence blank", PromptSentence, false, FieldEnglish},
			KindAudioToEN:      {KindAudioToEN, "Listen and pick the word", PromptAudio, false, FieldEnglish},
			KindAudioToL1:      {KindAudioToL1, "Listen and pick the meaning", PromptAudio, false, FieldKorean},
			KindAudioToENTyped: {KindAudioToENTyped, "Dictation", PromptAudio, true, FieldEnglish},
			KindAntonymTyped:   {KindAntonymTyped, "Antonym (typing)", PromptWord, true, FieldEnglish},
			KindAntonymChoice:  {KindAntonymChoice, "Antonym", PromptWord, false, FieldEnglish},
		},
	}
	for _, e := range engines {
		r.engines[e.Kind()] = e
	}
	return r
}

// Engine returns the engine for a canonical kind
func (r *Registry) Engine(k Kind) (Engine, error) {
	e, ok := r.engines[k]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionType, string(k))
	}
	return e, nil
}

// Info returns the metadata for a canonical kind
func (r *Registry) Info(k Kind) (Info, bool) {
	i, ok := r.info[k]
	return i, ok
}

// CanGenerate reports whether kind k can produce a question for w
func (r *Registry) CanGenerate(k Kind, w models.Word) bool {
	e, ok := r.engines[k]
	return ok && e.CanGenerate(w)
}

// CanAny reports whether at least one of kinds can produce a question for w.
// An empty list means every kind is allowed.
func (r *Registry) CanAny(kinds []Kind, w models.Word) bool {
	if len(kinds) == 0 {
		kinds = AllKinds()
	}
	for _, k := range kinds {
		if r.CanGenerate(k, w) {
			return true
		}
	}
	return false
}

// Generate runs one engine. It fails with EngineIncapableError when the engine cannot serve w.
func (r *Registry) Generate(k Kind, w models.Word, pool *Pool, choiceCount int) (Spec, error) {
	e, err := r.Engine(k)
	if err != nil {
		return Spec{}, err
	}
	if !e.CanGenerate(w) {
		return Spec{}, &EngineIncapableError{Kind: k, WordID: w.ID}
	}
	if choiceCount < 2 {
		choiceCount = DefaultChoiceCount
	}
	return e.Generate(w, pool, choiceCount)
}

// GenerateWithFallback tries each kind in order and then DefaultKind. Only
// EngineIncapableError moves on to the next kind; any other error is returned.
func (r *Registry) GenerateWithFallback(kinds []Kind, w models.Word, pool *Pool, choiceCount int) (Spec, error) {
	chain := append(append([]Kind(nil), kinds...), DefaultKind)
	tried := make(map[Kind]bool, len(chain))
	var lastErr error
	for _, k := range chain {
		if tried[k] {
			continue
		}
		tried[k] = true
		spec, err := r.Generate(k, w, pool, choiceCount)
		if err == nil {
			return spec, nil
		}
		if !errors.Is(err, ErrEngineIncapable) {
			return Spec{}, err
		}
		lastErr = err
	}
	return Spec{}, lastErr
}

// CorrectAnswer returns the expected answer for kind k on w without building a question
func (r *Registry) CorrectAnswer(k Kind, w models.Word) (string, error) {
	info, ok := r.info[k]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuestionType, string(k))
	}
	switch {
	case k == KindAntonymTyped || k == KindAntonymChoice:
		if !hasAntonym(w) {
			return "", &EngineIncapableError{Kind: k, WordID: w.ID, Reason: "no antonym"}
		}
		return strings.TrimSpace(w.Antonym), nil
	case info.Answer == FieldKorean:
		return w.KoreanDisplay(), nil
	default:
		return w.English, nil
	}
}
