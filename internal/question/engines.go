package question

import (
	"strings"

	"github.com/google/uuid"

	"wordmastery/internal/lexicon"
	"wordmastery/internal/models"
)

// Engine produces questions of one kind
type Engine interface {
	Kind() Kind
	CanGenerate(w models.Word) bool
	Generate(w models.Word, pool *Pool, choiceCount int) (Spec, error)
}

// choiceQuestion fills in choices from the pool. At least one distractor is required.
func choiceQuestion(kind Kind, w models.Word, pool *Pool, choiceCount int, prompt Prompt, answer string, field Field, exclude ...string) (Spec, error) {
	target := w
	if kind == KindAntonymChoice {
		target.English = answer
	}
	distractors := pool.Distractors(target, field, answer, choiceCount-1, exclude...)
	if len(distractors) == 0 {
		return Spec{}, &EngineIncapableError{Kind: kind, WordID: w.ID, Reason: "no distractors available"}
	}
	choices := append([]string{answer}, distractors...)
	pool.Shuffle(choices)
	return Spec{
		ID:      uuid.NewString(),
		Kind:    kind,
		WordID:  w.ID,
		Prompt:  prompt,
		Choices: choices,
		Answer:  answer,
	}, nil
}

func typedQuestion(kind Kind, w models.Word, prompt Prompt, answer string) Spec {
	return Spec{
		ID:     uuid.NewString(),
		Kind:   kind,
		WordID: w.ID,
		Prompt: prompt,
		Answer: answer,
		Hint:   TypedHint(answer),
	}
}

func hasBothSides(w models.Word) bool {
	return strings.TrimSpace(w.English) != "" && w.KoreanDisplay() != ""
}

func hasAntonym(w models.Word) bool {
	a := strings.TrimSpace(w.Antonym)
	return a != "" && !strings.EqualFold(a, strings.TrimSpace(w.English))
}

type enToL1Engine struct{}

func (enToL1Engine) Kind() Kind                     { return KindENToL1 }
func (enToL1Engine) CanGenerate(w models.Word) bool { return hasBothSides(w) }
func (e enToL1Engine) Generate(w models.Word, pool *Pool, n int) (Spec, error) {
	prompt := Prompt{Type: PromptWord, Text: w.English}
	return choiceQuestion(e.Kind(), w, pool, n, prompt, w.KoreanDisplay(), FieldKorean)
}

type l1ToENEngine struct{}

func (l1ToENEngine) Kind() Kind                     { return KindL1ToEN }
func (l1ToENEngine) CanGenerate(w models.Word) bool { return hasBothSides(w) }
func (e l1ToENEngine) Generate(w models.Word, pool *Pool, n int) (Spec, error) {
	prompt := Prompt{Type: PromptWord, Text: w.KoreanDisplay()}
	return choiceQuestion(e.Kind(), w, pool, n, prompt, w.English, FieldEnglish)
}

type l1ToENTypedEngine struct{}

func (l1ToENTypedEngine) Kind() Kind                     { return KindL1ToENTyped }
func (l1ToENTypedEngine) CanGenerate(w models.Word) bool { return hasBothSides(w) }
func (e l1ToENTypedEngine) Generate(w models.Word, _ *Pool, _ int) (Spec, error) {
	prompt := Prompt{Type: PromptWord, Text: w.KoreanDisplay()}
	return typedQuestion(e.Kind(), w, prompt, w.English), nil
}

type emojiToENEngine struct {
	table *lexicon.EmojiTable
}

func (emojiToENEngine) Kind() Kind { return KindEmojiToEN }
func (e emojiToENEngine) CanGenerate(w models.Word) bool {
	_, ok := e.table.Lookup(w.English, w.Korean)
	return ok && hasBothSides(w)
}
func (e emojiToENEngine) Generate(w models.Word, pool *Pool, n int) (Spec, error) {
	emoji, ok := e.table.Lookup(w.English, w.Korean)
	if !ok {
		return Spec{}, &EngineIncapableError{Kind: e.Kind(), WordID: w.ID, Reason: "no unambiguous emoji"}
	}
	prompt := Prompt{Type: PromptEmoji, Text: emoji}
	return choiceQuestion(e.Kind(), w, pool, n, prompt, w.English, FieldEnglish)
}

type sentenceClozeEngine struct{}

func (sentenceClozeEngine) Kind() Kind { return KindSentenceCloze }
func (e sentenceClozeEngine) CanGenerate(w models.Word) bool {
	_, _, ok := blankedExample(w)
	return ok
}
func (e sentenceClozeEngine) Generate(w models.Word, pool *Pool, n int) (Spec, error) {
	sentence, translation, ok := blankedExample(w)
	if !ok {
		return Spec{}, &EngineIncapableError{Kind: e.Kind(), WordID: w.ID, Reason: "no usable example sentence"}
	}
	prompt := Prompt{Type: PromptSentence, Text: sentence, Translation: translation}
	return choiceQuestion(e.Kind(), w, pool, n, prompt, w.English, FieldEnglish)
}

// blankedExample masks the word in the first example sentence where it can be located
func blankedExample(w models.Word) (string, string, bool) {
	if strings.TrimSpace(w.English) == "" {
		return "", "", false
	}
	for _, ex := range w.Examples {
		if blanked, ok := lexicon.BlankSentence(ex.English, w.English); ok {
			return blanked, ex.Korean, true
		}
	}
	return "", "", false
}

type audioToENEngine struct{}

func (audioToENEngine) Kind() Kind                     { return KindAudioToEN }
func (audioToENEngine) CanGenerate(w models.Word) bool { return hasBothSides(w) }
func (e audioToENEngine) Generate(w models.Word, pool *Pool, n int) (Spec, error) {
	prompt := Prompt{Type: PromptAudio, AudioText: w.English}
	return choiceQuestion(e.Kind(), w, pool, n, prompt, w.English, FieldEnglish)
}

type audioToL1Engine struct{}

func (audioToL1Engine) Kind() Kind                     { return KindAudioToL1 }
func (audioToL1Engine) CanGenerate(w models.Word) bool { return hasBothSides(w) }
func (e audioToL1Engine) Generate(w models.Word, pool *Pool, n int) (Spec, error) {
	prompt := Prompt{Type: PromptAudio, AudioText: w.English}
	return choiceQuestion(e.Kind(), w, pool, n, prompt, w.KoreanDisplay(), FieldKorean)
}

type audioToENTypedEngine struct{}

func (audioToENTypedEngine) Kind() Kind                     { return KindAudioToENTyped }
func (audioToENTypedEngine) CanGenerate(w models.Word) bool { return hasBothSides(w) }
func (e audioToENTypedEngine) Generate(w models.Word, _ *Pool, _ int) (Spec, error) {
	prompt := Prompt{Type: PromptAudio, AudioText: w.English, Translation: w.KoreanDisplay()}
	return typedQuestion(e.Kind(), w, prompt, w.English), nil
}

type antonymTypedEngine struct{}

func (antonymTypedEngine) Kind() Kind                     { return KindAntonymTyped }
func (antonymTypedEngine) CanGenerate(w models.Word) bool { return hasAntonym(w) }
func (e antonymTypedEngine) Generate(w models.Word, _ *Pool, _ int) (Spec, error) {
	if !hasAntonym(w) {
		return Spec{}, &EngineIncapableError{Kind: e.Kind(), WordID: w.ID, Reason: "no antonym"}
	}
	prompt := Prompt{Type: PromptWord, Text: w.English, Translation: w.KoreanDisplay()}
	return typedQuestion(e.Kind(), w, prompt, strings.TrimSpace(w.Antonym)), nil
}

type antonymChoiceEngine struct{}

func (antonymChoiceEngine) Kind() Kind                     { return KindAntonymChoice }
func (antonymChoiceEngine) CanGenerate(w models.Word) bool { return hasAntonym(w) }
func (e antonymChoiceEngine) Generate(w models.Word, pool *Pool, n int) (Spec, error) {
	if !hasAntonym(w) {
		return Spec{}, &EngineIncapableError{Kind: e.Kind(), WordID: w.ID, Reason: "no antonym"}
	}
	prompt := Prompt{Type: PromptWord, Text: w.English, Translation: w.KoreanDisplay()}
	return choiceQuestion(e.Kind(), w, pool, n, prompt, strings.TrimSpace(w.Antonym), FieldEnglish, w.English)
}
