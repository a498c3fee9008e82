package question

import (
	"errors"
	"fmt"
	"strings"

	"wordmastery/internal/lexicon"
)

// Kind is the canonical identifier of a question engine
type Kind string

const (
	KindENToL1         Kind = "en_to_l1"
	KindL1ToEN         Kind = "l1_to_en"
	KindL1ToENTyped    Kind = "l1_to_en_typed"
	KindEmojiToEN      Kind = "emoji_to_en"
	KindSentenceCloze  Kind = "sentence_cloze"
	KindAudioToEN      Kind = "audio_to_en"
	KindAudioToL1      Kind = "audio_to_l1"
	KindAudioToENTyped Kind = "audio_to_en_typed"
	KindAntonymTyped   Kind = "antonym_typed"
	KindAntonymChoice  Kind = "antonym_choice"
)

// DefaultKind is the last-resort engine every usable word supports
const DefaultKind = KindENToL1

var (
	ErrUnknownQuestionType = errors.New("unknown question type")
	ErrEngineIncapable     = errors.New("engine cannot generate a question for word")
)

// EngineIncapableError names the engine and word that could not be paired
type EngineIncapableError struct {
	Kind   Kind
	WordID int64
	Reason string
}

func (e *EngineIncapableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s cannot generate for word %d: %s", e.Kind, e.WordID, e.Reason)
	}
	return fmt.Sprintf("%s cannot generate for word %d", e.Kind, e.WordID)
}

func (e *EngineIncapableError) Is(target error) bool {
	return target == ErrEngineIncapable
}

// AllKinds lists the canonical kinds in stable order
func AllKinds() []Kind {
	return []Kind{
		KindENToL1, KindL1ToEN, KindL1ToENTyped, KindEmojiToEN, KindSentenceCloze,
		KindAudioToEN, KindAudioToL1, KindAudioToENTyped, KindAntonymTyped, KindAntonymChoice,
	}
}

// IsTyped reports whether the kind expects free-text input
func (k Kind) IsTyped() bool {
	switch k {
	case KindL1ToENTyped, KindAudioToENTyped, KindAntonymTyped:
		return true
	}
	return false
}

// ResolveKind maps a canonical name or either legacy naming scheme onto a Kind
func ResolveKind(name string) (Kind, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	switch key {
	case "en_to_l1", "word_meaning", "en_ko":
		return KindENToL1, nil
	case "l1_to_en", "meaning_word", "ko_en":
		return KindL1ToEN, nil
	case "l1_to_en_typed", "spelling", "ko_en_typing":
		return KindL1ToENTyped, nil
	case "emoji_to_en", "emoji_quiz", "emoji":
		return KindEmojiToEN, nil
	case "sentence_cloze", "fill_blank", "sentence":
		return KindSentenceCloze, nil
	case "audio_to_en", "listening", "listen_en":
		return KindAudioToEN, nil
	case "audio_to_l1", "listening_meaning", "listen_ko":
		return KindAudioToL1, nil
	case "audio_to_en_typed", "dictation", "listen_typing":
		return KindAudioToENTyped, nil
	case "antonym_typed", "opposite_write", "antonym_typing":
		return KindAntonymTyped, nil
	case "antonym_choice", "opposite_pick":
		return KindAntonymChoice, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownQuestionType, name)
}

// ResolveKinds resolves every name, dropping duplicates while keeping order
func ResolveKinds(names []string) ([]Kind, error) {
	seen := make(map[Kind]bool, len(names))
	kinds := make([]Kind, 0, len(names))
	for _, n := range names {
		k, err := ResolveKind(n)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// Grade checks a response for the kind: typed kinds allow an "almost" result
func Grade(k Kind, given, correct string) (ok bool, almost bool) {
	if k.IsTyped() {
		return lexicon.CheckTypedAnswer(given, correct)
	}
	return lexicon.MatchesChoice(given, correct), false
}
