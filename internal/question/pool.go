package question

import (
	"math/rand"
	"sort"
	"strings"
	"unicode/utf8"

	"wordmastery/internal/lexicon"
	"wordmastery/internal/models"
)

// Field selects which side of a word a distractor is drawn from
type Field int

const (
	FieldEnglish Field = iota
	FieldKorean
)

// Pool is the candidate set for one question batch
type Pool struct {
	Words   []models.Word
	English map[string]struct{}
	Korean  map[string]struct{}

	rng *rand.Rand
}

// NewPool indexes words once for a batch. rng drives every shuffle in the batch.
func NewPool(words []models.Word, rng *rand.Rand) *Pool {
	p := &Pool{
		Words:   words,
		English: make(map[string]struct{}, len(words)),
		Korean:  make(map[string]struct{}, len(words)),
		rng:     rng,
	}
	for _, w := range words {
		if w.English != "" {
			p.English[w.English] = struct{}{}
		}
		if d := w.KoreanDisplay(); d != "" {
			p.Korean[d] = struct{}{}
		}
	}
	return p
}

// Shuffle permutes choices with the batch random source
func (p *Pool) Shuffle(choices []string) {
	p.rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
}

type candidate struct {
	value string
	level int
	pos   string
	score int
}

// Distractors picks up to n wrong answers for target. correct is never returned,
// nor is any value in exclude. The result has min(n, available) entries.
func (p *Pool) Distractors(target models.Word, field Field, correct string, n int, exclude ...string) []string {
	if n <= 0 {
		return nil
	}

	banned := map[string]bool{lexicon.NormalizeAnswer(correct): true}
	for _, e := range exclude {
		banned[lexicon.NormalizeAnswer(e)] = true
	}
	targetSenses := map[string]bool{}
	if field == FieldKorean {
		for _, s := range models.SplitSenses(correct) {
			targetSenses[lexicon.NormalizeAnswer(s)] = true
		}
	}

	seen := map[string]bool{}
	var all []candidate
	for _, w := range p.Words {
		if w.ID == target.ID {
			continue
		}
		value := w.English
		if field == FieldKorean {
			value = w.KoreanDisplay()
		}
		key := lexicon.NormalizeAnswer(value)
		if key == "" || banned[key] || seen[key] {
			continue
		}
		if field == FieldKorean && sharesSense(w, targetSenses) {
			continue
		}
		seen[key] = true
		all = append(all, candidate{
			value: value,
			level: w.Level,
			pos:   strings.ToLower(w.PartOfSpeech),
			score: confusionScore(field, correct, value),
		})
	}

	chosen := p.pickTier(target, field, correct, all, n)
	sort.SliceStable(chosen, func(i, j int) bool {
		if chosen[i].score != chosen[j].score {
			return chosen[i].score > chosen[j].score
		}
		return chosen[i].value < chosen[j].value
	})

	top := 2 * n
	if n+5 > top {
		top = n + 5
	}
	if len(chosen) > top {
		chosen = chosen[:top]
	}
	p.rng.Shuffle(len(chosen), func(i, j int) {
		chosen[i], chosen[j] = chosen[j], chosen[i]
	})
	if len(chosen) > n {
		chosen = chosen[:n]
	}

	out := make([]string, len(chosen))
	for i, c := range chosen {
		out[i] = c.value
	}
	return out
}

// pickTier returns the first candidate tier holding at least n entries,
// or every candidate when no narrower tier is large enough.
func (p *Pool) pickTier(target models.Word, field Field, correct string, all []candidate, n int) []candidate {
	pos := strings.ToLower(target.PartOfSpeech)
	phrase := models.IsPhrase(correct)
	bound := strings.HasPrefix(strings.TrimSpace(correct), models.BoundFormMarker)

	filters := []func(c candidate) bool{
		func(c candidate) bool { return abs(c.level-target.Level) <= 1 && c.pos == pos },
		func(c candidate) bool { return abs(c.level-target.Level) <= 2 },
		func(c candidate) bool { return abs(c.level-target.Level) <= 3 },
		func(c candidate) bool {
			if field == FieldKorean {
				return strings.HasPrefix(strings.TrimSpace(c.value), models.BoundFormMarker) == bound
			}
			return models.IsPhrase(c.value) == phrase
		},
	}
	for _, keep := range filters {
		var tier []candidate
		for _, c := range all {
			if keep(c) {
				tier = append(tier, c)
			}
		}
		if len(tier) >= n {
			return tier
		}
	}
	return all
}

func sharesSense(w models.Word, senses map[string]bool) bool {
	for _, s := range w.Senses() {
		if senses[lexicon.NormalizeAnswer(s)] {
			return true
		}
	}
	return false
}

var englishSuffixes = []string{
	"tion", "sion", "ment", "ness", "able", "ible", "ance", "ence", "ship",
	"ful", "less", "ous", "ive", "ity", "ize", "ise", "ing", "est",
	"ly", "er", "or", "ed", "al", "ic", "y",
}

var koreanEndings = []string{
	"시키다", "하다", "되다", "스럽다", "롭다", "적인", "하는", "한", "는", "히", "게", "다",
}

// confusionScore rates how plausible value looks as a wrong answer for correct
func confusionScore(field Field, correct, value string) int {
	a := strings.ToLower(strings.TrimSpace(correct))
	b := strings.ToLower(strings.TrimSpace(value))
	score := 0

	if field == FieldKorean {
		ra, _ := utf8.DecodeRuneInString(a)
		rb, _ := utf8.DecodeRuneInString(b)
		if ra == rb && ra != utf8.RuneError {
			score += 3
		} else if ia, ok := lexicon.FirstInitial(a); ok {
			if ib, ok := lexicon.FirstInitial(b); ok && ia == ib {
				score += 2
			}
		}
	} else {
		switch {
		case len(a) >= 2 && len(b) >= 2 && a[:2] == b[:2]:
			score += 3
		case len(a) > 0 && len(b) > 0 && a[0] == b[0]:
			score += 2
		}
	}

	switch abs(utf8.RuneCountInString(a) - utf8.RuneCountInString(b)) {
	case 0:
		score += 3
	case 1:
		score += 2
	case 2:
		score += 1
	}

	suffixes := englishSuffixes
	if field == FieldKorean {
		suffixes = koreanEndings
	}
	for _, s := range suffixes {
		if strings.HasSuffix(a, s) {
			if strings.HasSuffix(b, s) {
				long := utf8.RuneCountInString(s) >= 3
				if field == FieldKorean {
					long = utf8.RuneCountInString(s) >= 2
				}
				if long {
					score += 3
				} else {
					score += 2
				}
			}
			break
		}
	}
	return score
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
