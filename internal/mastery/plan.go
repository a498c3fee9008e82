package mastery

import (
	"wordmastery/internal/models"
	"wordmastery/internal/question"
)

// stagePlan lists the preferred question kinds per stage, easiest first
var stagePlan = map[int][]question.Kind{
	1: {question.KindENToL1, question.KindEmojiToEN},
	2: {question.KindL1ToEN, question.KindAudioToEN},
	3: {question.KindSentenceCloze, question.KindAudioToL1},
	4: {question.KindAntonymChoice, question.KindAudioToENTyped},
	5: {question.KindL1ToENTyped, question.KindAntonymTyped},
}

// StageKinds returns the question kinds to try for a stage. Kinds from the plan
// that are selected come first, then the other selected kinds. An empty selection
// allows everything.
func StageKinds(stage int, selected []question.Kind) []question.Kind {
	if stage < models.MinStage {
		stage = models.MinStage
	}
	if stage > models.MaxStage {
		stage = models.MaxStage
	}
	plan := stagePlan[stage]
	if len(selected) == 0 {
		return append([]question.Kind(nil), plan...)
	}

	allowed := make(map[question.Kind]bool, len(selected))
	for _, k := range selected {
		allowed[k] = true
	}
	kinds := make([]question.Kind, 0, len(selected))
	used := map[question.Kind]bool{}
	for _, k := range plan {
		if allowed[k] {
			kinds = append(kinds, k)
			used[k] = true
		}
	}
	for _, k := range selected {
		if !used[k] {
			kinds = append(kinds, k)
			used[k] = true
		}
	}
	return kinds
}

// Planner builds practice questions for mastery records
type Planner struct {
	Registry    *question.Registry
	ChoiceCount int
}

// Question generates a question for the record's current stage. The starting kind
// rotates with the attempt count so repeated practice varies the question type.
func (p Planner) Question(m *models.WordMastery, w models.Word, pool *question.Pool, selected []question.Kind) (question.Spec, error) {
	kinds := StageKinds(m.Stage, selected)
	if n := len(kinds); n > 1 {
		start := m.TotalAttempts % n
		rotated := make([]question.Kind, 0, n)
		rotated = append(rotated, kinds[start:]...)
		kinds = append(rotated, kinds[:start]...)
	}
	return p.Registry.GenerateWithFallback(kinds, w, pool, p.ChoiceCount)
}
