package lexicon

import (
	"sort"
	"unicode/utf8"

	"wordmastery/internal/models"
)

// DifficultyScore orders words within a tier. It is independent of the stored level,
// which comes from the offline leveling tool.
func DifficultyScore(w models.Word) float64 {
	score := float64(utf8.RuneCountInString(w.English)) / 4.0
	if w.IsPhrase() {
		score += 3.0
	}
	if extra := len(w.Senses()) - 1; extra > 0 {
		if extra > 3 {
			extra = 3
		}
		score += 0.75 * float64(extra)
	}
	score += 0.1 * float64(w.Lesson)
	if !w.HasExamples() {
		score += 1.0
	}
	return score
}

// SortHardestFirst orders words by descending difficulty score, ties by id
func SortHardestFirst(words []models.Word) {
	sort.SliceStable(words, func(i, j int) bool {
		si, sj := DifficultyScore(words[i]), DifficultyScore(words[j])
		if si != sj {
			return si > sj
		}
		return words[i].ID < words[j].ID
	})
}
