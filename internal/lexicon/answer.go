package lexicon

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// MinAlmostLength is the shortest correct answer for which a one-letter slip counts as "almost"
const MinAlmostLength = 3

var answerReplacer = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// NormalizeAnswer lowercases, trims, collapses whitespace and drops trailing punctuation
func NormalizeAnswer(s string) string {
	s = answerReplacer.Replace(strings.ToLower(s))
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, ".!?")
}

// MatchesChoice compares a selected choice against the correct one
func MatchesChoice(selected, correct string) bool {
	c := NormalizeAnswer(correct)
	return c != "" && NormalizeAnswer(selected) == c
}

// CheckTypedAnswer grades a typed response. almost is true only for a single edit
// against a correct answer of at least MinAlmostLength characters.
func CheckTypedAnswer(given, correct string) (ok bool, almost bool) {
	g := NormalizeAnswer(given)
	c := NormalizeAnswer(correct)
	if c == "" {
		return false, false
	}
	if g == c {
		return true, false
	}
	if utf8.RuneCountInString(c) >= MinAlmostLength && levenshtein.ComputeDistance(g, c) == 1 {
		return false, true
	}
	return false, false
}
