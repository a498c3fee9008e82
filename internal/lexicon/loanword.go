package lexicon

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"wordmastery/internal/models"
)

const (
	// LoanwordThreshold is the minimum skeleton similarity for a pair to count as a loanword
	LoanwordThreshold = 0.5
	// MinLoanwordMatches is the fewest consonant classes a loanword pair must share
	MinLoanwordMatches = 2
)

// nativeSuffixes are Korean grammatical endings that mark a native word,
// e.g. 행복하다 is a translation of "happy", not a transliteration.
var nativeSuffixes = []string{
	"하다", "되다", "시키다", "스럽다", "롭다", "답다", "거리다", "이다", "지다", "받다",
	"스러운", "로운", "하는", "하게", "적인", "적으로", "히",
}

// IsLikelyLoanword reports whether the Korean sense is a phonetic transliteration
// of the English word rather than a translation.
func IsLikelyLoanword(english, korean string) bool {
	english = strings.TrimSpace(english)
	if english == "" || models.IsPhrase(english) {
		return false
	}
	senses := models.SplitSenses(korean)
	if len(senses) == 0 {
		return false
	}
	sense := strings.TrimPrefix(senses[0], models.BoundFormMarker)
	sense = strings.Join(strings.Fields(sense), "")
	for _, suffix := range nativeSuffixes {
		if strings.HasSuffix(sense, suffix) {
			return false
		}
	}

	en := EnglishSkeleton(english)
	ko := KoreanSkeleton(sense)
	if len(en) < MinLoanwordMatches || len(ko) < MinLoanwordMatches {
		return false
	}
	if SkeletonMatches(en, ko) < MinLoanwordMatches {
		return false
	}
	return SkeletonSimilarity(en, ko) >= LoanwordThreshold
}

// SkeletonSimilarity is the difflib ratio of two consonant skeletons
func SkeletonSimilarity(a, b string) float64 {
	return skeletonMatcher(a, b).Ratio()
}

// SkeletonMatches counts the consonant classes two skeletons share in order
func SkeletonMatches(a, b string) int {
	n := 0
	for _, block := range skeletonMatcher(a, b).GetMatchingBlocks() {
		n += block.Size
	}
	return n
}

func skeletonMatcher(a, b string) *difflib.SequenceMatcher {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
}

// EnglishSkeleton reduces an English word to its consonant classes
func EnglishSkeleton(word string) string {
	w := strings.ToLower(word)
	letters := make([]byte, 0, len(w))
	for i := 0; i < len(w); i++ {
		if w[i] >= 'a' && w[i] <= 'z' {
			letters = append(letters, w[i])
		}
	}

	var out []byte
	emit := func(c byte) {
		if c == 0 {
			return
		}
		if len(out) > 0 && out[len(out)-1] == c {
			return
		}
		out = append(out, c)
	}

	n := len(letters)
	for i := 0; i < n; i++ {
		c := letters[i]
		var next byte
		if i+1 < n {
			next = letters[i+1]
		}

		switch {
		case c == 'p' && next == 'h':
			emit('P')
			i++
			continue
		case (c == 's' || c == 'c') && next == 'h':
			emit('S')
			i++
			continue
		case c == 't' && next == 'h':
			emit('S')
			i++
			continue
		case c == 'c' && next == 'k':
			emit('K')
			i++
			continue
		case c == 'n' && next == 'g':
			emit('N')
			i++
			continue
		case c == 'g' && next == 'h':
			i++
			continue
		case c == 'q' && next == 'u':
			emit('K')
			i++
			continue
		case c == 'k' && next == 'n' && i == 0:
			continue
		case c == 'w' && next == 'h':
			i++
			continue
		case c == 'd' && next == 'g':
			emit('S')
			i++
			continue
		}

		switch c {
		case 'a', 'e', 'i', 'o', 'u', 'y', 'w':
			// vowels and glides carry no consonant class
		case 'b', 'p', 'f', 'v':
			emit('P')
		case 'd', 't':
			emit('T')
		case 's', 'z', 'j':
			emit('S')
		case 'k', 'q':
			emit('K')
		case 'x':
			emit('K')
			emit('S')
		case 'c':
			if next == 'e' || next == 'i' || next == 'y' {
				emit('S')
			} else {
				emit('K')
			}
		case 'g':
			if next == 'e' && i+2 == n {
				emit('S')
			} else {
				emit('K')
			}
		case 'h':
			if isVowelByte(next) {
				emit('H')
			}
		case 'm':
			emit('M')
		case 'n':
			emit('N')
		case 'l', 'r':
			emit('L')
		}
	}
	return string(out)
}

// KoreanSkeleton reduces Hangul text to initial and final consonant classes
func KoreanSkeleton(text string) string {
	var out []byte
	emit := func(c byte) {
		if c == 0 {
			return
		}
		if len(out) > 0 && out[len(out)-1] == c {
			return
		}
		out = append(out, c)
	}
	for _, r := range text {
		syl, ok := DecomposeSyllable(r)
		if !ok {
			continue
		}
		emit(initialClasses[syl.Initial])
		emit(finalClasses[syl.Final])
	}
	return string(out)
}

func isVowelByte(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
