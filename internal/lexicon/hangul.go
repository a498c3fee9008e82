package lexicon

const (
	hangulBase    = 0xAC00
	hangulLast    = 0xD7A3
	medialCount   = 21
	finalCount    = 28
	syllableBlock = medialCount * finalCount
)

// Syllable is a decomposed Hangul syllable block; Final is 0 when there is no batchim
type Syllable struct {
	Initial int
	Medial  int
	Final   int
}

// DecomposeSyllable splits a precomposed Hangul syllable into jamo indices
func DecomposeSyllable(r rune) (Syllable, bool) {
	if r < hangulBase || r > hangulLast {
		return Syllable{}, false
	}
	idx := int(r - hangulBase)
	return Syllable{
		Initial: idx / syllableBlock,
		Medial:  (idx % syllableBlock) / finalCount,
		Final:   idx % finalCount,
	}, true
}

// IsHangul reports whether r is a precomposed Hangul syllable
func IsHangul(r rune) bool {
	return r >= hangulBase && r <= hangulLast
}

// initialClasses maps the 19 initial consonants onto coarse classes.
// ㅇ is silent in initial position.
var initialClasses = [19]byte{
	'K', // ㄱ
	'K', // ㄲ
	'N', // ㄴ
	'T', // ㄷ
	'T', // ㄸ
	'L', // ㄹ
	'M', // ㅁ
	'P', // ㅂ
	'P', // ㅃ
	'S', // ㅅ
	'S', // ㅆ
	0,   // ㅇ
	'S', // ㅈ
	'S', // ㅉ
	'S', // ㅊ
	'K', // ㅋ
	'T', // ㅌ
	'P', // ㅍ
	'H', // ㅎ
}

// finalClasses maps the 28 final slots (0 = none) by how the batchim is pronounced
var finalClasses = [28]byte{
	0,   // none
	'K', // ㄱ
	'K', // ㄲ
	'K', // ㄳ
	'N', // ㄴ
	'N', // ㄵ
	'N', // ㄶ
	'T', // ㄷ
	'L', // ㄹ
	'L', // ㄺ
	'L', // ㄻ
	'L', // ㄼ
	'L', // ㄽ
	'L', // ㄾ
	'L', // ㄿ
	'L', // ㅀ
	'M', // ㅁ
	'P', // ㅂ
	'P', // ㅄ
	'T', // ㅅ
	'T', // ㅆ
	'N', // ㅇ
	'T', // ㅈ
	'T', // ㅊ
	'K', // ㅋ
	'T', // ㅌ
	'P', // ㅍ
	0,   // ㅎ
}

// FirstInitial returns the initial consonant index of the first Hangul syllable in s
func FirstInitial(s string) (int, bool) {
	for _, r := range s {
		if syl, ok := DecomposeSyllable(r); ok {
			return syl.Initial, true
		}
	}
	return 0, false
}
