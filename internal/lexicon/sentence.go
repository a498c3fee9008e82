package lexicon

import (
	"regexp"
	"sort"
	"strings"
)

// BlankMarker replaces the masked span in a cloze sentence
const BlankMarker = "_____"

const (
	boundaryBefore = `(?:^|[^\p{L}\p{N}'])`
	boundaryAfter  = `(?:$|[^\p{L}\p{N}])`
	slotPattern    = `[\p{L}']+(?:\s+[\p{L}']+)?`
)

// placeholderTokens stand for open slots inside phrasal entries
var placeholderTokens = map[string]string{
	"one's":     `(?:[\p{L}]+'s|my|your|his|her|its|our|their)`,
	"oneself":   `(?:[\p{L}]+self|[\p{L}]+selves)`,
	"someone":   `[\p{L}']+`,
	"somebody":  `[\p{L}']+`,
	"something": `[\p{L}']+`,
	"sb":        `[\p{L}']+`,
	"sth":       `[\p{L}']+`,
}

// BlankSentence masks the entry inside an example sentence. It returns false when the
// entry cannot be located safely; the result contains exactly one BlankMarker.
func BlankSentence(sentence, entry string) (string, bool) {
	entry = strings.TrimSpace(entry)
	if entry == "" || strings.TrimSpace(sentence) == "" || strings.Contains(sentence, BlankMarker) {
		return "", false
	}

	tokens, complement := splitEntry(entry)
	if len(tokens) == 0 {
		return "", false
	}

	var pattern string
	switch {
	case len(tokens) == 1 && strings.Contains(tokens[0], "."):
		pattern = abbreviationPattern(tokens[0])
	case len(tokens) == 1:
		pattern = `(?i)` + boundaryBefore + `(` + alternation(WordForms(tokens[0])) + `)` + boundaryAfter
	default:
		pattern = phrasePattern(tokens)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", false
	}
	loc := re.FindStringSubmatchIndex(sentence)
	if loc == nil {
		return "", false
	}

	start, end := loc[2], loc[3]
	if complement && len(tokens) > 1 && len(loc) >= 6 {
		start, end = loc[4], loc[5]
	}
	if start < 0 || end <= start {
		return "", false
	}
	return sentence[:start] + BlankMarker + sentence[end:], true
}

// splitEntry tokenizes an entry. A trailing "~" means the entry takes a complement;
// a "~" in the middle is an open slot.
func splitEntry(entry string) ([]string, bool) {
	raw := strings.Fields(entry)
	complement := false
	for len(raw) > 0 {
		last := raw[len(raw)-1]
		if last == "~" {
			raw = raw[:len(raw)-1]
			complement = true
			continue
		}
		if strings.HasSuffix(last, "~") {
			raw[len(raw)-1] = strings.TrimSuffix(last, "~")
			complement = true
		}
		break
	}
	for len(raw) > 0 && strings.HasPrefix(raw[0], "~") {
		if raw[0] == "~" {
			raw = raw[1:]
			continue
		}
		raw[0] = strings.TrimPrefix(raw[0], "~")
		break
	}
	return raw, complement
}

func phrasePattern(tokens []string) string {
	parts := make([]string, 0, len(tokens)-1)
	for _, tok := range tokens[1:] {
		lower := strings.ToLower(tok)
		if lower == "~" {
			parts = append(parts, slotPattern)
			continue
		}
		if p, ok := placeholderTokens[lower]; ok {
			parts = append(parts, p)
			continue
		}
		parts = append(parts, regexp.QuoteMeta(lower))
	}
	head := alternation(WordForms(tokens[0]))
	return `(?i)` + boundaryBefore + `((` + head + `)\s+` + strings.Join(parts, `\s+`) + `)` + boundaryAfter
}

func abbreviationPattern(tok string) string {
	after := boundaryAfter
	if strings.HasSuffix(tok, ".") {
		after = ""
	}
	return `(?i)(?:^|[^\p{L}\p{N}.])(` + regexp.QuoteMeta(tok) + `)` + after
}

// alternation joins forms longest first so the regexp prefers the fullest match
func alternation(forms []string) string {
	sorted := append([]string(nil), forms...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, f := range sorted {
		quoted[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(quoted, "|")
}

// WordForms lists the surface forms a base word may take in running text
func WordForms(base string) []string {
	w := strings.ToLower(strings.TrimSpace(base))
	if w == "" {
		return nil
	}
	seen := map[string]bool{}
	var forms []string
	add := func(f string) {
		if f != "" && !seen[f] {
			seen[f] = true
			forms = append(forms, f)
		}
	}

	add(w)
	for _, f := range irregularForms[w] {
		add(f)
	}
	if !isAlpha(w) {
		return forms
	}

	for _, suffix := range []string{"s", "es", "ed", "ing", "er", "est", "ly"} {
		add(w + suffix)
	}

	n := len(w)
	last := w[n-1]
	switch {
	case strings.HasSuffix(w, "ie"):
		add(w[:n-2] + "ying")
		add(w + "d")
		add(w + "s")
	case last == 'e':
		stem := w[:n-1]
		add(w + "d")
		add(w + "r")
		add(w + "st")
		add(stem + "ing")
	case last == 'y' && n > 1 && !isVowelByte(w[n-2]):
		stem := w[:n-1]
		for _, suffix := range []string{"ies", "ied", "ier", "iest", "ily"} {
			add(stem + suffix)
		}
	case isShortCVC(w):
		for _, suffix := range []string{"ed", "ing", "er", "est"} {
			add(w + string(last) + suffix)
		}
	}
	return forms
}

func isShortCVC(w string) bool {
	n := len(w)
	if n < 3 {
		return false
	}
	c1, v, c2 := w[n-3], w[n-2], w[n-1]
	if c2 == 'w' || c2 == 'x' || c2 == 'y' {
		return false
	}
	return !isVowelByte(c1) && isVowelByte(v) && v != 'y' && !isVowelByte(c2)
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

var irregularForms = map[string][]string{
	"be":         {"am", "is", "are", "was", "were", "been", "being"},
	"have":       {"has", "had", "having"},
	"do":         {"does", "did", "done", "doing"},
	"go":         {"goes", "went", "gone", "going"},
	"make":       {"made"},
	"take":       {"took", "taken"},
	"give":       {"gave", "given"},
	"get":        {"got", "gotten", "getting"},
	"come":       {"came"},
	"become":     {"became"},
	"see":        {"saw", "seen"},
	"know":       {"knew", "known"},
	"think":      {"thought"},
	"find":       {"found"},
	"tell":       {"told"},
	"say":        {"said"},
	"buy":        {"bought"},
	"bring":      {"brought"},
	"catch":      {"caught"},
	"teach":      {"taught"},
	"fight":      {"fought"},
	"seek":       {"sought"},
	"feel":       {"felt"},
	"keep":       {"kept"},
	"leave":      {"left"},
	"meet":       {"met"},
	"sleep":      {"slept"},
	"spend":      {"spent"},
	"send":       {"sent"},
	"build":      {"built"},
	"lend":       {"lent"},
	"lose":       {"lost"},
	"pay":        {"paid"},
	"lay":        {"laid"},
	"hear":       {"heard"},
	"hold":       {"held"},
	"stand":      {"stood"},
	"understand": {"understood"},
	"run":        {"ran", "running"},
	"begin":      {"began", "begun"},
	"drink":      {"drank", "drunk"},
	"sing":       {"sang", "sung"},
	"swim":       {"swam", "swum"},
	"ring":       {"rang", "rung"},
	"write":      {"wrote", "written"},
	"ride":       {"rode", "ridden"},
	"drive":      {"drove", "driven"},
	"rise":       {"rose", "risen"},
	"arise":      {"arose", "arisen"},
	"speak":      {"spoke", "spoken"},
	"break":      {"broke", "broken"},
	"choose":     {"chose", "chosen"},
	"freeze":     {"froze", "frozen"},
	"steal":      {"stole", "stolen"},
	"wake":       {"woke", "woken"},
	"eat":        {"ate", "eaten"},
	"fall":       {"fell", "fallen"},
	"forget":     {"forgot", "forgotten"},
	"forgive":    {"forgave", "forgiven"},
	"hide":       {"hid", "hidden"},
	"bite":       {"bit", "bitten"},
	"grow":       {"grew", "grown"},
	"throw":      {"threw", "thrown"},
	"blow":       {"blew", "blown"},
	"draw":       {"drew", "drawn"},
	"withdraw":   {"withdrew", "withdrawn"},
	"fly":        {"flew", "flown", "flies"},
	"show":       {"shown"},
	"wear":       {"wore", "worn"},
	"tear":       {"tore", "torn"},
	"bear":       {"bore", "borne", "born"},
	"swear":      {"swore", "sworn"},
	"sell":       {"sold"},
	"win":        {"won", "winning"},
	"sit":        {"sat", "sitting"},
	"lie":        {"lay", "lain", "lying"},
	"feed":       {"fed"},
	"lead":       {"led"},
	"bleed":      {"bled"},
	"shoot":      {"shot"},
	"light":      {"lit"},
	"slide":      {"slid"},
	"dig":        {"dug", "digging"},
	"stick":      {"stuck"},
	"strike":     {"struck"},
	"hang":       {"hung"},
	"mean":       {"meant"},
	"deal":       {"dealt"},
	"dream":      {"dreamt"},
	"burn":       {"burnt"},
	"learn":      {"learnt"},
	"smell":      {"smelt"},
	"shake":      {"shook", "shaken"},
	"forbid":     {"forbade", "forbidden"},
	"undergo":    {"underwent", "undergone"},
	"overcome":   {"overcame"},
	"put":        {"putting"},
	"cut":        {"cutting"},
	"hit":        {"hitting"},
	"let":        {"letting"},
	"set":        {"setting"},
	"shut":       {"shutting"},
	"child":      {"children"},
	"man":        {"men"},
	"woman":      {"women"},
	"person":     {"people"},
	"mouse":      {"mice"},
	"tooth":      {"teeth"},
	"foot":       {"feet"},
	"goose":      {"geese"},
	"leaf":       {"leaves"},
	"knife":      {"knives"},
	"life":       {"lives"},
	"wife":       {"wives"},
	"good":       {"better", "best"},
	"bad":        {"worse", "worst"},
}
