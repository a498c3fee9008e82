package lexicon

import "strings"

// EmojiTable maps English headwords to a single emoji. Entries whose Korean sense
// contains a blacklisted substring are treated as a different meaning and get no emoji.
type EmojiTable struct {
	emoji     map[string]string
	blacklist map[string][]string
}

// NewEmojiTable copies the given maps; later changes to them do not affect the table
func NewEmojiTable(entries map[string]string, blacklist map[string][]string) *EmojiTable {
	t := &EmojiTable{
		emoji:     make(map[string]string, len(entries)),
		blacklist: make(map[string][]string, len(blacklist)),
	}
	for k, v := range entries {
		t.emoji[strings.ToLower(k)] = v
	}
	for k, v := range blacklist {
		t.blacklist[strings.ToLower(k)] = append([]string(nil), v...)
	}
	return t
}

// Lookup returns the emoji for english unless the korean sense names another meaning
func (t *EmojiTable) Lookup(english, korean string) (string, bool) {
	if t == nil {
		return "", false
	}
	key := strings.ToLower(strings.TrimSpace(english))
	e, ok := t.emoji[key]
	if !ok {
		return "", false
	}
	for _, blocked := range t.blacklist[key] {
		if strings.Contains(korean, blocked) {
			return "", false
		}
	}
	return e, true
}

// Len is the number of mapped headwords
func (t *EmojiTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.emoji)
}

// DefaultEmojiEntries is the built-in headword to emoji map
func DefaultEmojiEntries() map[string]string {
	return map[string]string{
		"apple":    "🍎",
		"banana":   "🍌",
		"bat":      "🦇",
		"bear":     "🐻",
		"bee":      "🐝",
		"bicycle":  "🚲",
		"bird":     "🐦",
		"book":     "📖",
		"bread":    "🍞",
		"bus":      "🚌",
		"cake":     "🍰",
		"car":      "🚗",
		"cat":      "🐱",
		"chicken":  "🐔",
		"clock":    "🕒",
		"cloud":    "☁️",
		"cow":      "🐮",
		"date":     "📅",
		"dog":      "🐶",
		"duck":     "🦆",
		"egg":      "🥚",
		"elephant": "🐘",
		"fall":     "🍂",
		"fire":     "🔥",
		"fish":     "🐟",
		"flower":   "🌸",
		"fly":      "🪰",
		"glasses":  "👓",
		"heart":    "❤️",
		"horse":    "🐴",
		"house":    "🏠",
		"ice":      "🧊",
		"key":      "🔑",
		"letter":   "✉️",
		"light":    "💡",
		"lion":     "🦁",
		"moon":     "🌙",
		"mountain": "⛰️",
		"nail":     "💅",
		"orange":   "🍊",
		"park":     "🏞️",
		"pencil":   "✏️",
		"phone":    "📱",
		"pig":      "🐷",
		"rabbit":   "🐰",
		"rain":     "🌧️",
		"ring":     "💍",
		"rock":     "🪨",
		"school":   "🏫",
		"snake":    "🐍",
		"snow":     "❄️",
		"spring":   "🌱",
		"star":     "⭐",
		"sun":      "☀️",
		"tie":      "👔",
		"tiger":    "🐯",
		"train":    "🚆",
		"tree":     "🌳",
		"umbrella": "☂️",
		"watch":    "⌚",
		"water":    "💧",
	}
}

// DefaultPolysemyBlacklist blocks emoji for senses the picture would misrepresent
func DefaultPolysemyBlacklist() map[string][]string {
	return map[string][]string{
		"bear":    {"참다", "견디", "낳다"},
		"bat":     {"방망이", "배트"},
		"watch":   {"보다", "지켜", "주시"},
		"fly":     {"날다", "비행"},
		"ring":    {"울리", "전화하"},
		"light":   {"가벼", "가볍", "불을 붙"},
		"fall":    {"떨어지", "넘어지", "쓰러지"},
		"spring":  {"용수철", "샘", "튀어"},
		"letter":  {"글자", "문자"},
		"nail":    {"못"},
		"duck":    {"숙이", "피하"},
		"tie":     {"묶다", "매다", "동점"},
		"rock":    {"흔들"},
		"park":    {"주차"},
		"glasses": {"유리잔", "잔"},
		"date":    {"대추", "데이트"},
		"star":    {"주연", "스타"},
		"train":   {"훈련", "교육"},
		"orange":  {"주황"},
	}
}
