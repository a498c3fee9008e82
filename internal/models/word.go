package models

import (
	"strings"
	"time"
)

// BoundFormMarker prefixes a Korean sense that only makes sense followed by a complement
const BoundFormMarker = "~"

// Word represents a catalog entry: an English headword and its Korean senses
type Word struct {
	ID           int64     `db:"id"`
	English      string    `db:"english"`
	Korean       string    `db:"korean"`
	Level        int       `db:"level"`  // difficulty tier 1-15
	Lesson       int       `db:"lesson"` // position within the book
	PartOfSpeech string    `db:"part_of_speech"`
	Antonym      string    `db:"antonym"`
	CreatedAt    time.Time `db:"created_at"`

	Examples []ExampleSentence `db:"-"`
}

// ExampleSentence is an English sentence paired with its Korean translation
type ExampleSentence struct {
	ID       int64  `db:"id"`
	WordID   int64  `db:"word_id"`
	Position int    `db:"position"`
	English  string `db:"english"`
	Korean   string `db:"korean"`
}

// Senses splits the Korean text into its individual senses
func (w Word) Senses() []string {
	return SplitSenses(w.Korean)
}

// PrimarySense returns the first Korean sense, or an empty string
func (w Word) PrimarySense() string {
	senses := w.Senses()
	if len(senses) == 0 {
		return ""
	}
	return senses[0]
}

// KoreanDisplay is the Korean text shown on prompts and choices: at most two senses
func (w Word) KoreanDisplay() string {
	senses := w.Senses()
	if len(senses) > 2 {
		senses = senses[:2]
	}
	return strings.Join(senses, ", ")
}

// IsBoundForm reports whether the primary sense carries the bound-form marker
func (w Word) IsBoundForm() bool {
	return strings.HasPrefix(w.PrimarySense(), BoundFormMarker)
}

// IsPhrase reports whether the English text is a multi-word entry
func (w Word) IsPhrase() bool {
	return IsPhrase(w.English)
}

// HasExamples reports whether at least one example sentence has English text
func (w Word) HasExamples() bool {
	for _, ex := range w.Examples {
		if strings.TrimSpace(ex.English) != "" {
			return true
		}
	}
	return false
}

// SplitSenses splits comma or semicolon separated senses, dropping blanks
func SplitSenses(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';'
	})
	senses := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			senses = append(senses, p)
		}
	}
	return senses
}

// IsPhrase reports whether text contains more than one token
func IsPhrase(text string) bool {
	return len(strings.Fields(strings.TrimSpace(text))) > 1
}

// Assignment is what a student enters by code to start a session
type Assignment struct {
	ID               int64     `db:"id"`
	Code             string    `db:"code"`
	Title            string    `db:"title"`
	Mode             string    `db:"mode"`
	QuestionTypes    string    `db:"question_types"` // comma separated, canonical or legacy names
	LevelMin         int       `db:"level_min"`
	LevelMax         int       `db:"level_max"`
	TimeLimitSeconds int       `db:"time_limit_seconds"`
	ExcludeLoanwords bool      `db:"exclude_loanwords"`
	IsActive         bool      `db:"is_active"`
	CreatedAt        time.Time `db:"created_at"`
}

// QuestionTypeNames splits the stored question type list
func (a Assignment) QuestionTypeNames() []string {
	var names []string
	for _, n := range strings.Split(a.QuestionTypes, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// TimeLimit returns the wall-clock budget for a session, zero when unlimited
func (a Assignment) TimeLimit() time.Duration {
	return time.Duration(a.TimeLimitSeconds) * time.Second
}
