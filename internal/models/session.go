package models

import (
	"strconv"
	"strings"
	"time"
)

// SessionMode selects which policy drives a learning session
type SessionMode string

const (
	ModeMastery   SessionMode = "mastery"
	ModeStageTest SessionMode = "stage_test"
	ModeLevelup   SessionMode = "levelup"
	ModeExam      SessionMode = "exam"
)

// Valid reports whether the mode is one of the known modes
func (m SessionMode) Valid() bool {
	switch m {
	case ModeMastery, ModeStageTest, ModeLevelup, ModeExam:
		return true
	}
	return false
}

// UsesStages reports whether the mode is driven by word mastery stages
func (m SessionMode) UsesStages() bool {
	return m == ModeMastery || m == ModeStageTest
}

// LearningSession represents one attempt at an assignment
type LearningSession struct {
	ID             int64       `db:"id"`
	StudentID      int64       `db:"student_id"`
	AssignmentID   int64       `db:"assignment_id"`
	Mode           SessionMode `db:"mode"`
	CurrentStage   int         `db:"current_stage"`
	CurrentLevel   int         `db:"current_level"`
	StartLevel     int         `db:"start_level"`
	EligibleLevels string      `db:"eligible_levels"`
	XP             int         `db:"xp"`
	Combo          int         `db:"combo"`
	MissStreak     int         `db:"miss_streak"`
	BestCombo      int         `db:"best_combo"`
	WordsPracticed int         `db:"words_practiced"`
	WordsAdvanced  int         `db:"words_advanced"`
	WordsDemoted   int         `db:"words_demoted"`
	CorrectCount   int         `db:"correct_count"`
	AnswerCount    int         `db:"answer_count"`
	Score          int         `db:"score"`
	TimedOut       bool        `db:"timed_out"`
	StartedAt      time.Time   `db:"started_at"`
	CompletedAt    *time.Time  `db:"completed_at"`
}

// IsCompleted reports whether the session has been closed
func (s *LearningSession) IsCompleted() bool {
	return s.CompletedAt != nil
}

// Levels parses the stored eligible level list
func (s *LearningSession) Levels() []int {
	return ParseLevels(s.EligibleLevels)
}

// ResetCounters puts the session back to its starting state for a restart
func (s *LearningSession) ResetCounters(startedAt time.Time) {
	s.CurrentStage = MinStage
	s.CurrentLevel = s.StartLevel
	s.XP = 0
	s.Combo = 0
	s.MissStreak = 0
	s.BestCombo = 0
	s.WordsPracticed = 0
	s.WordsAdvanced = 0
	s.WordsDemoted = 0
	s.CorrectCount = 0
	s.AnswerCount = 0
	s.Score = 0
	s.TimedOut = false
	s.StartedAt = startedAt
	s.CompletedAt = nil
}

// LearningAnswer is one submitted response, kept for scoring and replay
type LearningAnswer struct {
	ID             int64     `db:"id"`
	SessionID      int64     `db:"session_id"`
	MasteryID      *int64    `db:"mastery_id"`
	WordID         int64     `db:"word_id"`
	Stage          int       `db:"stage"`
	QuestionType   string    `db:"question_type"`
	WordLevel      int       `db:"word_level"`
	IsCorrect      bool      `db:"is_correct"`
	IsAlmost       bool      `db:"is_almost"`
	SelectedAnswer string    `db:"selected_answer"`
	CorrectAnswer  string    `db:"correct_answer"`
	TimeTakenMs    int       `db:"time_taken_ms"`
	XPDelta        int       `db:"xp_delta"`
	AnsweredAt     time.Time `db:"answered_at"`
}

// FormatLevels stores a level list as comma separated text
func FormatLevels(levels []int) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, ",")
}

// ParseLevels reads a comma separated level list, skipping malformed entries
func ParseLevels(text string) []int {
	if text == "" {
		return nil
	}
	var levels []int
	for _, p := range strings.Split(text, ",") {
		l, err := strconv.Atoi(strings.TrimSpace(p))
		if err == nil {
			levels = append(levels, l)
		}
	}
	return levels
}
