package models

import (
	"fmt"
	"time"
)

const (
	MinStage = 1
	MaxStage = 5
)

// WordMastery tracks one student's progress on one word
type WordMastery struct {
	ID            int64      `db:"id"`
	StudentID     int64      `db:"student_id"`
	WordID        int64      `db:"word_id"`
	Stage         int        `db:"stage"`
	StageStreak   int        `db:"stage_streak"`
	TotalAttempts int        `db:"total_attempts"`
	TotalCorrect  int        `db:"total_correct"`
	ReviewCount   int        `db:"review_count"`
	MasteredAt    *time.Time `db:"mastered_at"`
	ReviewDueAt   *time.Time `db:"review_due_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// NewWordMastery returns a fresh record at stage 1
func NewWordMastery(studentID, wordID int64) *WordMastery {
	return &WordMastery{
		StudentID: studentID,
		WordID:    wordID,
		Stage:     MinStage,
	}
}

// IsMastered reports whether the record carries the mastered flag
func (m *WordMastery) IsMastered() bool {
	return m.MasteredAt != nil
}

// IsReviewDue reports whether a mastered word must be reviewed again
func (m *WordMastery) IsReviewDue(now time.Time) bool {
	return m.MasteredAt != nil && m.ReviewDueAt != nil && m.ReviewDueAt.Before(now)
}

// Accuracy returns the correct ratio over all attempts
func (m *WordMastery) Accuracy() float64 {
	if m.TotalAttempts == 0 {
		return 0.0
	}
	return float64(m.TotalCorrect) / float64(m.TotalAttempts)
}

// Validate checks the record invariants
func (m *WordMastery) Validate() error {
	if m.Stage < MinStage || m.Stage > MaxStage {
		return fmt.Errorf("stage %d out of range [%d,%d]", m.Stage, MinStage, MaxStage)
	}
	if m.MasteredAt != nil && m.Stage != MaxStage {
		return fmt.Errorf("mastered record at stage %d", m.Stage)
	}
	if m.TotalCorrect > m.TotalAttempts {
		return fmt.Errorf("total correct %d exceeds attempts %d", m.TotalCorrect, m.TotalAttempts)
	}
	return nil
}
