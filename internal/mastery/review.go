package mastery

import (
	"time"

	"wordmastery/internal/models"
)

// ReviewStage is where a mastered word lands when its review falls due
const ReviewStage = 3

// ReviewSchedule holds escalating review intervals. The n-th review of a word
// uses Intervals[n], and the last interval repeats once the list runs out.
type ReviewSchedule struct {
	Intervals []time.Duration
}

// DefaultReviewSchedule is 3, 7 and then 30 days
func DefaultReviewSchedule() ReviewSchedule {
	return ReviewSchedule{Intervals: []time.Duration{
		3 * 24 * time.Hour,
		7 * 24 * time.Hour,
		30 * 24 * time.Hour,
	}}
}

// Interval returns the wait before the next review after reviewCount completed reviews
func (s ReviewSchedule) Interval(reviewCount int) time.Duration {
	if len(s.Intervals) == 0 {
		return DefaultReviewSchedule().Interval(reviewCount)
	}
	if reviewCount < 0 {
		reviewCount = 0
	}
	if reviewCount >= len(s.Intervals) {
		reviewCount = len(s.Intervals) - 1
	}
	return s.Intervals[reviewCount]
}

// ReenterIfDue drops a mastered word whose review is overdue back to ReviewStage
func ReenterIfDue(m *models.WordMastery, now time.Time) bool {
	if !m.IsReviewDue(now) {
		return false
	}
	m.Stage = ReviewStage
	m.StageStreak = 0
	m.MasteredAt = nil
	m.ReviewDueAt = nil
	m.ReviewCount++
	return true
}
