package mastery

import (
	"fmt"
	"time"

	"wordmastery/internal/models"
)

// Outcome is how a single response is graded
type Outcome int

const (
	Incorrect Outcome = iota
	Almost
	Correct
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Almost:
		return "almost"
	default:
		return "incorrect"
	}
}

// Classify turns a grading result into an Outcome
func Classify(ok, almost bool) Outcome {
	switch {
	case ok:
		return Correct
	case almost:
		return Almost
	default:
		return Incorrect
	}
}

// RequiredStreak is the number of consecutive correct answers a word of the given
// tier needs before it advances a stage
func RequiredStreak(tier int) int {
	switch {
	case tier <= 3:
		return 2
	case tier <= 6:
		return 3
	case tier <= 9:
		return 4
	case tier <= 12:
		return 5
	default:
		return 6
	}
}

// Transition describes what one response did to a mastery record
type Transition struct {
	FromStage int
	ToStage   int
	Advanced  bool
	Demoted   bool
	Mastered  bool // became mastered on this response
}

// Policy applies one graded response to a mastery record
type Policy interface {
	Name() string
	Apply(m *models.WordMastery, outcome Outcome, tier int, now time.Time) Transition
}

// PolicyFor returns the policy that drives a session mode
func PolicyFor(mode models.SessionMode, schedule ReviewSchedule) (Policy, error) {
	switch mode {
	case models.ModeMastery:
		return StreakPolicy{Schedule: schedule}, nil
	case models.ModeStageTest:
		return StageTestPolicy{Schedule: schedule}, nil
	}
	return nil, fmt.Errorf("mode %q has no stage policy", mode)
}

// StreakPolicy advances after RequiredStreak consecutive correct answers and
// demotes one stage on every wrong answer.
type StreakPolicy struct {
	Schedule ReviewSchedule
}

func (StreakPolicy) Name() string { return string(models.ModeMastery) }

func (p StreakPolicy) Apply(m *models.WordMastery, outcome Outcome, tier int, now time.Time) Transition {
	t := Transition{FromStage: m.Stage, ToStage: m.Stage}
	m.TotalAttempts++

	switch outcome {
	case Correct:
		m.TotalCorrect++
		if m.IsMastered() {
			break
		}
		m.StageStreak++
		if m.StageStreak >= RequiredStreak(tier) {
			m.StageStreak = 0
			t.Advanced, t.Mastered = advance(m, p.Schedule, now)
		}
	case Incorrect:
		m.StageStreak = 0
		m.MasteredAt = nil
		m.ReviewDueAt = nil
		if m.Stage > models.MinStage {
			m.Stage--
			t.Demoted = true
		}
	}

	t.ToStage = m.Stage
	return t
}

// StageTestPolicy moves up exactly one stage per correct answer and never
// moves down.
type StageTestPolicy struct {
	Schedule ReviewSchedule
}

func (StageTestPolicy) Name() string { return string(models.ModeStageTest) }

func (p StageTestPolicy) Apply(m *models.WordMastery, outcome Outcome, _ int, now time.Time) Transition {
	t := Transition{FromStage: m.Stage, ToStage: m.Stage}
	m.TotalAttempts++

	if outcome == Correct {
		m.TotalCorrect++
		if !m.IsMastered() {
			m.StageStreak = 0
			t.Advanced, t.Mastered = advance(m, p.Schedule, now)
		}
	}

	t.ToStage = m.Stage
	return t
}

// advance moves one stage up; past the last stage the word becomes mastered
// and is scheduled for review.
func advance(m *models.WordMastery, schedule ReviewSchedule, now time.Time) (advanced, mastered bool) {
	if m.Stage < models.MaxStage {
		m.Stage++
		return true, false
	}
	m.Stage = models.MaxStage
	masteredAt := now
	due := now.Add(schedule.Interval(m.ReviewCount))
	m.MasteredAt = &masteredAt
	m.ReviewDueAt = &due
	return false, true
}
