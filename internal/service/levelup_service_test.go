package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmastery/internal/levelup"
	"wordmastery/internal/models"
)

func TestStartLevelup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignment(t, models.Assignment{Code: "LV", Mode: "levelup", LevelMin: 1, LevelMax: 5})

	start, err := f.svc.Levelup.StartLevelup(ctx, StartLevelupRequest{StudentID: 1, Code: "LV"})
	require.NoError(t, err)
	assert.Equal(t, 1, start.CurrentTier)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, start.EligibleTiers)
	assert.Equal(t, 1, start.Session.StartLevel)
	assert.Equal(t, 1, start.Session.CurrentLevel)
	assert.Equal(t, "1,2,3,4,5", start.Session.EligibleLevels)
	assert.NotEmpty(t, start.Items)
	for _, item := range start.Items {
		assert.Equal(t, item.Question.WordID, item.WordID)
		assert.LessOrEqual(t, item.Level, 3)
	}

	t.Run("grade picks the starting tier", func(t *testing.T) {
		again, err := f.svc.Levelup.StartLevelup(ctx, StartLevelupRequest{StudentID: 2, Code: "LV", Grade: 5})
		require.NoError(t, err)
		assert.Equal(t, 4, again.CurrentTier)
	})

	t.Run("grade above the pool snaps to the top tier", func(t *testing.T) {
		again, err := f.svc.Levelup.StartLevelup(ctx, StartLevelupRequest{StudentID: 3, Code: "LV", Grade: 12})
		require.NoError(t, err)
		assert.Equal(t, 5, again.CurrentTier)
	})

	t.Run("invalid grade", func(t *testing.T) {
		_, err := f.svc.Levelup.StartLevelup(ctx, StartLevelupRequest{StudentID: 4, Code: "LV", Grade: 13})
		assert.Error(t, err)
	})

	t.Run("mastery code rejected", func(t *testing.T) {
		f.assignment(t, models.Assignment{Code: "MS", Mode: "mastery"}, sixWords...)
		_, err := f.svc.Levelup.StartLevelup(ctx, StartLevelupRequest{StudentID: 1, Code: "MS"})
		assert.ErrorIs(t, err, ErrModeMismatch)
	})
}

func TestSubmitLevelupAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignment(t, models.Assignment{Code: "XP", Mode: "levelup", LevelMin: 1, LevelMax: 5})

	start, err := f.svc.Levelup.StartLevelup(ctx, StartLevelupRequest{StudentID: 1, Code: "XP"})
	require.NoError(t, err)
	assert.Equal(t, 60, levelup.LessonXP(1, 5))

	res, err := f.svc.Levelup.SubmitLevelupAnswer(ctx, SubmitLevelupRequest{
		SessionID: start.Session.ID, WordID: f.words["apple"].ID, QuestionType: "en_to_l1", SelectedAnswer: "사과", TimeTakenMs: 1000,
	})
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 14, res.XPDelta) // 10 base + 4 speed
	assert.Equal(t, 14, res.XP)
	assert.Equal(t, 1, res.NewTier)

	res, err = f.svc.Levelup.SubmitLevelupAnswer(ctx, SubmitLevelupRequest{
		SessionID: start.Session.ID, WordID: f.words["river"].ID, QuestionType: "en_to_l1", SelectedAnswer: "숲", TimeTakenMs: 1000,
	})
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, -4, res.XPDelta)
	assert.Equal(t, 10, res.XP)
	assert.Equal(t, "강", res.CorrectAnswer)

	s := f.sessionRow(t, start.Session.ID)
	assert.Equal(t, 10, s.XP)
	assert.Equal(t, 2, s.AnswerCount)
	assert.Equal(t, 50, s.Score)
	assert.Equal(t, 1, s.MissStreak)
	assert.Equal(t, 1, s.BestCombo)

	answers, err := f.svc.Levelup.sessions.Answers(ctx, start.Session.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, 14, answers[0].XPDelta)
	assert.Equal(t, -4, answers[1].XPDelta)

	t.Run("next batch skips answered words", func(t *testing.T) {
		next, err := f.svc.Levelup.NextLevelupBatch(ctx, start.Session.ID)
		require.NoError(t, err)
		for _, item := range next {
			assert.NotEqual(t, f.words["apple"].ID, item.WordID)
			assert.NotEqual(t, f.words["river"].ID, item.WordID)
		}
	})

	t.Run("unknown word", func(t *testing.T) {
		_, err := f.svc.Levelup.SubmitLevelupAnswer(ctx, SubmitLevelupRequest{
			SessionID: start.Session.ID, WordID: 9999, QuestionType: "en_to_l1", SelectedAnswer: "x",
		})
		assert.ErrorIs(t, err, ErrWordOrMasteryNotFound)
	})

	t.Run("exam batch rejected in levelup mode", func(t *testing.T) {
		_, err := f.svc.Levelup.SubmitExamBatch(ctx, SubmitExamRequest{
			SessionID: start.Session.ID,
			Answers:   []ExamAnswer{{WordID: f.words["apple"].ID, QuestionType: "en_to_l1", SelectedAnswer: "사과"}},
		})
		assert.ErrorIs(t, err, ErrModeMismatch)
	})
}

func TestLevelupClimbsTiers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignment(t, models.Assignment{Code: "UP", Mode: "levelup", LevelMin: 1, LevelMax: 5})

	start, err := f.svc.Levelup.StartLevelup(ctx, StartLevelupRequest{StudentID: 1, Code: "UP"})
	require.NoError(t, err)

	leveled := false
	for i := 0; i < 10 && !leveled; i++ {
		res, err := f.svc.Levelup.SubmitLevelupAnswer(ctx, SubmitLevelupRequest{
			SessionID: start.Session.ID, WordID: f.words["river"].ID, QuestionType: "ko_en", SelectedAnswer: "river", TimeTakenMs: 500,
		})
		require.NoError(t, err)
		if res.LeveledUp {
			leveled = true
			assert.Equal(t, 2, res.NewTier)
			assert.Equal(t, 0, res.XP)
		}
	}
	assert.True(t, leveled)
	assert.Equal(t, 2, f.sessionRow(t, start.Session.ID).CurrentLevel)
}

func TestSubmitExamBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignment(t, models.Assignment{Code: "EXAM", Mode: "exam", LevelMin: 1, LevelMax: 5})

	start, err := f.svc.Levelup.StartLevelup(ctx, StartLevelupRequest{StudentID: 1, Code: "EXAM", Grade: 3})
	require.NoError(t, err)
	require.NotEmpty(t, start.Items)
	assert.Equal(t, 2, start.CurrentTier)

	var (
		req  = SubmitExamRequest{SessionID: start.Session.ID}
		log  []levelup.Answer
		hits int
	)
	for i, item := range start.Items {
		answer := "zzzz"
		if i%3 != 2 {
			answer = item.Question.Answer
			hits++
		}
		req.Answers = append(req.Answers, ExamAnswer{
			WordID: item.WordID, QuestionType: string(item.Question.Kind), SelectedAnswer: answer, TimeTakenMs: 800,
		})
		log = append(log, levelup.Answer{Correct: i%3 != 2, WordLevel: item.Level, TimeTakenMs: 800})
	}

	t.Run("live answers rejected in exam mode", func(t *testing.T) {
		_, err := f.svc.Levelup.SubmitLevelupAnswer(ctx, SubmitLevelupRequest{
			SessionID: start.Session.ID, WordID: f.words["apple"].ID, QuestionType: "en_to_l1", SelectedAnswer: "사과",
		})
		assert.ErrorIs(t, err, ErrModeMismatch)
	})

	t.Run("unknown word leaves the session open", func(t *testing.T) {
		bad := SubmitExamRequest{SessionID: start.Session.ID, Answers: append([]ExamAnswer{{WordID: 9999, QuestionType: "en_to_l1"}}, req.Answers...)}
		_, err := f.svc.Levelup.SubmitExamBatch(ctx, bad)
		assert.ErrorIs(t, err, ErrWordOrMasteryNotFound)
		assert.False(t, f.sessionRow(t, start.Session.ID).IsCompleted())
	})

	res, err := f.svc.Levelup.SubmitExamBatch(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, levelup.Replay(log, start.EligibleTiers, start.CurrentTier), res.FinalTier)
	assert.Equal(t, hits, res.Correct)
	assert.Equal(t, len(req.Answers), res.Total)

	s := f.sessionRow(t, start.Session.ID)
	assert.True(t, s.IsCompleted())
	assert.Equal(t, res.FinalTier, s.CurrentLevel)
	assert.Equal(t, len(req.Answers), s.AnswerCount)

	answers, err := f.svc.Levelup.sessions.Answers(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.Len(t, answers, len(req.Answers))

	_, err = f.svc.Levelup.SubmitExamBatch(ctx, req)
	assert.ErrorIs(t, err, ErrSessionAlreadyCompleted)
}
