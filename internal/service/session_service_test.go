package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wordmastery/internal/models"
	"wordmastery/internal/repository"
	mock_service "wordmastery/internal/service/mock"
)

func TestGetSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignment(t, models.Assignment{Code: "GET", Mode: "mastery"}, sixWords...)
	start, err := f.svc.Mastery.StartMastery(ctx, StartMasteryRequest{StudentID: 1, Code: "GET"})
	require.NoError(t, err)

	got, err := f.svc.Sessions.GetSession(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, start.Session.ID, got.ID)
	assert.True(t, got.StartedAt.Equal(testStart))

	_, err = f.svc.Sessions.GetSession(ctx, 404)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.Sessions.CompleteSession(ctx, 404)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCompleteSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignment(t, models.Assignment{Code: "DONE", Mode: "mastery"}, sixWords...)
	start, err := f.svc.Mastery.StartMastery(ctx, StartMasteryRequest{StudentID: 1, Code: "DONE"})
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)
	done, err := f.svc.Sessions.CompleteSession(ctx, start.Session.ID)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, done.CompletedAt.Equal(testStart.Add(5*time.Minute)))
	assert.False(t, done.TimedOut)

	_, err = f.svc.Sessions.CompleteSession(ctx, start.Session.ID)
	assert.ErrorIs(t, err, ErrSessionAlreadyCompleted)

	_, err = f.svc.Mastery.SubmitMasteryAnswer(ctx, SubmitMasteryRequest{
		SessionID: start.Session.ID, MasteryID: start.Items[0].MasteryID, QuestionType: "en_to_l1", SelectedAnswer: "x",
	})
	assert.ErrorIs(t, err, ErrSessionAlreadyCompleted)

	_, err = f.svc.Mastery.NextMasteryBatch(ctx, start.Session.ID)
	assert.ErrorIs(t, err, ErrSessionAlreadyCompleted)
}

func TestSessionTimeLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignment(t, models.Assignment{Code: "TIMED", Mode: "mastery", TimeLimitSeconds: 60}, sixWords...)

	first, err := f.svc.Mastery.StartMastery(ctx, StartMasteryRequest{StudentID: 1, Code: "TIMED"})
	require.NoError(t, err)
	second, err := f.svc.Mastery.StartMastery(ctx, StartMasteryRequest{StudentID: 2, Code: "TIMED"})
	require.NoError(t, err)

	res, err := f.svc.Mastery.SubmitMasteryAnswer(ctx, SubmitMasteryRequest{
		SessionID: first.Session.ID, MasteryID: first.Items[0].MasteryID, QuestionType: "en_to_l1", SelectedAnswer: first.Items[0].Question.Answer,
	})
	require.NoError(t, err)
	assert.True(t, res.Correct)

	f.clock.Advance(2 * time.Minute)
	_, err = f.svc.Mastery.SubmitMasteryAnswer(ctx, SubmitMasteryRequest{
		SessionID: first.Session.ID, MasteryID: first.Items[0].MasteryID, QuestionType: "en_to_l1", SelectedAnswer: first.Items[0].Question.Answer,
	})
	var done *SessionAlreadyCompletedError
	require.True(t, errors.As(err, &done), "got %v", err)
	assert.True(t, done.TimedOut)
	assert.Equal(t, first.Session.ID, done.SessionID)

	row := f.sessionRow(t, first.Session.ID)
	assert.True(t, row.IsCompleted())
	assert.True(t, row.TimedOut)
	assert.Equal(t, 0, row.Score)
	assert.Equal(t, 1, row.AnswerCount)

	expired, err := f.svc.Sessions.ExpireStaleSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.True(t, f.sessionRow(t, second.Session.ID).TimedOut)

	expired, err = f.svc.Sessions.ExpireStaleSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
}

func TestExpireStaleSessionsUsesClock(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := openTestDB(t)
	ctx := context.Background()

	words := repository.NewWordRepository(db)
	for _, w := range testWords() {
		w := w
		_, err := words.Upsert(ctx, &w)
		require.NoError(t, err)
	}

	var mu sync.Mutex
	now := testStart
	clock := mock_service.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}).AnyTimes()

	svc := New(Deps{DB: db, Catalog: words, Clock: clock, Logger: zap.NewNop(), Options: Options{Seed: 7}})
	a := &models.Assignment{Code: "CLK", Mode: "exam", LevelMin: 1, LevelMax: 5, TimeLimitSeconds: 300, IsActive: true}
	require.NoError(t, repository.NewAssignmentRepository(db).Create(ctx, a))

	start, err := svc.Levelup.StartLevelup(ctx, StartLevelupRequest{StudentID: 1, Code: "CLK"})
	require.NoError(t, err)

	mu.Lock()
	now = testStart.Add(299 * time.Second)
	mu.Unlock()
	expired, err := svc.Sessions.ExpireStaleSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)

	mu.Lock()
	now = testStart.Add(301 * time.Second)
	mu.Unlock()
	expired, err = svc.Sessions.ExpireStaleSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	s, err := svc.Sessions.GetSession(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.True(t, s.TimedOut)
	assert.Equal(t, 0, s.Score)
}

func TestStartAfterTimeout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignment(t, models.Assignment{Code: "AGAIN", Mode: "mastery", TimeLimitSeconds: 30}, sixWords...)

	start, err := f.svc.Mastery.StartMastery(ctx, StartMasteryRequest{StudentID: 1, Code: "AGAIN"})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.Sessions.ExpireStaleSessions(ctx)
	require.NoError(t, err)

	_, err = f.svc.Mastery.StartMastery(ctx, StartMasteryRequest{StudentID: 1, Code: "AGAIN"})
	var done *SessionAlreadyCompletedError
	require.True(t, errors.As(err, &done))
	assert.True(t, done.TimedOut)
	assert.Equal(t, start.Session.ID, done.SessionID)

	fresh, err := f.svc.Mastery.StartMastery(ctx, StartMasteryRequest{StudentID: 1, Code: "AGAIN", AllowRestart: true})
	require.NoError(t, err)
	assert.False(t, fresh.Session.TimedOut)
	assert.True(t, fresh.Session.StartedAt.Equal(testStart.Add(time.Minute)))
}

func TestStartExpiredSessionWithoutSweep(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		start func(f *fixture, allowRestart bool) (*models.LearningSession, error)
	}{
		{
			name: "mastery",
			mode: "mastery",
			start: func(f *fixture, allowRestart bool) (*models.LearningSession, error) {
				out, err := f.svc.Mastery.StartMastery(context.Background(), StartMasteryRequest{StudentID: 1, Code: "LATE", AllowRestart: allowRestart})
				if err != nil {
					return nil, err
				}
				return out.Session, nil
			},
		},
		{
			name: "levelup",
			mode: "levelup",
			start: func(f *fixture, allowRestart bool) (*models.LearningSession, error) {
				out, err := f.svc.Levelup.StartLevelup(context.Background(), StartLevelupRequest{StudentID: 1, Code: "LATE", AllowRestart: allowRestart})
				if err != nil {
					return nil, err
				}
				return out.Session, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.assignment(t, models.Assignment{Code: "LATE", Mode: tt.mode, TimeLimitSeconds: 30}, sixWords...)

			first, err := tt.start(f, false)
			require.NoError(t, err)
			f.clock.Advance(time.Hour)

			_, err = tt.start(f, false)
			var done *SessionAlreadyCompletedError
			require.True(t, errors.As(err, &done), "got %v", err)
			assert.True(t, done.TimedOut)
			assert.Equal(t, first.ID, done.SessionID)

			row := f.sessionRow(t, first.ID)
			assert.True(t, row.IsCompleted())
			assert.True(t, row.TimedOut)
			assert.Equal(t, 0, row.Score)
			assert.True(t, row.StartedAt.Equal(testStart))
			assert.Equal(t, 1, f.countSessions(t))

			fresh, err := tt.start(f, true)
			require.NoError(t, err)
			assert.NotEqual(t, first.ID, fresh.ID)
			assert.False(t, fresh.TimedOut)
			assert.True(t, fresh.StartedAt.Equal(testStart.Add(time.Hour)))
		})
	}
}

func TestStartExpiredSessionKeepsAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignment(t, models.Assignment{Code: "KEEP", Mode: "mastery", TimeLimitSeconds: 30}, sixWords...)

	start, err := f.svc.Mastery.StartMastery(ctx, StartMasteryRequest{StudentID: 1, Code: "KEEP"})
	require.NoError(t, err)
	item := start.Items[0]
	_, err = f.svc.Mastery.SubmitMasteryAnswer(ctx, SubmitMasteryRequest{
		SessionID: start.Session.ID, MasteryID: item.MasteryID, QuestionType: "en_to_l1", SelectedAnswer: item.Question.Answer,
	})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, err = f.svc.Mastery.StartMastery(ctx, StartMasteryRequest{StudentID: 1, Code: "KEEP"})
	require.ErrorIs(t, err, ErrSessionAlreadyCompleted)

	answers, err := f.svc.Mastery.sessions.Answers(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.Len(t, answers, 1)
	assert.Equal(t, 1, f.sessionRow(t, start.Session.ID).AnswerCount)
}
