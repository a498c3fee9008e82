package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wordmastery/internal/database"
	"wordmastery/internal/models"
	"wordmastery/internal/repository"
)

// SessionService handles the parts of a session shared by every mode
type SessionService struct {
	*core
}

// GetSession retrieves a session by ID
func (s *SessionService) GetSession(ctx context.Context, sessionID int64) (*models.LearningSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

// CompleteSession closes an open session and fixes its score
func (s *SessionService) CompleteSession(ctx context.Context, sessionID int64) (*models.LearningSession, error) {
	var completed *models.LearningSession
	err := s.inSession(ctx, sessionID, func(tx *database.Tx, session *models.LearningSession, _ *models.Assignment, now time.Time) error {
		session.CompletedAt = &now
		if err := s.sessions.WithTx(tx).Update(ctx, session); err != nil {
			return err
		}
		completed = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("session completed",
		zap.Int64("session_id", completed.ID), zap.Int("score", completed.Score), zap.Int("answers", completed.AnswerCount))
	return completed, nil
}

// ExpireStaleSessions force-completes every open session that has run past its
// assignment's time limit and returns how many were closed.
func (s *SessionService) ExpireStaleSessions(ctx context.Context) (int, error) {
	open, err := s.sessions.OpenTimed(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	expired := 0
	for _, candidate := range open {
		if !now.After(candidate.Deadline()) {
			continue
		}
		err := s.inSession(ctx, candidate.ID, func(*database.Tx, *models.LearningSession, *models.Assignment, time.Time) error {
			return nil
		})
		var done *SessionAlreadyCompletedError
		switch {
		case errors.As(err, &done):
			if done.TimedOut {
				expired++
			}
		case err != nil:
			return expired, fmt.Errorf("failed to expire session %d: %w", candidate.ID, err)
		}
	}
	if expired > 0 {
		s.log.Info("expired stale sessions", zap.Int("count", expired))
	}
	return expired, nil
}
