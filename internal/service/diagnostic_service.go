package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"wordmastery/internal/diagnostic"
	"wordmastery/internal/question"
	"wordmastery/internal/repository"
)

// DiagnosticService builds skill reports from a student's answer history
type DiagnosticService struct {
	*core
}

type ReportRequest struct {
	StudentID    int64 `validate:"required,min=1"`
	AssignmentID int64 `validate:"min=0"` // peers, current level and the ranked score come from this assignment when set
}

// BuildReport aggregates every answer and mastery record of a student
func (s *DiagnosticService) BuildReport(ctx context.Context, req ReportRequest) (*diagnostic.Report, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	answers, err := s.sessions.AnswersByStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	records, err := s.masteries.ListByStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	in := diagnostic.Input{Mastery: records, Now: s.clock.Now()}
	for _, a := range answers {
		kind, err := question.ResolveKind(a.QuestionType)
		if err != nil {
			s.log.Warn("skipping answer with unknown question type",
				zap.Int64("answer_id", a.ID), zap.String("question_type", a.QuestionType))
			continue
		}
		in.Answers = append(in.Answers, diagnostic.AnswerRecord{Kind: kind, Correct: a.IsCorrect, WordLevel: a.WordLevel})
	}

	if req.AssignmentID > 0 {
		latest, err := s.sessions.Latest(ctx, req.StudentID, req.AssignmentID)
		switch {
		case err == nil:
			in.CurrentLevel = latest.CurrentLevel
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("failed to load latest session: %w", err)
		}
		best, ok, err := s.sessions.BestScore(ctx, req.StudentID, req.AssignmentID)
		if err != nil {
			return nil, err
		}
		if ok {
			in.AssignmentScore = &best
		}
		in.PeerScores, err = s.sessions.PeerScores(ctx, req.AssignmentID, req.StudentID)
		if err != nil {
			return nil, err
		}
	}

	report := diagnostic.Build(in)
	return &report, nil
}
