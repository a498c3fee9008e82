package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"wordmastery/internal/database"
	"wordmastery/internal/mastery"
	"wordmastery/internal/models"
	"wordmastery/internal/question"
	"wordmastery/internal/repository"
)

// MasteryService runs mastery and stage-test sessions
type MasteryService struct {
	*SessionService
	planner mastery.Planner
}

type StartMasteryRequest struct {
	StudentID    int64  `validate:"required,min=1"`
	Code         string `validate:"required"`
	AllowRestart bool
}

// MasteryItem is one question bound to the mastery record it practices
type MasteryItem struct {
	MasteryID int64         `json:"mastery_id"`
	WordID    int64         `json:"word_id"`
	Stage     int           `json:"stage"`
	Question  question.Spec `json:"question"`
}

// StageSummary describes the student's records for the session's words
type StageSummary struct {
	Stages    map[int]int `json:"stages"`
	Mastered  int         `json:"mastered"`
	Reentered int         `json:"reentered"`
	Total     int         `json:"total"`
}

type MasteryStart struct {
	Session *models.LearningSession `json:"session"`
	Items   []MasteryItem           `json:"items"`
	Summary StageSummary            `json:"summary"`
}

type SubmitMasteryRequest struct {
	SessionID      int64  `validate:"required,min=1"`
	MasteryID      int64  `validate:"required,min=1"`
	QuestionType   string `validate:"required"`
	SelectedAnswer string
	Stage          int `validate:"min=0,max=5"` // stage the question was asked at, 0 if unknown
	TimeTakenMs    int `validate:"min=0"`
}

type MasteryAnswerResult struct {
	Correct       bool       `json:"correct"`
	AlmostCorrect bool       `json:"almost_correct"`
	NewStage      int        `json:"new_stage"`
	Mastered      bool       `json:"mastered"`
	Advanced      bool       `json:"advanced"`
	Demoted       bool       `json:"demoted"`
	CorrectAnswer string     `json:"correct_answer"`
	ReviewDueAt   *time.Time `json:"review_due_at,omitempty"`
}

// StartMastery opens a mastery or stage-test session on an assignment and
// returns the first question batch. No session is created when fewer than
// MinWordPool words survive loanword and engine filtering.
func (s *MasteryService) StartMastery(ctx context.Context, req StartMasteryRequest) (*MasteryStart, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	a, mode, err := s.assignment(ctx, req.Code, models.ModeMastery, models.ModeStageTest)
	if err != nil {
		return nil, err
	}
	kinds, err := selectedKinds(a)
	if err != nil {
		return nil, err
	}
	words, err := s.catalog.AssignmentWords(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment words: %w", err)
	}
	usable := s.usableWords(a, words, kinds)
	if err := checkPool(len(usable), len(words)); err != nil {
		return nil, err
	}
	pool := question.NewPool(words, s.rand.Next())

	unlock := s.locks.Lock(startKey(req.StudentID, a.ID))
	defer unlock()

	now := s.clock.Now()
	if err := s.expireLatest(ctx, a, req.StudentID, now); err != nil {
		return nil, err
	}
	var out MasteryStart
	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		session, err := s.openSession(ctx, tx, a, mode, req.StudentID, req.AllowRestart, now, func(*models.LearningSession) {})
		if err != nil {
			return err
		}

		records, reentered, err := s.prepareRecords(ctx, tx, req.StudentID, usable, now)
		if err != nil {
			return err
		}
		items, err := s.buildBatch(usable, records, pool, kinds)
		if err != nil {
			return err
		}

		session.CurrentStage = lowestOpenStage(records)
		if err := s.sessions.WithTx(tx).Update(ctx, session); err != nil {
			return err
		}
		out = MasteryStart{Session: session, Items: items, Summary: summarize(records, reentered)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// NextMasteryBatch builds another question batch for an open session
func (s *MasteryService) NextMasteryBatch(ctx context.Context, sessionID int64) ([]MasteryItem, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return nil, &SessionAlreadyCompletedError{SessionID: session.ID, TimedOut: session.TimedOut}
	}
	if !session.Mode.UsesStages() {
		return nil, ErrModeMismatch
	}
	a, err := s.assignments.GetByID(ctx, session.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	kinds, err := selectedKinds(a)
	if err != nil {
		return nil, err
	}
	words, err := s.catalog.AssignmentWords(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment words: %w", err)
	}
	usable := s.usableWords(a, words, kinds)
	ids := make([]int64, len(usable))
	for i, w := range usable {
		ids[i] = w.ID
	}
	records, err := s.masteries.ListByStudentWords(ctx, session.StudentID, ids)
	if err != nil {
		return nil, err
	}
	return s.buildBatch(usable, records, question.NewPool(words, s.rand.Next()), kinds)
}

// SubmitMasteryAnswer grades one response and moves the word's mastery stage
// according to the session's policy.
func (s *MasteryService) SubmitMasteryAnswer(ctx context.Context, req SubmitMasteryRequest) (*MasteryAnswerResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	record, err := s.masteries.Get(ctx, req.MasteryID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: mastery %d", ErrWordOrMasteryNotFound, req.MasteryID)
	}
	if err != nil {
		return nil, err
	}
	w, err := s.wordByID(ctx, record.WordID)
	if err != nil {
		return nil, err
	}
	kind, correctAnswer, ok, almost, err := s.grade(req.QuestionType, w, req.SelectedAnswer)
	if err != nil {
		return nil, err
	}
	outcome := mastery.Classify(ok, almost)

	var result MasteryAnswerResult
	err = s.inSession(ctx, req.SessionID, func(tx *database.Tx, session *models.LearningSession, a *models.Assignment, now time.Time) error {
		if !session.Mode.UsesStages() {
			return ErrModeMismatch
		}
		policy, err := mastery.PolicyFor(session.Mode, s.opts.Schedule)
		if err != nil {
			return err
		}

		masteries := s.masteries.WithTx(tx)
		m, err := masteries.Get(ctx, req.MasteryID)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: mastery %d", ErrWordOrMasteryNotFound, req.MasteryID)
		}
		if err != nil {
			return err
		}
		if m.StudentID != session.StudentID {
			return fmt.Errorf("%w: mastery %d belongs to another student", ErrWordOrMasteryNotFound, m.ID)
		}
		onList, err := s.assignments.WithTx(tx).HasWord(ctx, a.ID, m.WordID)
		if err != nil {
			return err
		}
		if !onList {
			return fmt.Errorf("%w: word %d is not on assignment %s", ErrWordOrMasteryNotFound, m.WordID, a.Code)
		}
		if req.Stage > 0 && req.Stage != m.Stage {
			s.log.Debug("answer for stale stage",
				zap.Int64("mastery_id", m.ID), zap.Int("asked", req.Stage), zap.Int("current", m.Stage))
		}

		tr := policy.Apply(m, outcome, w.Level, now)
		if err := masteries.Update(ctx, m, now); err != nil {
			return err
		}

		sessions := s.sessions.WithTx(tx)
		seen, err := sessions.CountWordAnswers(ctx, session.ID, w.ID)
		if err != nil {
			return err
		}
		if seen == 0 {
			session.WordsPracticed++
		}
		if tr.Advanced || tr.Mastered {
			session.WordsAdvanced++
		}
		if tr.Demoted {
			session.WordsDemoted++
		}
		switch outcome {
		case mastery.Correct:
			session.Combo++
			if session.Combo > session.BestCombo {
				session.BestCombo = session.Combo
			}
		case mastery.Incorrect:
			session.Combo = 0
		}
		recordScore(session, ok)
		session.CurrentStage = m.Stage

		masteryID := m.ID
		answer := &models.LearningAnswer{
			SessionID:      session.ID,
			MasteryID:      &masteryID,
			WordID:         w.ID,
			Stage:          tr.FromStage,
			QuestionType:   string(kind),
			WordLevel:      w.Level,
			IsCorrect:      ok,
			IsAlmost:       almost,
			SelectedAnswer: req.SelectedAnswer,
			CorrectAnswer:  correctAnswer,
			TimeTakenMs:    req.TimeTakenMs,
			AnsweredAt:     now,
		}
		if err := sessions.RecordAnswer(ctx, answer); err != nil {
			return err
		}
		if err := sessions.Update(ctx, session); err != nil {
			return err
		}

		result = MasteryAnswerResult{
			Correct:       ok,
			AlmostCorrect: almost,
			NewStage:      m.Stage,
			Mastered:      m.IsMastered(),
			Advanced:      tr.Advanced,
			Demoted:       tr.Demoted,
			CorrectAnswer: correctAnswer,
			ReviewDueAt:   m.ReviewDueAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// prepareRecords loads or creates the student's record for every word and puts
// overdue mastered words back into review.
func (s *MasteryService) prepareRecords(ctx context.Context, tx *database.Tx, studentID int64, words []models.Word, now time.Time) (map[int64]*models.WordMastery, int, error) {
	masteries := s.masteries.WithTx(tx)
	records := make(map[int64]*models.WordMastery, len(words))
	reentered := 0
	for _, w := range words {
		m, _, err := masteries.GetOrCreate(ctx, studentID, w.ID, now)
		if err != nil {
			return nil, 0, err
		}
		if mastery.ReenterIfDue(m, now) {
			if err := masteries.Update(ctx, m, now); err != nil {
				return nil, 0, err
			}
			reentered++
		}
		records[w.ID] = m
	}
	return records, reentered, nil
}

// buildBatch asks about unmastered words, lowest stage first. A word no engine
// can serve is skipped.
func (s *MasteryService) buildBatch(words []models.Word, records map[int64]*models.WordMastery, pool *question.Pool, kinds []question.Kind) ([]MasteryItem, error) {
	type entry struct {
		word   models.Word
		record *models.WordMastery
	}
	var open []entry
	for _, w := range words {
		m := records[w.ID]
		if m == nil || m.IsMastered() {
			continue
		}
		open = append(open, entry{word: w, record: m})
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].record.Stage < open[j].record.Stage })
	if len(open) > s.opts.BatchSize {
		open = open[:s.opts.BatchSize]
	}

	items := make([]MasteryItem, 0, len(open))
	for _, e := range open {
		spec, err := s.planner.Question(e.record, e.word, pool, kinds)
		if errors.Is(err, question.ErrEngineIncapable) {
			s.log.Warn("no engine can serve word", zap.Int64("word_id", e.word.ID), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, MasteryItem{MasteryID: e.record.ID, WordID: e.word.ID, Stage: e.record.Stage, Question: spec})
	}
	return items, nil
}

func summarize(records map[int64]*models.WordMastery, reentered int) StageSummary {
	sum := StageSummary{Stages: make(map[int]int, models.MaxStage), Reentered: reentered, Total: len(records)}
	for _, m := range records {
		sum.Stages[m.Stage]++
		if m.IsMastered() {
			sum.Mastered++
		}
	}
	return sum
}

func lowestOpenStage(records map[int64]*models.WordMastery) int {
	lowest := models.MaxStage
	for _, m := range records {
		if !m.IsMastered() && m.Stage < lowest {
			lowest = m.Stage
		}
	}
	return lowest
}
