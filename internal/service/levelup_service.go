package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wordmastery/internal/database"
	"wordmastery/internal/levelup"
	"wordmastery/internal/models"
	"wordmastery/internal/question"
)

// LevelupService runs XP driven level-up tests and batch-scored exams
type LevelupService struct {
	*SessionService
}

type StartLevelupRequest struct {
	StudentID    int64  `validate:"required,min=1"`
	Code         string `validate:"required"`
	Grade        int    `validate:"min=0,max=12"` // school grade, 0 starts at the lowest tier
	AllowRestart bool
}

// LevelupItem is one question with the tier of its word
type LevelupItem struct {
	WordID   int64         `json:"word_id"`
	Level    int           `json:"level"`
	Question question.Spec `json:"question"`
}

type LevelupStart struct {
	Session       *models.LearningSession `json:"session"`
	Items         []LevelupItem           `json:"items"`
	CurrentTier   int                     `json:"current_tier"`
	EligibleTiers []int                   `json:"eligible_tiers"`
}

type SubmitLevelupRequest struct {
	SessionID      int64  `validate:"required,min=1"`
	WordID         int64  `validate:"required,min=1"`
	QuestionType   string `validate:"required"`
	SelectedAnswer string
	TimeTakenMs    int `validate:"min=0"`
}

type LevelupAnswerResult struct {
	Correct       bool   `json:"correct"`
	AlmostCorrect bool   `json:"almost_correct"`
	XPDelta       int    `json:"xp_delta"`
	XP            int    `json:"xp"`
	NewTier       int    `json:"new_tier"`
	LeveledUp     bool   `json:"leveled_up"`
	LeveledDown   bool   `json:"leveled_down"`
	CorrectAnswer string `json:"correct_answer"`
}

type ExamAnswer struct {
	WordID         int64  `validate:"required,min=1"`
	QuestionType   string `validate:"required"`
	SelectedAnswer string
	TimeTakenMs    int `validate:"min=0"`
}

type SubmitExamRequest struct {
	SessionID int64        `validate:"required,min=1"`
	Answers   []ExamAnswer `validate:"required,min=1,dive"`
}

type ExamResult struct {
	Session   *models.LearningSession `json:"session"`
	FinalTier int                     `json:"final_tier"`
	Correct   int                     `json:"correct"`
	Total     int                     `json:"total"`
}

// levelupPool is the vocabulary an assignment tests, grouped by tier
type levelupPool struct {
	words  []models.Word
	byTier map[int][]models.Word
	ladder levelup.Ladder
	kinds  []question.Kind
}

func (s *LevelupService) loadPool(ctx context.Context, a *models.Assignment) (*levelupPool, error) {
	kinds, err := selectedKinds(a)
	if err != nil {
		return nil, err
	}
	words, err := s.catalog.AssignmentWords(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment words: %w", err)
	}
	if len(words) == 0 {
		words, err = s.catalog.WordsInLevelRange(ctx, a.LevelMin, a.LevelMax)
		if err != nil {
			return nil, fmt.Errorf("failed to load words in range: %w", err)
		}
	}
	usable := s.usableWords(a, words, kinds)
	if err := checkPool(len(usable), len(words)); err != nil {
		return nil, err
	}
	byTier := levelup.GroupByTier(usable)
	return &levelupPool{
		words:  usable,
		byTier: byTier,
		ladder: levelup.NewLadder(levelup.TiersWithWords(byTier)),
		kinds:  kinds,
	}, nil
}

// StartLevelup opens a level-up or exam session and returns the first batch.
// The starting tier comes from the student's grade, snapped to a tier that has words.
func (s *LevelupService) StartLevelup(ctx context.Context, req StartLevelupRequest) (*LevelupStart, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	a, mode, err := s.assignment(ctx, req.Code, models.ModeLevelup, models.ModeExam)
	if err != nil {
		return nil, err
	}
	p, err := s.loadPool(ctx, a)
	if err != nil {
		return nil, err
	}
	start := levelup.StartingTier(req.Grade, p.ladder)
	eligible := p.ladder.Levels()
	rng := s.rand.Next()

	unlock := s.locks.Lock(startKey(req.StudentID, a.ID))
	defer unlock()

	now := s.clock.Now()
	if err := s.expireLatest(ctx, a, req.StudentID, now); err != nil {
		return nil, err
	}
	var session *models.LearningSession
	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		var err error
		session, err = s.openSession(ctx, tx, a, mode, req.StudentID, req.AllowRestart, now, func(ls *models.LearningSession) {
			ls.StartLevel = start
			ls.EligibleLevels = models.FormatLevels(eligible)
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	items, err := s.buildBatch(p, mode, start, nil, question.NewPool(p.words, rng), levelup.NewSampler(rng))
	if err != nil {
		return nil, err
	}
	return &LevelupStart{Session: session, Items: items, CurrentTier: start, EligibleTiers: eligible}, nil
}

// NextLevelupBatch samples more questions around the session's current tier,
// skipping words already answered in the session.
func (s *LevelupService) NextLevelupBatch(ctx context.Context, sessionID int64) ([]LevelupItem, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return nil, &SessionAlreadyCompletedError{SessionID: session.ID, TimedOut: session.TimedOut}
	}
	if session.Mode != models.ModeLevelup && session.Mode != models.ModeExam {
		return nil, ErrModeMismatch
	}
	a, err := s.assignments.GetByID(ctx, session.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	answers, err := s.sessions.Answers(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	served := make(map[int64]bool, len(answers))
	for _, ans := range answers {
		served[ans.WordID] = true
	}
	p, err := s.loadPool(ctx, a)
	if err != nil {
		return nil, err
	}
	rng := s.rand.Next()
	return s.buildBatch(p, session.Mode, session.CurrentLevel, served, question.NewPool(p.words, rng), levelup.NewSampler(rng))
}

func (s *LevelupService) buildBatch(p *levelupPool, mode models.SessionMode, current int, served map[int64]bool,
	pool *question.Pool, sampler *levelup.Sampler) ([]LevelupItem, error) {
	var words []models.Word
	if mode == models.ModeExam {
		words = sampler.Exam(p.byTier, p.ladder, s.opts.BatchSize, served)
	} else {
		words = sampler.Adaptive(p.byTier, p.ladder, current, s.opts.BatchSize, s.opts.LevelupWindow, served)
	}

	kinds := p.kinds
	if len(kinds) == 0 {
		kinds = []question.Kind{question.DefaultKind}
	}
	items := make([]LevelupItem, 0, len(words))
	for i, w := range words {
		chain := append(append([]question.Kind(nil), kinds[i%len(kinds):]...), kinds[:i%len(kinds)]...)
		spec, err := s.registry.GenerateWithFallback(chain, w, pool, s.opts.ChoiceCount)
		if errors.Is(err, question.ErrEngineIncapable) {
			s.log.Warn("no engine can serve word", zap.Int64("word_id", w.ID), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, LevelupItem{WordID: w.ID, Level: w.Level, Question: spec})
	}
	return items, nil
}

// SubmitLevelupAnswer scores one live answer, including the speed bonus, and
// moves the session between tiers.
func (s *LevelupService) SubmitLevelupAnswer(ctx context.Context, req SubmitLevelupRequest) (*LevelupAnswerResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	w, err := s.wordByID(ctx, req.WordID)
	if err != nil {
		return nil, err
	}
	kind, correctAnswer, ok, almost, err := s.grade(req.QuestionType, w, req.SelectedAnswer)
	if err != nil {
		return nil, err
	}

	var result LevelupAnswerResult
	err = s.inSession(ctx, req.SessionID, func(tx *database.Tx, session *models.LearningSession, _ *models.Assignment, now time.Time) error {
		if session.Mode != models.ModeLevelup {
			return ErrModeMismatch
		}
		progress := progressOf(session)
		step := levelup.Step(&progress, levelup.NewLadder(session.Levels()),
			levelup.Answer{Correct: ok, WordLevel: w.Level, TimeTakenMs: req.TimeTakenMs}, true)
		applyProgress(session, progress)
		session.WordsPracticed++
		recordScore(session, ok)

		sessions := s.sessions.WithTx(tx)
		answer := &models.LearningAnswer{
			SessionID:      session.ID,
			WordID:         w.ID,
			QuestionType:   string(kind),
			WordLevel:      w.Level,
			IsCorrect:      ok,
			IsAlmost:       almost,
			SelectedAnswer: req.SelectedAnswer,
			CorrectAnswer:  correctAnswer,
			TimeTakenMs:    req.TimeTakenMs,
			XPDelta:        step.Delta,
			AnsweredAt:     now,
		}
		if err := sessions.RecordAnswer(ctx, answer); err != nil {
			return err
		}
		if err := sessions.Update(ctx, session); err != nil {
			return err
		}

		if step.LeveledUp || step.LeveledDown {
			s.log.Debug("tier changed",
				zap.Int64("session_id", session.ID), zap.Int("from", step.From), zap.Int("to", step.To))
		}
		result = LevelupAnswerResult{
			Correct:       ok,
			AlmostCorrect: almost,
			XPDelta:       step.Delta,
			XP:            progress.XP,
			NewTier:       progress.Book,
			LeveledUp:     step.LeveledUp,
			LeveledDown:   step.LeveledDown,
			CorrectAnswer: correctAnswer,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitExamBatch scores a whole exam at once. The session's full answer log is
// replayed from its starting tier without the speed bonus, and the answers,
// final tier and completion are committed together or not at all.
func (s *LevelupService) SubmitExamBatch(ctx context.Context, req SubmitExamRequest) (*ExamResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(req.Answers))
	seen := make(map[int64]bool, len(req.Answers))
	for _, a := range req.Answers {
		if !seen[a.WordID] {
			seen[a.WordID] = true
			ids = append(ids, a.WordID)
		}
	}
	words, err := s.catalog.WordsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load words: %w", err)
	}
	byID := make(map[int64]models.Word, len(words))
	for _, w := range words {
		byID[w.ID] = w
	}

	type graded struct {
		answer *models.LearningAnswer
		replay levelup.Answer
	}
	batch := make([]graded, 0, len(req.Answers))
	for _, a := range req.Answers {
		w, ok := byID[a.WordID]
		if !ok {
			return nil, fmt.Errorf("%w: word %d", ErrWordOrMasteryNotFound, a.WordID)
		}
		kind, correctAnswer, correct, almost, err := s.grade(a.QuestionType, w, a.SelectedAnswer)
		if err != nil {
			return nil, err
		}
		batch = append(batch, graded{
			answer: &models.LearningAnswer{
				WordID:         w.ID,
				QuestionType:   string(kind),
				WordLevel:      w.Level,
				IsCorrect:      correct,
				IsAlmost:       almost,
				SelectedAnswer: a.SelectedAnswer,
				CorrectAnswer:  correctAnswer,
				TimeTakenMs:    a.TimeTakenMs,
			},
			replay: levelup.Answer{Correct: correct, WordLevel: w.Level, TimeTakenMs: a.TimeTakenMs},
		})
	}

	var result ExamResult
	err = s.inSession(ctx, req.SessionID, func(tx *database.Tx, session *models.LearningSession, _ *models.Assignment, now time.Time) error {
		if session.Mode != models.ModeExam {
			return ErrModeMismatch
		}
		sessions := s.sessions.WithTx(tx)
		prior, err := sessions.Answers(ctx, session.ID)
		if err != nil {
			return err
		}

		log := make([]levelup.Answer, 0, len(prior)+len(batch))
		for _, a := range prior {
			log = append(log, levelup.Answer{Correct: a.IsCorrect, WordLevel: a.WordLevel, TimeTakenMs: a.TimeTakenMs})
		}
		for _, g := range batch {
			log = append(log, g.replay)
		}
		progress, steps := levelup.ReplayProgress(log, session.Levels(), session.StartLevel)

		for i, g := range batch {
			g.answer.SessionID = session.ID
			g.answer.XPDelta = steps[len(prior)+i].Delta
			g.answer.AnsweredAt = now
			if err := sessions.RecordAnswer(ctx, g.answer); err != nil {
				return err
			}
			session.WordsPracticed++
			recordScore(session, g.answer.IsCorrect)
		}
		applyProgress(session, progress)
		session.CompletedAt = &now
		if err := sessions.Update(ctx, session); err != nil {
			return err
		}

		result = ExamResult{Session: session, FinalTier: progress.Book, Correct: session.CorrectCount, Total: session.AnswerCount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("exam scored",
		zap.Int64("session_id", req.SessionID), zap.Int("final_tier", result.FinalTier), zap.Int("score", result.Session.Score))
	return &result, nil
}

func progressOf(s *models.LearningSession) levelup.Progress {
	return levelup.Progress{Book: s.CurrentLevel, XP: s.XP, Combo: s.Combo, Misses: s.MissStreak, BestCombo: s.BestCombo}
}

func applyProgress(s *models.LearningSession, p levelup.Progress) {
	s.CurrentLevel = p.Book
	s.XP = p.XP
	s.Combo = p.Combo
	s.MissStreak = p.Misses
	s.BestCombo = p.BestCombo
}
