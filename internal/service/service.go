package service

//go:generate mockgen -source=service.go -destination=mock/service_mock.go -package=mock_service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"wordmastery/internal/database"
	"wordmastery/internal/diagnostic"
	"wordmastery/internal/lexicon"
	"wordmastery/internal/mastery"
	"wordmastery/internal/models"
	"wordmastery/internal/question"
	"wordmastery/internal/repository"
	"wordmastery/internal/validation"
)

// WordCatalog is the read-only source of vocabulary
type WordCatalog interface {
	AssignmentWords(ctx context.Context, assignmentID int64) ([]models.Word, error)
	WordsInLevelRange(ctx context.Context, min, max int) ([]models.Word, error)
	WordsByIDs(ctx context.Context, ids []int64) ([]models.Word, error)
}

type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Options tunes question batches and review scheduling
type Options struct {
	ChoiceCount   int
	BatchSize     int
	LevelupWindow int
	Seed          int64 // 0 seeds from the clock
	Schedule      mastery.ReviewSchedule
}

// DefaultOptions returns the settings used when nothing is configured
func DefaultOptions() Options {
	return Options{
		ChoiceCount:   question.DefaultChoiceCount,
		BatchSize:     20,
		LevelupWindow: 2,
		Schedule:      mastery.DefaultReviewSchedule(),
	}
}

// Deps are the collaborators shared by every service
type Deps struct {
	DB       *database.DB
	Catalog  WordCatalog
	Registry *question.Registry
	Clock    Clock
	Logger   *zap.Logger
	Options  Options
}

// Services bundles the services built from one set of dependencies. They share
// one lock table, so submissions for a session are serialized across services.
type Services struct {
	Sessions   *SessionService
	Mastery    *MasteryService
	Levelup    *LevelupService
	Diagnostic *DiagnosticService
}

// New wires every service
func New(d Deps) *Services {
	c := newCore(d)
	sessions := &SessionService{core: c}
	return &Services{
		Sessions: sessions,
		Mastery: &MasteryService{
			SessionService: sessions,
			planner:        mastery.Planner{Registry: c.registry, ChoiceCount: c.opts.ChoiceCount},
		},
		Levelup:    &LevelupService{SessionService: sessions},
		Diagnostic: &DiagnosticService{core: c},
	}
}

type core struct {
	db       *database.DB
	catalog  WordCatalog
	registry *question.Registry
	clock    Clock
	log      *zap.Logger
	opts     Options
	locks    *SessionLocks
	rand     *seededRand

	assignments *repository.AssignmentRepository
	masteries   *repository.MasteryRepository
	sessions    *repository.SessionRepository
}

func newCore(d Deps) *core {
	opts := d.Options
	if opts.ChoiceCount < 2 {
		opts.ChoiceCount = question.DefaultChoiceCount
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultOptions().BatchSize
	}
	if len(opts.Schedule.Intervals) == 0 {
		opts.Schedule = mastery.DefaultReviewSchedule()
	}
	clock := d.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	registry := d.Registry
	if registry == nil {
		registry = question.NewRegistry(lexicon.NewEmojiTable(lexicon.DefaultEmojiEntries(), lexicon.DefaultPolysemyBlacklist()))
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &core{
		db:          d.DB,
		catalog:     d.Catalog,
		registry:    registry,
		clock:       clock,
		log:         log,
		opts:        opts,
		locks:       NewSessionLocks(),
		rand:        newSeededRand(seed),
		assignments: repository.NewAssignmentRepository(d.DB),
		masteries:   repository.NewMasteryRepository(d.DB),
		sessions:    repository.NewSessionRepository(d.DB),
	}
}

// seededRand hands out independent generators derived from one seed, so a
// fixed seed reproduces every batch in order.
type seededRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

func newSeededRand(seed int64) *seededRand {
	return &seededRand{src: rand.New(rand.NewSource(seed))}
}

func (s *seededRand) Next() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewSource(s.src.Int63()))
}

func validateRequest(req interface{}) error {
	if err := validation.ValidateStruct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// assignment looks up an active assignment by code and checks it runs in one of modes
func (c *core) assignment(ctx context.Context, code string, modes ...models.SessionMode) (*models.Assignment, models.SessionMode, error) {
	a, err := c.assignments.GetByCode(ctx, strings.TrimSpace(code))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidOrInactiveCode
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load assignment: %w", err)
	}
	if !a.IsActive {
		return nil, "", ErrInvalidOrInactiveCode
	}
	mode := models.SessionMode(a.Mode)
	for _, m := range modes {
		if m == mode {
			return a, mode, nil
		}
	}
	return nil, "", fmt.Errorf("%w: assignment %s runs in %q mode", ErrModeMismatch, a.Code, a.Mode)
}

func selectedKinds(a *models.Assignment) ([]question.Kind, error) {
	kinds, err := question.ResolveKinds(a.QuestionTypeNames())
	if err != nil {
		return nil, fmt.Errorf("assignment %s: %w", a.Code, err)
	}
	return kinds, nil
}

// usableWords drops loanwords when the assignment excludes them, and words that
// none of the selected kinds can serve.
func (c *core) usableWords(a *models.Assignment, words []models.Word, kinds []question.Kind) []models.Word {
	usable := make([]models.Word, 0, len(words))
	for _, w := range words {
		if a.ExcludeLoanwords && lexicon.IsLikelyLoanword(w.English, w.PrimarySense()) {
			continue
		}
		if !c.registry.CanAny(kinds, w) {
			continue
		}
		usable = append(usable, w)
	}
	if dropped := len(words) - len(usable); dropped > 0 {
		c.log.Debug("words filtered from pool",
			zap.String("assignment", a.Code), zap.Int("dropped", dropped), zap.Int("usable", len(usable)))
	}
	return usable
}

func checkPool(usable, total int) error {
	if usable < MinWordPool {
		return fmt.Errorf("%w: %d of %d words usable, need %d", ErrInsufficientWordPool, usable, total, MinWordPool)
	}
	return nil
}

// openSession starts an attempt. An incomplete earlier attempt is restarted in
// place with its answers discarded. A completed one only gives way to a new
// attempt when allowRestart is set. init sets mode specific fields before the
// counters are reset.
func (c *core) openSession(ctx context.Context, tx *database.Tx, a *models.Assignment, mode models.SessionMode,
	studentID int64, allowRestart bool, now time.Time, init func(*models.LearningSession)) (*models.LearningSession, error) {
	sessions := c.sessions.WithTx(tx)

	prev, err := sessions.Latest(ctx, studentID, a.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		prev = nil
	case err != nil:
		return nil, fmt.Errorf("failed to load previous session: %w", err)
	}

	if prev != nil && !prev.IsCompleted() {
		if err := sessions.DeleteAnswers(ctx, prev.ID); err != nil {
			return nil, fmt.Errorf("failed to discard answers: %w", err)
		}
		init(prev)
		prev.ResetCounters(now)
		if err := sessions.Update(ctx, prev); err != nil {
			return nil, err
		}
		c.log.Info("session restarted", zap.Int64("session_id", prev.ID), zap.Int64("student_id", studentID))
		return prev, nil
	}
	if prev != nil && !allowRestart {
		return nil, &SessionAlreadyCompletedError{SessionID: prev.ID, TimedOut: prev.TimedOut}
	}

	s := &models.LearningSession{
		StudentID:    studentID,
		AssignmentID: a.ID,
		Mode:         mode,
		CurrentStage: models.MinStage,
		StartedAt:    now,
	}
	init(s)
	s.CurrentLevel = s.StartLevel
	if err := sessions.Create(ctx, s); err != nil {
		return nil, err
	}
	c.log.Info("session started",
		zap.Int64("session_id", s.ID), zap.Int64("student_id", studentID), zap.String("mode", string(mode)))
	return s, nil
}

func timedOut(s *models.LearningSession, a *models.Assignment, now time.Time) bool {
	limit := a.TimeLimit()
	return limit > 0 && !s.IsCompleted() && now.After(s.StartedAt.Add(limit))
}

func forceComplete(s *models.LearningSession, now time.Time) {
	s.TimedOut = true
	s.Score = 0
	s.CompletedAt = &now
}

// expireLatest force-completes the student's latest session on a when it has run
// past the time limit, so starting again cannot reopen an expired attempt.
func (c *core) expireLatest(ctx context.Context, a *models.Assignment, studentID int64, now time.Time) error {
	if a.TimeLimit() <= 0 {
		return nil
	}
	prev, err := c.sessions.Latest(ctx, studentID, a.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load previous session: %w", err)
	}
	if !timedOut(prev, a, now) {
		return nil
	}

	err = c.inSession(ctx, prev.ID, func(*database.Tx, *models.LearningSession, *models.Assignment, time.Time) error {
		return nil
	})
	var done *SessionAlreadyCompletedError
	if errors.As(err, &done) {
		return nil
	}
	return err
}

type sessionFunc func(tx *database.Tx, s *models.LearningSession, a *models.Assignment, now time.Time) error

// inSession runs fn on an open session inside one transaction while holding the
// session lock. A session past its time limit is force-completed with score 0
// and committed, then reported as SessionAlreadyCompletedError.
func (c *core) inSession(ctx context.Context, sessionID int64, fn sessionFunc) error {
	unlock := c.locks.Lock(sessionKey(sessionID))
	defer unlock()

	now := c.clock.Now()
	expired := false
	err := c.db.WithTx(ctx, func(tx *database.Tx) error {
		sessions := c.sessions.WithTx(tx)
		s, err := sessions.Get(ctx, sessionID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if s.IsCompleted() {
			return &SessionAlreadyCompletedError{SessionID: s.ID, TimedOut: s.TimedOut}
		}

		a, err := c.assignments.WithTx(tx).GetByID(ctx, s.AssignmentID)
		if err != nil {
			return fmt.Errorf("failed to load assignment: %w", err)
		}
		if timedOut(s, a, now) {
			forceComplete(s, now)
			expired = true
			return sessions.Update(ctx, s)
		}
		return fn(tx, s, a, now)
	})
	if err != nil {
		return err
	}
	if expired {
		c.log.Info("session timed out", zap.Int64("session_id", sessionID))
		return &SessionAlreadyCompletedError{SessionID: sessionID, TimedOut: true}
	}
	return nil
}

// wordByID fetches one word from the catalog
func (c *core) wordByID(ctx context.Context, id int64) (models.Word, error) {
	words, err := c.catalog.WordsByIDs(ctx, []int64{id})
	if err != nil {
		return models.Word{}, fmt.Errorf("failed to load word: %w", err)
	}
	if len(words) == 0 {
		return models.Word{}, fmt.Errorf("%w: word %d", ErrWordOrMasteryNotFound, id)
	}
	return words[0], nil
}

// grade resolves the question type and checks answer against the word
func (c *core) grade(questionType string, w models.Word, answer string) (question.Kind, string, bool, bool, error) {
	kind, err := question.ResolveKind(questionType)
	if err != nil {
		return "", "", false, false, err
	}
	correct, err := c.registry.CorrectAnswer(kind, w)
	if err != nil {
		return "", "", false, false, err
	}
	ok, almost := question.Grade(kind, answer, correct)
	return kind, correct, ok, almost, nil
}

func recordScore(s *models.LearningSession, correct bool) {
	s.AnswerCount++
	if correct {
		s.CorrectCount++
	}
	s.Score = diagnostic.RoundPercent(s.CorrectCount, s.AnswerCount)
}
