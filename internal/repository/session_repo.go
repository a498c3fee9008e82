package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wordmastery/internal/database"
	"wordmastery/internal/models"
)

const sessionColumns = `s.id, s.student_id, s.assignment_id, s.mode, s.current_stage, s.current_level,
	s.start_level, s.eligible_levels, s.xp, s.combo, s.miss_streak, s.best_combo,
	s.words_practiced, s.words_advanced, s.words_demoted, s.correct_count, s.answer_count,
	s.score, s.timed_out, s.started_at, s.completed_at`

const answerColumns = `id, session_id, mastery_id, word_id, stage, question_type, word_level,
	is_correct, is_almost, selected_answer, correct_answer, time_taken_ms, xp_delta, answered_at`

// TimedSession is an open session together with its assignment's time limit
type TimedSession struct {
	models.LearningSession
	TimeLimitSeconds int `db:"time_limit_seconds"`
}

// Deadline is when the session runs out of time
func (t TimedSession) Deadline() time.Time {
	return t.StartedAt.Add(time.Duration(t.TimeLimitSeconds) * time.Second)
}

// SessionRepository handles learning session and answer log operations
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *SessionRepository) WithTx(tx database.DBTX) *SessionRepository {
	return &SessionRepository{db: tx}
}

// Create inserts a session and sets its ID
func (r *SessionRepository) Create(ctx context.Context, s *models.LearningSession) error {
	id, err := r.db.ExecReturningID(ctx, `
		INSERT INTO learning_sessions (student_id, assignment_id, mode, current_stage, current_level,
			start_level, eligible_levels, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.StudentID, s.AssignmentID, s.Mode, s.CurrentStage, s.CurrentLevel,
		s.StartLevel, s.EligibleLevels, s.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	s.ID = id
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id int64) (*models.LearningSession, error) {
	var s models.LearningSession
	if err := r.db.GetContext(ctx, &s, `SELECT `+sessionColumns+` FROM learning_sessions s WHERE s.id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Latest retrieves the most recent session of a student on an assignment
func (r *SessionRepository) Latest(ctx context.Context, studentID, assignmentID int64) (*models.LearningSession, error) {
	var s models.LearningSession
	query := `
		SELECT ` + sessionColumns + `
		FROM learning_sessions s
		WHERE s.student_id = ? AND s.assignment_id = ?
		ORDER BY s.id DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &s, query, studentID, assignmentID); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Update saves the session counters and completion state
func (r *SessionRepository) Update(ctx context.Context, s *models.LearningSession) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE learning_sessions
		SET current_stage = ?, current_level = ?, start_level = ?, eligible_levels = ?, xp = ?,
		    combo = ?, miss_streak = ?, best_combo = ?, words_practiced = ?, words_advanced = ?,
		    words_demoted = ?, correct_count = ?, answer_count = ?, score = ?, timed_out = ?,
		    started_at = ?, completed_at = ?
		WHERE id = ?
	`, s.CurrentStage, s.CurrentLevel, s.StartLevel, s.EligibleLevels, s.XP,
		s.Combo, s.MissStreak, s.BestCombo, s.WordsPracticed, s.WordsAdvanced,
		s.WordsDemoted, s.CorrectCount, s.AnswerCount, s.Score, s.TimedOut,
		s.StartedAt, s.CompletedAt, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update session %d: %w", s.ID, err)
	}
	return nil
}

// DeleteAnswers discards the answer log of a session
func (r *SessionRepository) DeleteAnswers(ctx context.Context, sessionID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM learning_answers WHERE session_id = ?`, sessionID)
	return err
}

// RecordAnswer appends a row to the answer log and sets its ID
func (r *SessionRepository) RecordAnswer(ctx context.Context, a *models.LearningAnswer) error {
	id, err := r.db.ExecReturningID(ctx, `
		INSERT INTO learning_answers (session_id, mastery_id, word_id, stage, question_type, word_level,
			is_correct, is_almost, selected_answer, correct_answer, time_taken_ms, xp_delta, answered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.SessionID, a.MasteryID, a.WordID, a.Stage, a.QuestionType, a.WordLevel,
		a.IsCorrect, a.IsAlmost, a.SelectedAnswer, a.CorrectAnswer, a.TimeTakenMs, a.XPDelta, a.AnsweredAt)
	if err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	a.ID = id
	return nil
}

// Answers retrieves the answer log of a session in submission order
func (r *SessionRepository) Answers(ctx context.Context, sessionID int64) ([]models.LearningAnswer, error) {
	var answers []models.LearningAnswer
	query := `SELECT ` + answerColumns + ` FROM learning_answers WHERE session_id = ? ORDER BY id`
	if err := r.db.SelectContext(ctx, &answers, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	return answers, nil
}

// CountWordAnswers returns how often a word has been answered in a session
func (r *SessionRepository) CountWordAnswers(ctx context.Context, sessionID, wordID int64) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM learning_answers WHERE session_id = ? AND word_id = ?`
	if err := r.db.GetContext(ctx, &n, query, sessionID, wordID); err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return n, nil
}

// AnswersByStudent retrieves every answer a student has given
func (r *SessionRepository) AnswersByStudent(ctx context.Context, studentID int64) ([]models.LearningAnswer, error) {
	var answers []models.LearningAnswer
	query := `
		SELECT a.id, a.session_id, a.mastery_id, a.word_id, a.stage, a.question_type, a.word_level,
		       a.is_correct, a.is_almost, a.selected_answer, a.correct_answer, a.time_taken_ms,
		       a.xp_delta, a.answered_at
		FROM learning_answers a
		INNER JOIN learning_sessions s ON s.id = a.session_id
		WHERE s.student_id = ?
		ORDER BY a.id
	`
	if err := r.db.SelectContext(ctx, &answers, query, studentID); err != nil {
		return nil, fmt.Errorf("failed to load student answers: %w", err)
	}
	return answers, nil
}

// PeerScores returns the best completed score of every other student on an assignment
func (r *SessionRepository) PeerScores(ctx context.Context, assignmentID, excludeStudentID int64) ([]int, error) {
	var scores []int
	query := `
		SELECT MAX(score)
		FROM learning_sessions
		WHERE assignment_id = ? AND student_id <> ? AND completed_at IS NOT NULL
		GROUP BY student_id
		ORDER BY student_id
	`
	if err := r.db.SelectContext(ctx, &scores, query, assignmentID, excludeStudentID); err != nil {
		return nil, fmt.Errorf("failed to load peer scores: %w", err)
	}
	return scores, nil
}

// BestScore returns the student's best score on an assignment over sessions that
// are completed or have at least one answer. ok is false when there is none.
func (r *SessionRepository) BestScore(ctx context.Context, studentID, assignmentID int64) (score int, ok bool, err error) {
	var best sql.NullInt64
	query := `
		SELECT MAX(score)
		FROM learning_sessions
		WHERE student_id = ? AND assignment_id = ? AND (completed_at IS NOT NULL OR answer_count > 0)
	`
	if err := r.db.GetContext(ctx, &best, query, studentID, assignmentID); err != nil {
		return 0, false, fmt.Errorf("failed to load best score: %w", err)
	}
	if !best.Valid {
		return 0, false, nil
	}
	return int(best.Int64), true, nil
}

// OpenTimed retrieves incomplete sessions whose assignment has a time limit
func (r *SessionRepository) OpenTimed(ctx context.Context) ([]TimedSession, error) {
	var sessions []TimedSession
	query := `
		SELECT ` + sessionColumns + `, a.time_limit_seconds
		FROM learning_sessions s
		INNER JOIN assignments a ON a.id = s.assignment_id
		WHERE s.completed_at IS NULL AND a.time_limit_seconds > 0
		ORDER BY s.id
	`
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("failed to load open timed sessions: %w", err)
	}
	return sessions, nil
}
