package repository

import (
	"context"
	"fmt"

	"wordmastery/internal/database"
	"wordmastery/internal/models"
)

const assignmentColumns = `id, code, title, mode, question_types, level_min, level_max,
	time_limit_seconds, exclude_loanwords, is_active, created_at`

// AssignmentRepository handles assignment database operations
type AssignmentRepository struct {
	db database.DBTX
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db database.DBTX) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *AssignmentRepository) WithTx(tx database.DBTX) *AssignmentRepository {
	return &AssignmentRepository{db: tx}
}

// Create inserts an assignment and sets its ID
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	id, err := r.db.ExecReturningID(ctx, `
		INSERT INTO assignments (code, title, mode, question_types, level_min, level_max,
			time_limit_seconds, exclude_loanwords, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.Code, a.Title, a.Mode, a.QuestionTypes, a.LevelMin, a.LevelMax,
		a.TimeLimitSeconds, a.ExcludeLoanwords, a.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create assignment %q: %w", a.Code, err)
	}
	a.ID = id
	return nil
}

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, `SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// GetByCode retrieves an assignment by its join code
func (r *AssignmentRepository) GetByCode(ctx context.Context, code string) (*models.Assignment, error) {
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, `SELECT `+assignmentColumns+` FROM assignments WHERE code = ?`, code); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// SetActive opens or closes an assignment
func (r *AssignmentRepository) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE assignments SET is_active = ? WHERE id = ?`, active, id)
	return err
}

// SetWords replaces the word list of an assignment, keeping the given order
func (r *AssignmentRepository) SetWords(ctx context.Context, assignmentID int64, wordIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignment_words WHERE assignment_id = ?`, assignmentID); err != nil {
		return fmt.Errorf("failed to clear assignment words: %w", err)
	}
	for i, wordID := range wordIDs {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO assignment_words (assignment_id, word_id, position)
			VALUES (?, ?, ?)
		`, assignmentID, wordID, i)
		if err != nil {
			return fmt.Errorf("failed to add word %d: %w", wordID, err)
		}
	}
	return nil
}

// HasWord reports whether a word is on the assignment's word list
func (r *AssignmentRepository) HasWord(ctx context.Context, assignmentID, wordID int64) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM assignment_words WHERE assignment_id = ? AND word_id = ?`
	if err := r.db.GetContext(ctx, &n, query, assignmentID, wordID); err != nil {
		return false, fmt.Errorf("failed to check assignment word: %w", err)
	}
	return n > 0, nil
}
