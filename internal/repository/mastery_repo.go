package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"wordmastery/internal/database"
	"wordmastery/internal/models"
)

const masteryColumns = `id, student_id, word_id, stage, stage_streak, total_attempts, total_correct,
	review_count, mastered_at, review_due_at, created_at, updated_at`

// MasteryRepository handles word mastery database operations
type MasteryRepository struct {
	db database.DBTX
}

// NewMasteryRepository creates a new mastery repository
func NewMasteryRepository(db database.DBTX) *MasteryRepository {
	return &MasteryRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *MasteryRepository) WithTx(tx database.DBTX) *MasteryRepository {
	return &MasteryRepository{db: tx}
}

// Get retrieves a mastery record by ID
func (r *MasteryRepository) Get(ctx context.Context, id int64) (*models.WordMastery, error) {
	var m models.WordMastery
	if err := r.db.GetContext(ctx, &m, `SELECT `+masteryColumns+` FROM word_mastery WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// GetByStudentWord retrieves the record for one student and word
func (r *MasteryRepository) GetByStudentWord(ctx context.Context, studentID, wordID int64) (*models.WordMastery, error) {
	var m models.WordMastery
	query := `SELECT ` + masteryColumns + ` FROM word_mastery WHERE student_id = ? AND word_id = ?`
	if err := r.db.GetContext(ctx, &m, query, studentID, wordID); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// GetOrCreate returns the record for a student and word, creating it at stage 1
// the first time the word is seen.
func (r *MasteryRepository) GetOrCreate(ctx context.Context, studentID, wordID int64, now time.Time) (*models.WordMastery, bool, error) {
	m, err := r.GetByStudentWord(ctx, studentID, wordID)
	if err == nil {
		return m, false, nil
	}
	if err != ErrNotFound {
		return nil, false, err
	}

	m = models.NewWordMastery(studentID, wordID)
	m.CreatedAt = now
	m.UpdatedAt = now
	id, err := r.db.ExecReturningID(ctx, `
		INSERT INTO word_mastery (student_id, word_id, stage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, studentID, wordID, m.Stage, now, now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create mastery for word %d: %w", wordID, err)
	}
	m.ID = id
	return m, true, nil
}

// ListByStudent retrieves every record of a student
func (r *MasteryRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.WordMastery, error) {
	var records []models.WordMastery
	query := `SELECT ` + masteryColumns + ` FROM word_mastery WHERE student_id = ? ORDER BY word_id`
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("failed to list mastery: %w", err)
	}
	return records, nil
}

// ListByStudentWords retrieves the student's records for the given words, keyed by word ID
func (r *MasteryRepository) ListByStudentWords(ctx context.Context, studentID int64, wordIDs []int64) (map[int64]*models.WordMastery, error) {
	out := make(map[int64]*models.WordMastery, len(wordIDs))
	if len(wordIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+masteryColumns+` FROM word_mastery WHERE student_id = ? AND word_id IN (?)`, studentID, wordIDs)
	if err != nil {
		return nil, err
	}
	var records []models.WordMastery
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list mastery: %w", err)
	}
	for i := range records {
		out[records[i].WordID] = &records[i]
	}
	return out, nil
}

// Update saves every mutable field of a record
func (r *MasteryRepository) Update(ctx context.Context, m *models.WordMastery, now time.Time) error {
	if err := m.Validate(); err != nil {
		return err
	}
	m.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `
		UPDATE word_mastery
		SET stage = ?, stage_streak = ?, total_attempts = ?, total_correct = ?, review_count = ?,
		    mastered_at = ?, review_due_at = ?, updated_at = ?
		WHERE id = ?
	`, m.Stage, m.StageStreak, m.TotalAttempts, m.TotalCorrect, m.ReviewCount,
		m.MasteredAt, m.ReviewDueAt, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update mastery %d: %w", m.ID, err)
	}
	return nil
}
