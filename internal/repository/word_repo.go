package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"wordmastery/internal/database"
	"wordmastery/internal/models"
)

const wordColumns = `id, english, korean, level, lesson, part_of_speech, antonym, created_at`

// WordRepository reads and writes the word catalog
type WordRepository struct {
	db database.DBTX
}

// NewWordRepository creates a new word repository
func NewWordRepository(db database.DBTX) *WordRepository {
	return &WordRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *WordRepository) WithTx(tx database.DBTX) *WordRepository {
	return &WordRepository{db: tx}
}

// GetByID retrieves a word and its example sentences
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var w models.Word
	query := `SELECT ` + wordColumns + ` FROM words WHERE id = ?`
	if err := r.db.GetContext(ctx, &w, query, id); err != nil {
		return nil, notFound(err)
	}
	words := []models.Word{w}
	if err := r.attachExamples(ctx, words); err != nil {
		return nil, err
	}
	return &words[0], nil
}

// WordsByIDs retrieves the given words. Missing ids are skipped.
func (r *WordRepository) WordsByIDs(ctx context.Context, ids []int64) ([]models.Word, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+wordColumns+` FROM words WHERE id IN (?) ORDER BY level, lesson, id`, ids)
	if err != nil {
		return nil, err
	}
	var words []models.Word
	if err := r.db.SelectContext(ctx, &words, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load words: %w", err)
	}
	return words, r.attachExamples(ctx, words)
}

// AssignmentWords retrieves the word list of an assignment in list order
func (r *WordRepository) AssignmentWords(ctx context.Context, assignmentID int64) ([]models.Word, error) {
	query := `
		SELECT w.id, w.english, w.korean, w.level, w.lesson, w.part_of_speech, w.antonym, w.created_at
		FROM words w
		INNER JOIN assignment_words aw ON aw.word_id = w.id
		WHERE aw.assignment_id = ?
		ORDER BY aw.position, w.id
	`
	var words []models.Word
	if err := r.db.SelectContext(ctx, &words, query, assignmentID); err != nil {
		return nil, fmt.Errorf("failed to load assignment words: %w", err)
	}
	return words, r.attachExamples(ctx, words)
}

// WordsInLevelRange retrieves every word with min <= level <= max
func (r *WordRepository) WordsInLevelRange(ctx context.Context, min, max int) ([]models.Word, error) {
	query := `SELECT ` + wordColumns + ` FROM words WHERE level BETWEEN ? AND ? ORDER BY level, lesson, id`
	var words []models.Word
	if err := r.db.SelectContext(ctx, &words, query, min, max); err != nil {
		return nil, fmt.Errorf("failed to load words in range: %w", err)
	}
	return words, r.attachExamples(ctx, words)
}

// Count returns the number of words in the catalog
func (r *WordRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM words`)
	return n, err
}

// Upsert inserts w or updates the existing row with the same english/korean pair.
// Example sentences are replaced. It reports whether a new row was created.
func (r *WordRepository) Upsert(ctx context.Context, w *models.Word) (bool, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `SELECT id FROM words WHERE english = ? AND korean = ?`, w.English, w.Korean)
	created := false
	switch notFound(err) {
	case nil:
		_, err = r.db.ExecContext(ctx, `
			UPDATE words SET level = ?, lesson = ?, part_of_speech = ?, antonym = ?
			WHERE id = ?
		`, w.Level, w.Lesson, w.PartOfSpeech, w.Antonym, id)
		if err != nil {
			return false, fmt.Errorf("failed to update word %q: %w", w.English, err)
		}
	case ErrNotFound:
		id, err = r.db.ExecReturningID(ctx, `
			INSERT INTO words (english, korean, level, lesson, part_of_speech, antonym)
			VALUES (?, ?, ?, ?, ?, ?)
		`, w.English, w.Korean, w.Level, w.Lesson, w.PartOfSpeech, w.Antonym)
		if err != nil {
			return false, fmt.Errorf("failed to insert word %q: %w", w.English, err)
		}
		created = true
	default:
		return false, err
	}
	w.ID = id

	if err := r.ReplaceExamples(ctx, id, w.Examples); err != nil {
		return false, err
	}
	return created, nil
}

// ReplaceExamples swaps the example sentences of a word
func (r *WordRepository) ReplaceExamples(ctx context.Context, wordID int64, examples []models.ExampleSentence) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM word_examples WHERE word_id = ?`, wordID); err != nil {
		return fmt.Errorf("failed to clear examples: %w", err)
	}
	for i, ex := range examples {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO word_examples (word_id, position, english, korean)
			VALUES (?, ?, ?, ?)
		`, wordID, i, ex.English, ex.Korean)
		if err != nil {
			return fmt.Errorf("failed to insert example: %w", err)
		}
	}
	return nil
}

func (r *WordRepository) attachExamples(ctx context.Context, words []models.Word) error {
	if len(words) == 0 {
		return nil
	}
	ids := make([]int64, len(words))
	index := make(map[int64]int, len(words))
	for i, w := range words {
		ids[i] = w.ID
		index[w.ID] = i
	}
	query, args, err := sqlx.In(`
		SELECT id, word_id, position, english, korean
		FROM word_examples
		WHERE word_id IN (?)
		ORDER BY word_id, position
	`, ids)
	if err != nil {
		return err
	}
	var examples []models.ExampleSentence
	if err := r.db.SelectContext(ctx, &examples, query, args...); err != nil {
		return fmt.Errorf("failed to load examples: %w", err)
	}
	for _, ex := range examples {
		i := index[ex.WordID]
		words[i].Examples = append(words[i].Examples, ex)
	}
	return nil
}
