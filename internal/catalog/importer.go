package catalog

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"wordmastery/internal/database"
	"wordmastery/internal/models"
	"wordmastery/internal/repository"
)

// ExampleSeparator splits several example sentences held in one cell
const ExampleSeparator = "|"

// ImportConfig says where each field lives in the workbook. Columns are letters.
type ImportConfig struct {
	SheetName       string
	StartRow        int // first data row, 1-based
	EnglishColumn   string
	KoreanColumn    string
	LevelColumn     string
	LessonColumn    string
	PartOfSpeech    string
	AntonymColumn   string
	ExampleENColumn string
	ExampleKOColumn string
}

// DefaultImportConfig matches the layout written by the ingestion pipeline
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SheetName:       "Sheet1",
		StartRow:        2,
		EnglishColumn:   "A",
		KoreanColumn:    "B",
		LevelColumn:     "C",
		LessonColumn:    "D",
		PartOfSpeech:    "E",
		AntonymColumn:   "F",
		ExampleENColumn: "G",
		ExampleKOColumn: "H",
	}
}

// ImportResult holds the result of an import
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Importer loads catalog workbooks into the words table
type Importer struct {
	db    *database.DB
	words *repository.WordRepository
	log   *zap.Logger
}

func NewImporter(db *database.DB, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{db: db, words: repository.NewWordRepository(db), log: log}
}

// ImportFile imports the workbook at path
func (i *Importer) ImportFile(ctx context.Context, path string, cfg ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return i.importWorkbook(ctx, f, cfg)
}

// Import reads a workbook from r
func (i *Importer) Import(ctx context.Context, r io.Reader, cfg ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return i.importWorkbook(ctx, f, cfg)
}

// importWorkbook upserts every row in one transaction. Bad rows are reported in
// the result and skipped; a database failure rolls the whole import back.
func (i *Importer) importWorkbook(ctx context.Context, f *excelize.File, cfg ImportConfig) (*ImportResult, error) {
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}
	rows, err := f.GetRows(cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	err = i.db.WithTx(ctx, func(tx *database.Tx) error {
		words := i.words.WithTx(tx)
		for n, row := range rows {
			if n < cfg.StartRow-1 {
				continue
			}
			if blankRow(row) {
				result.Skipped++
				continue
			}
			result.TotalProcessed++

			w, err := parseRow(row, cfg)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", n+1, err))
				continue
			}
			created, err := words.Upsert(ctx, w)
			if err != nil {
				return fmt.Errorf("row %d: %w", n+1, err)
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	i.log.Info("catalog imported",
		zap.String("sheet", cfg.SheetName),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func parseRow(row []string, cfg ImportConfig) (*models.Word, error) {
	w := &models.Word{
		English:      cell(row, cfg.EnglishColumn),
		Korean:       cell(row, cfg.KoreanColumn),
		PartOfSpeech: cell(row, cfg.PartOfSpeech),
		Antonym:      cell(row, cfg.AntonymColumn),
	}
	if w.English == "" {
		return nil, fmt.Errorf("english cannot be empty")
	}
	if w.Korean == "" {
		return nil, fmt.Errorf("korean cannot be empty")
	}

	level, err := strconv.Atoi(cell(row, cfg.LevelColumn))
	if err != nil || level < 1 || level > 15 {
		return nil, fmt.Errorf("level must be a number from 1 to 15, got %q", cell(row, cfg.LevelColumn))
	}
	w.Level = level
	if lesson := cell(row, cfg.LessonColumn); lesson != "" {
		if w.Lesson, err = strconv.Atoi(lesson); err != nil {
			return nil, fmt.Errorf("invalid lesson %q", lesson)
		}
	}

	english := splitExamples(cell(row, cfg.ExampleENColumn))
	korean := splitExamples(cell(row, cfg.ExampleKOColumn))
	for k, sentence := range english {
		ex := models.ExampleSentence{English: sentence}
		if k < len(korean) {
			ex.Korean = korean[k]
		}
		w.Examples = append(w.Examples, ex)
	}
	return w, nil
}

func splitExamples(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ExampleSeparator) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx, err := excelize.ColumnNameToNumber(column)
	if err != nil || idx > len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx-1])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
