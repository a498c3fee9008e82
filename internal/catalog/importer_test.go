package catalog

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wordmastery/internal/database"
	"wordmastery/internal/repository"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.InitializeInMemory("catalog_" + filepath.Base(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.RunMigrations(context.Background())
	require.NoError(t, err)
	return db
}

func workbook(t *testing.T, rows ...[]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	header := []interface{}{"english", "korean", "level", "lesson", "pos", "antonym", "example", "translation"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		row := row
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &row))
	}
	return f
}

func TestImportFile(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	f := workbook(t,
		[]interface{}{"apple", "사과", 1, 3, "n", "", "I ate an apple. | Apples are red.", "사과를 먹었다. | 사과는 빨갛다."},
		[]interface{}{"brave", "용감한", "2", "", "adj", "cowardly", "", ""},
		[]interface{}{"", "", "", "", "", "", "", ""},
		[]interface{}{"ghost", "", 3},
		[]interface{}{"tiger", "호랑이", 16},
	)
	path := filepath.Join(t.TempDir(), "words.xlsx")
	require.NoError(t, f.SaveAs(path))

	imp := NewImporter(db, nil)
	res, err := imp.ImportFile(ctx, path, DefaultImportConfig())
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalProcessed)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "Row 5")
	assert.Contains(t, res.Errors[1], "level")

	words := repository.NewWordRepository(db)
	got, err := words.WordsInLevelRange(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	apple, err := words.GetByID(ctx, got[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "apple", apple.English)
	assert.Equal(t, 3, apple.Lesson)
	require.Len(t, apple.Examples, 2)
	assert.Equal(t, "Apples are red.", apple.Examples[1].English)
	assert.Equal(t, "사과는 빨갛다.", apple.Examples[1].Korean)

	t.Run("reimport updates in place", func(t *testing.T) {
		again, err := imp.ImportFile(ctx, path, DefaultImportConfig())
		require.NoError(t, err)
		assert.Equal(t, 0, again.Created)
		assert.Equal(t, 2, again.Updated)

		n, err := words.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestImportReader(t *testing.T) {
	db := openTestDB(t)
	f := workbook(t, []interface{}{"river", "강", 1, 1, "n"})
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := NewImporter(db, nil).Import(context.Background(), bytes.NewReader(buf.Bytes()), DefaultImportConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Empty(t, res.Errors)
}

func TestImportMissingSheet(t *testing.T) {
	db := openTestDB(t)
	f := workbook(t)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	cfg := DefaultImportConfig()
	cfg.SheetName = "Words"
	_, err = NewImporter(db, nil).Import(context.Background(), bytes.NewReader(buf.Bytes()), cfg)
	assert.Error(t, err)
}

func TestCell(t *testing.T) {
	row := []string{"a", " b ", "c"}
	assert.Equal(t, "b", cell(row, "B"))
	assert.Equal(t, "", cell(row, "Z"))
	assert.Equal(t, "", cell(row, ""))
	assert.Equal(t, []string{"x", "y"}, splitExamples(" x |  | y "))
}
