package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wordmastery/internal/database"
	"wordmastery/internal/models"
	"wordmastery/internal/repository"
)

var testStart = time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.InitializeInMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.RunMigrations(context.Background())
	require.NoError(t, err)
	return db
}

func testWords() []models.Word {
	return []models.Word{
		{English: "apple", Korean: "사과", Level: 1, PartOfSpeech: "n"},
		{English: "river", Korean: "강", Level: 1, PartOfSpeech: "n"},
		{English: "brave", Korean: "용감한", Level: 2, PartOfSpeech: "adj", Antonym: "cowardly"},
		{English: "forest", Korean: "숲", Level: 2, PartOfSpeech: "n"},
		{English: "happy", Korean: "행복한", Level: 3, PartOfSpeech: "adj", Antonym: "sad"},
		{English: "window", Korean: "창문", Level: 3, PartOfSpeech: "n"},
		{English: "mountain", Korean: "산", Level: 4, PartOfSpeech: "n"},
		{English: "camera", Korean: "카메라", Level: 4, PartOfSpeech: "n"},
		{English: "give up", Korean: "포기하다", Level: 5, PartOfSpeech: "v",
			Examples: []models.ExampleSentence{{English: "Never give up on your dreams.", Korean: "꿈을 포기하지 마."}}},
		{English: "teacher", Korean: "선생님", Level: 5, PartOfSpeech: "n"},
	}
}

type fixture struct {
	db          *database.DB
	clock       *fakeClock
	svc         *Services
	catalog     *repository.WordRepository
	assignments *repository.AssignmentRepository
	words       map[string]models.Word
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	ctx := context.Background()

	catalog := repository.NewWordRepository(db)
	words := make(map[string]models.Word)
	for _, w := range testWords() {
		w := w
		_, err := catalog.Upsert(ctx, &w)
		require.NoError(t, err)
		words[w.English] = w
	}

	clock := &fakeClock{now: testStart}
	opts := DefaultOptions()
	opts.Seed = 42
	svc := New(Deps{DB: db, Catalog: catalog, Clock: clock, Logger: zap.NewNop(), Options: opts})

	return &fixture{
		db:          db,
		clock:       clock,
		svc:         svc,
		catalog:     catalog,
		assignments: repository.NewAssignmentRepository(db),
		words:       words,
	}
}

func (f *fixture) assignment(t *testing.T, a models.Assignment, english ...string) *models.Assignment {
	t.Helper()
	ctx := context.Background()
	a.IsActive = true
	if a.LevelMin == 0 {
		a.LevelMin = 1
	}
	if a.LevelMax == 0 {
		a.LevelMax = 15
	}
	require.NoError(t, f.assignments.Create(ctx, &a))
	ids := make([]int64, len(english))
	for i, e := range english {
		w, ok := f.words[e]
		require.True(t, ok, "unknown fixture word %q", e)
		ids[i] = w.ID
	}
	require.NoError(t, f.assignments.SetWords(ctx, a.ID, ids))
	return &a
}

func (f *fixture) sessionRow(t *testing.T, id int64) *models.LearningSession {
	t.Helper()
	s, err := repository.NewSessionRepository(f.db).Get(context.Background(), id)
	require.NoError(t, err)
	return s
}

func (f *fixture) countSessions(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.GetContext(context.Background(), &n, `SELECT COUNT(*) FROM learning_sessions`))
	return n
}

var sixWords = []string{"apple", "river", "brave", "forest", "happy", "window"}
