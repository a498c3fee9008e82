package mastery

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmastery/internal/lexicon"
	"wordmastery/internal/models"
	"wordmastery/internal/question"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestRequiredStreak(t *testing.T) {
	fixtures := map[int]int{1: 2, 5: 3, 8: 4, 11: 5, 14: 6}
	for tier, want := range fixtures {
		assert.Equal(t, want, RequiredStreak(tier), "tier %d", tier)
	}

	prev := RequiredStreak(1)
	for tier := 2; tier <= 15; tier++ {
		cur := RequiredStreak(tier)
		assert.GreaterOrEqual(t, cur, prev, "tier %d", tier)
		prev = cur
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Correct, Classify(true, false))
	assert.Equal(t, Almost, Classify(false, true))
	assert.Equal(t, Incorrect, Classify(false, false))
}

func TestStreakPolicyAdvancesAfterStreak(t *testing.T) {
	p := StreakPolicy{Schedule: DefaultReviewSchedule()}
	m := models.NewWordMastery(1, 1)

	tr := p.Apply(m, Correct, 2, testNow)
	assert.False(t, tr.Advanced)
	assert.Equal(t, 1, m.StageStreak)

	tr = p.Apply(m, Correct, 2, testNow)
	assert.True(t, tr.Advanced)
	assert.Equal(t, 2, m.Stage)
	assert.Equal(t, 0, m.StageStreak)
	assert.Equal(t, 2, m.TotalCorrect)
	assert.Equal(t, 2, m.TotalAttempts)
}

func TestStreakPolicyMastersPastLastStage(t *testing.T) {
	p := StreakPolicy{Schedule: DefaultReviewSchedule()}
	m := &models.WordMastery{Stage: models.MaxStage, StageStreak: 1}

	tr := p.Apply(m, Correct, 1, testNow)
	require.True(t, tr.Mastered)
	assert.Equal(t, models.MaxStage, m.Stage)
	require.NotNil(t, m.MasteredAt)
	require.NotNil(t, m.ReviewDueAt)
	assert.Equal(t, testNow.Add(72*time.Hour), *m.ReviewDueAt)
	require.NoError(t, m.Validate())

	tr = p.Apply(m, Correct, 1, testNow)
	assert.False(t, tr.Mastered)
	assert.Equal(t, 0, m.StageStreak)
}

func TestStreakPolicyDemotesAndClearsMastery(t *testing.T) {
	p := StreakPolicy{Schedule: DefaultReviewSchedule()}
	at := testNow
	m := &models.WordMastery{Stage: models.MaxStage, MasteredAt: &at, ReviewDueAt: &at, StageStreak: 3}

	tr := p.Apply(m, Incorrect, 5, testNow)
	assert.True(t, tr.Demoted)
	assert.Equal(t, 4, m.Stage)
	assert.Nil(t, m.MasteredAt)
	assert.Nil(t, m.ReviewDueAt)
	assert.Equal(t, 0, m.StageStreak)
	require.NoError(t, m.Validate())

	floor := models.NewWordMastery(1, 2)
	tr = p.Apply(floor, Incorrect, 5, testNow)
	assert.False(t, tr.Demoted)
	assert.Equal(t, models.MinStage, floor.Stage)
}

func TestAlmostOnlyCountsAttempt(t *testing.T) {
	for _, p := range []Policy{StreakPolicy{}, StageTestPolicy{}} {
		m := &models.WordMastery{Stage: 3, StageStreak: 1}
		tr := p.Apply(m, Almost, 4, testNow)
		assert.Equal(t, 3, m.Stage, p.Name())
		assert.Equal(t, 1, m.StageStreak, p.Name())
		assert.Equal(t, 1, m.TotalAttempts, p.Name())
		assert.Equal(t, 0, m.TotalCorrect, p.Name())
		assert.Equal(t, tr.FromStage, tr.ToStage, p.Name())
	}
}

func TestStageTestPolicy(t *testing.T) {
	p := StageTestPolicy{Schedule: DefaultReviewSchedule()}
	m := models.NewWordMastery(1, 1)

	for i := 0; i < 10; i++ {
		p.Apply(m, Incorrect, 14, testNow)
	}
	assert.Equal(t, models.MinStage, m.Stage)
	assert.Equal(t, 10, m.TotalAttempts)

	for stage := 2; stage <= models.MaxStage; stage++ {
		tr := p.Apply(m, Correct, 14, testNow)
		assert.True(t, tr.Advanced)
		assert.Equal(t, stage, m.Stage)
	}
	tr := p.Apply(m, Correct, 14, testNow)
	assert.True(t, tr.Mastered)
	require.NoError(t, m.Validate())

	p.Apply(m, Incorrect, 14, testNow)
	assert.True(t, m.IsMastered())
	assert.Equal(t, models.MaxStage, m.Stage)
}

func TestWrongAnswerRunsDifferByPolicy(t *testing.T) {
	stageTest := &models.WordMastery{Stage: 4}
	mastery := &models.WordMastery{Stage: 4}
	st := StageTestPolicy{}
	sp := StreakPolicy{}

	prev := mastery.Stage
	for i := 0; i < 5; i++ {
		st.Apply(stageTest, Incorrect, 3, testNow)
		sp.Apply(mastery, Incorrect, 3, testNow)

		assert.Equal(t, 4, stageTest.Stage)
		if prev > models.MinStage {
			assert.Less(t, mastery.Stage, prev)
		} else {
			assert.Equal(t, models.MinStage, mastery.Stage)
		}
		prev = mastery.Stage
	}
	assert.Equal(t, models.MinStage, mastery.Stage)
}

func TestStageInvariantUnderRandomRuns(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, p := range []Policy{StreakPolicy{Schedule: DefaultReviewSchedule()}, StageTestPolicy{Schedule: DefaultReviewSchedule()}} {
		m := models.NewWordMastery(1, 1)
		now := testNow
		for i := 0; i < 500; i++ {
			now = now.Add(time.Duration(rng.Intn(96)) * time.Hour)
			ReenterIfDue(m, now)
			p.Apply(m, Outcome(rng.Intn(3)), 1+rng.Intn(15), now)
			require.NoError(t, m.Validate(), "%s step %d", p.Name(), i)
		}
	}
}

func TestPolicyFor(t *testing.T) {
	p, err := PolicyFor(models.ModeMastery, DefaultReviewSchedule())
	require.NoError(t, err)
	assert.IsType(t, StreakPolicy{}, p)

	p, err = PolicyFor(models.ModeStageTest, DefaultReviewSchedule())
	require.NoError(t, err)
	assert.IsType(t, StageTestPolicy{}, p)

	_, err = PolicyFor(models.ModeLevelup, DefaultReviewSchedule())
	assert.Error(t, err)
}

func TestReviewSchedule(t *testing.T) {
	s := DefaultReviewSchedule()
	assert.Equal(t, 3*24*time.Hour, s.Interval(0))
	assert.Equal(t, 7*24*time.Hour, s.Interval(1))
	assert.Equal(t, 30*24*time.Hour, s.Interval(2))
	assert.Equal(t, 30*24*time.Hour, s.Interval(9))
	assert.Equal(t, 3*24*time.Hour, ReviewSchedule{}.Interval(-1))
}

func TestReenterIfDue(t *testing.T) {
	mastered := testNow.Add(-10 * 24 * time.Hour)
	due := testNow.Add(-time.Hour)
	m := &models.WordMastery{Stage: models.MaxStage, MasteredAt: &mastered, ReviewDueAt: &due}

	require.True(t, ReenterIfDue(m, testNow))
	assert.Equal(t, ReviewStage, m.Stage)
	assert.Nil(t, m.MasteredAt)
	assert.Equal(t, 1, m.ReviewCount)

	later := testNow.Add(time.Hour)
	notDue := &models.WordMastery{Stage: models.MaxStage, MasteredAt: &mastered, ReviewDueAt: &later}
	assert.False(t, ReenterIfDue(notDue, testNow))
	assert.Equal(t, models.MaxStage, notDue.Stage)
}

func TestSecondMasteryUsesLongerInterval(t *testing.T) {
	p := StreakPolicy{Schedule: DefaultReviewSchedule()}
	m := &models.WordMastery{Stage: models.MaxStage, ReviewCount: 1, StageStreak: 1}
	p.Apply(m, Correct, 1, testNow)
	require.NotNil(t, m.ReviewDueAt)
	assert.Equal(t, testNow.Add(7*24*time.Hour), *m.ReviewDueAt)
}

func TestStageKinds(t *testing.T) {
	assert.Equal(t, []question.Kind{question.KindENToL1, question.KindEmojiToEN}, StageKinds(1, nil))
	assert.Equal(t, []question.Kind{question.KindL1ToENTyped, question.KindAntonymTyped}, StageKinds(9, nil))

	selected := []question.Kind{question.KindAudioToEN, question.KindSentenceCloze}
	assert.Equal(t, []question.Kind{question.KindSentenceCloze, question.KindAudioToEN}, StageKinds(3, selected))
	assert.Equal(t, []question.Kind{question.KindAudioToEN, question.KindSentenceCloze}, StageKinds(2, selected))
}

func TestPlannerQuestion(t *testing.T) {
	words := []models.Word{
		{ID: 1, English: "cat", Korean: "고양이", Level: 1},
		{ID: 2, English: "dog", Korean: "개", Level: 1},
		{ID: 3, English: "bird", Korean: "새", Level: 1},
		{ID: 4, English: "fish", Korean: "물고기", Level: 1},
	}
	reg := question.NewRegistry(lexicon.NewEmojiTable(lexicon.DefaultEmojiEntries(), nil))
	planner := Planner{Registry: reg, ChoiceCount: 4}
	pool := question.NewPool(words, rand.New(rand.NewSource(1)))

	m := &models.WordMastery{Stage: 1}
	spec, err := planner.Question(m, words[0], pool, nil)
	require.NoError(t, err)
	assert.Equal(t, question.KindENToL1, spec.Kind)

	m.TotalAttempts = 1
	spec, err = planner.Question(m, words[0], pool, nil)
	require.NoError(t, err)
	assert.Equal(t, question.KindEmojiToEN, spec.Kind)

	m.Stage = 4
	spec, err = planner.Question(m, words[0], pool, []question.Kind{question.KindAntonymChoice})
	require.NoError(t, err)
	assert.Equal(t, question.KindENToL1, spec.Kind)
}
