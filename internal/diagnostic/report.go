package diagnostic

import (
	"math"
	"sort"
	"time"

	"wordmastery/internal/models"
	"wordmastery/internal/question"
)

// SkillArea groups question kinds by the ability they test
type SkillArea string

const (
	SkillMeaning   SkillArea = "meaning"
	SkillRecall    SkillArea = "recall"
	SkillSpelling  SkillArea = "spelling"
	SkillListening SkillArea = "listening"
	SkillContext   SkillArea = "context"
	SkillAntonym   SkillArea = "antonym"
)

const (
	WeaknessThreshold  = 60
	StrengthThreshold  = 80
	MinAnswersForFocus = 3
)

var skillOrder = []SkillArea{SkillMeaning, SkillRecall, SkillSpelling, SkillListening, SkillContext, SkillAntonym}

// AreaFor maps a question kind onto its skill area
func AreaFor(k question.Kind) SkillArea {
	switch k {
	case question.KindL1ToEN:
		return SkillRecall
	case question.KindL1ToENTyped:
		return SkillSpelling
	case question.KindAudioToEN, question.KindAudioToL1, question.KindAudioToENTyped:
		return SkillListening
	case question.KindSentenceCloze:
		return SkillContext
	case question.KindAntonymTyped, question.KindAntonymChoice:
		return SkillAntonym
	default:
		return SkillMeaning
	}
}

// AnswerRecord is the part of a logged answer the report needs
type AnswerRecord struct {
	Kind      question.Kind
	Correct   bool
	WordLevel int
}

// Input is everything a report is derived from. When AssignmentScore is set the
// percentile ranks it against PeerScores instead of the overall score.
type Input struct {
	Answers         []AnswerRecord
	Mastery         []models.WordMastery
	CurrentLevel    int
	AssignmentScore *int
	PeerScores      []int
	Now             time.Time
}

type SkillScore struct {
	Area    SkillArea `json:"area"`
	Answers int       `json:"answers"`
	Correct int       `json:"correct"`
	Score   int       `json:"score"`
}

type LevelScore struct {
	Level   int `json:"level"`
	Answers int `json:"answers"`
	Score   int `json:"score"`
}

// Report is a student's diagnostic summary
type Report struct {
	Skills            []SkillScore `json:"skills"`
	Levels            []LevelScore `json:"levels"`
	Weaknesses        []SkillArea  `json:"weaknesses"`
	Strengths         []SkillArea  `json:"strengths"`
	OverallScore      int          `json:"overall_score"`
	AssignmentScore   *int         `json:"assignment_score,omitempty"`
	TotalAnswers      int          `json:"total_answers"`
	Percentile        int          `json:"percentile"`
	PeerCount         int          `json:"peer_count"`
	CurrentLevel      int          `json:"current_level"`
	StageDistribution map[int]int  `json:"stage_distribution"`
	MasteredCount     int          `json:"mastered_count"`
	DueForReview      int          `json:"due_for_review"`
}

// RoundPercent returns num/den as a percentage rounded half away from zero
func RoundPercent(num, den int) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(100 * float64(num) / float64(den)))
}

// Percentile ranks score among peers: peers below plus half of ties
func Percentile(score int, peers []int) int {
	if len(peers) == 0 {
		return 0
	}
	below, ties := 0, 0
	for _, p := range peers {
		switch {
		case p < score:
			below++
		case p == score:
			ties++
		}
	}
	return int(math.Round(100 * (float64(below) + 0.5*float64(ties)) / float64(len(peers))))
}

// Build derives a report from the input
func Build(in Input) Report {
	r := Report{
		CurrentLevel:      in.CurrentLevel,
		StageDistribution: make(map[int]int, models.MaxStage),
		PeerCount:         len(in.PeerScores),
	}

	type tally struct{ answers, correct int }
	byArea := map[SkillArea]*tally{}
	byLevel := map[int]*tally{}
	correct := 0
	for _, a := range in.Answers {
		area := AreaFor(a.Kind)
		if byArea[area] == nil {
			byArea[area] = &tally{}
		}
		if byLevel[a.WordLevel] == nil {
			byLevel[a.WordLevel] = &tally{}
		}
		byArea[area].answers++
		byLevel[a.WordLevel].answers++
		if a.Correct {
			byArea[area].correct++
			byLevel[a.WordLevel].correct++
			correct++
		}
	}
	r.TotalAnswers = len(in.Answers)
	r.OverallScore = RoundPercent(correct, len(in.Answers))

	for _, area := range skillOrder {
		t := byArea[area]
		if t == nil {
			continue
		}
		s := SkillScore{Area: area, Answers: t.answers, Correct: t.correct, Score: RoundPercent(t.correct, t.answers)}
		r.Skills = append(r.Skills, s)
		if s.Answers >= MinAnswersForFocus && s.Score < WeaknessThreshold {
			r.Weaknesses = append(r.Weaknesses, area)
		}
		if s.Score >= StrengthThreshold {
			r.Strengths = append(r.Strengths, area)
		}
	}

	levels := make([]int, 0, len(byLevel))
	for l := range byLevel {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	for _, l := range levels {
		t := byLevel[l]
		r.Levels = append(r.Levels, LevelScore{Level: l, Answers: t.answers, Score: RoundPercent(t.correct, t.answers)})
	}

	for i := range in.Mastery {
		m := &in.Mastery[i]
		r.StageDistribution[m.Stage]++
		if m.IsMastered() {
			r.MasteredCount++
		}
		if m.IsReviewDue(in.Now) {
			r.DueForReview++
		}
	}

	switch {
	case in.AssignmentScore != nil:
		score := *in.AssignmentScore
		r.AssignmentScore = &score
		r.Percentile = Percentile(score, in.PeerScores)
	case r.TotalAnswers > 0:
		r.Percentile = Percentile(r.OverallScore, in.PeerScores)
	}
	return r
}
