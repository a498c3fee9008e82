package levelup

// LessonXP is the XP needed to leave a tier. A narrower range of active
// levels needs more XP per tier.
func LessonXP(book, activeLevels int) int {
	if activeLevels < 1 {
		activeLevels = 1
	}
	perLevel := (15 + activeLevels - 1) / activeLevels
	return (4 + book) * perLevel * 4
}

// BaseXP is the reward for a correct answer on a word of wordLevel while at book
func BaseXP(book, wordLevel int) int {
	if wordLevel < book {
		if book > 4 {
			return book
		}
		return 4
	}
	return 8 + 2*book
}

// ComboBonus applies from the third consecutive correct answer
func ComboBonus(combo int) int {
	if combo < 3 {
		return 0
	}
	bonus := combo/5 + 1
	if bonus > 5 {
		return 5
	}
	return bonus
}

// SpeedBonus rewards fast live answers. Batch replay never applies it.
func SpeedBonus(timeTakenMs int) int {
	switch {
	case timeTakenMs <= 0:
		return 0
	case timeTakenMs < 2000:
		return 4
	case timeTakenMs < 4000:
		return 3
	case timeTakenMs < 6000:
		return 2
	case timeTakenMs < 10000:
		return 1
	}
	return 0
}

// MissPenalty is the (positive) XP lost on the misses-th consecutive wrong answer
func MissPenalty(book, misses int) int {
	switch {
	case misses <= 1:
		return 3 + book
	case misses == 2:
		return 5 + book
	default:
		return 8 + book
	}
}

// Answer is one scored response in the order it was given
type Answer struct {
	Correct     bool
	WordLevel   int
	TimeTakenMs int
}

// Progress is the XP state of one attempt
type Progress struct {
	Book      int
	XP        int
	Combo     int
	Misses    int
	BestCombo int
}

// StepResult reports what one answer did
type StepResult struct {
	Delta       int
	From        int
	To          int
	LeveledUp   bool
	LeveledDown bool
}

// Step applies one answer to p. Live scoring and batch replay both go through
// Step; speed selects whether the speed bonus applies.
func Step(p *Progress, ladder Ladder, a Answer, speed bool) StepResult {
	if !ladder.Contains(p.Book) {
		p.Book = ladder.Snap(p.Book)
	}
	r := StepResult{From: p.Book, To: p.Book}

	if a.Correct {
		p.Combo++
		p.Misses = 0
		if p.Combo > p.BestCombo {
			p.BestCombo = p.Combo
		}
		r.Delta = BaseXP(p.Book, a.WordLevel) + ComboBonus(p.Combo)
		if speed {
			r.Delta += SpeedBonus(a.TimeTakenMs)
		}
	} else {
		p.Combo = 0
		p.Misses++
		r.Delta = -MissPenalty(p.Book, p.Misses)
	}

	p.XP += r.Delta
	need := LessonXP(p.Book, ladder.Len())
	switch {
	case p.XP >= need:
		if next, ok := ladder.Next(p.Book); ok {
			p.Book = next
			p.XP = 0
			r.LeveledUp = true
		} else {
			p.XP = need
		}
	case p.XP < 0:
		if prev, ok := ladder.Prev(p.Book); ok {
			p.Book = prev
			p.XP = LessonXP(prev, ladder.Len()) / 2
			r.LeveledDown = true
		} else {
			p.XP = 0
		}
	}

	r.To = p.Book
	return r
}
