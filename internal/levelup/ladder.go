package levelup

import "sort"

// Ladder is the ordered set of tiers that have eligible words
type Ladder struct {
	levels []int
}

// NewLadder sorts and de-duplicates levels
func NewLadder(levels []int) Ladder {
	seen := make(map[int]bool, len(levels))
	out := make([]int, 0, len(levels))
	for _, l := range levels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	sort.Ints(out)
	return Ladder{levels: out}
}

// Levels returns a copy of the tiers, lowest first
func (l Ladder) Levels() []int {
	return append([]int(nil), l.levels...)
}

func (l Ladder) Len() int { return len(l.levels) }

func (l Ladder) Empty() bool { return len(l.levels) == 0 }

func (l Ladder) Contains(level int) bool {
	i := sort.SearchInts(l.levels, level)
	return i < len(l.levels) && l.levels[i] == level
}

// Next returns the lowest tier above level
func (l Ladder) Next(level int) (int, bool) {
	i := sort.SearchInts(l.levels, level+1)
	if i < len(l.levels) {
		return l.levels[i], true
	}
	return 0, false
}

// Prev returns the highest tier below level
func (l Ladder) Prev(level int) (int, bool) {
	i := sort.SearchInts(l.levels, level)
	if i > 0 {
		return l.levels[i-1], true
	}
	return 0, false
}

// Snap returns the lowest tier at or above level, or the top tier when none is
func (l Ladder) Snap(level int) int {
	if len(l.levels) == 0 {
		return level
	}
	i := sort.SearchInts(l.levels, level)
	if i < len(l.levels) {
		return l.levels[i]
	}
	return l.levels[len(l.levels)-1]
}

// index returns the position of level on the ladder, or -1
func (l Ladder) index(level int) int {
	i := sort.SearchInts(l.levels, level)
	if i < len(l.levels) && l.levels[i] == level {
		return i
	}
	return -1
}

// gradeTiers is the recommended starting tier for each school grade
var gradeTiers = map[int]int{
	1: 1, 2: 1, 3: 2, 4: 3, 5: 4, 6: 5,
	7: 6, 8: 7, 9: 8, 10: 10, 11: 12, 12: 13,
}

// RecommendedTier returns the tier for a grade, clamped to the table's range
func RecommendedTier(grade int) int {
	if grade < 1 {
		grade = 1
	}
	if grade > 12 {
		grade = 12
	}
	return gradeTiers[grade]
}

// StartingTier snaps the grade's recommended tier up to the nearest eligible tier
func StartingTier(grade int, ladder Ladder) int {
	return ladder.Snap(RecommendedTier(grade))
}
