package levelup

import (
	"math/rand"
	"sort"

	"wordmastery/internal/lexicon"
	"wordmastery/internal/models"
)

// adaptiveWeights are the shares for tiers 0, 1, 2 and 3+ steps from the current tier
var adaptiveWeights = []int{8, 4, 2, 1}

// Sampler picks which words to serve. Its random source only orders the result.
type Sampler struct {
	rng *rand.Rand
}

func NewSampler(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Adaptive samples n words from tiers within window ladder steps of current,
// weighting tiers by closeness to current.
func (s *Sampler) Adaptive(byTier map[int][]models.Word, ladder Ladder, current, n, window int, exclude map[int64]bool) []models.Word {
	if n <= 0 || ladder.Empty() {
		return nil
	}
	center := ladder.index(ladder.Snap(current))
	var tiers, weights []int
	for i, level := range ladder.levels {
		d := i - center
		if d < 0 {
			d = -d
		}
		if window >= 0 && d > window {
			continue
		}
		if d >= len(adaptiveWeights) {
			d = len(adaptiveWeights) - 1
		}
		tiers = append(tiers, level)
		weights = append(weights, adaptiveWeights[d])
	}
	return s.fill(byTier, tiers, weights, allocate(weights, n), exclude)
}

// Exam samples n words across every eligible tier, weighting by tier number and
// giving each tier at least one word when n allows it.
func (s *Sampler) Exam(byTier map[int][]models.Word, ladder Ladder, n int, exclude map[int64]bool) []models.Word {
	if n <= 0 || ladder.Empty() {
		return nil
	}
	tiers := ladder.Levels()
	weights := make([]int, len(tiers))
	for i, level := range tiers {
		weights[i] = level
		if weights[i] < 1 {
			weights[i] = 1
		}
	}

	var alloc []int
	if n >= len(tiers) {
		alloc = allocate(weights, n-len(tiers))
		for i := range alloc {
			alloc[i]++
		}
	} else {
		alloc = allocate(weights, n)
	}
	return s.fill(byTier, tiers, weights, alloc, exclude)
}

// fill takes the hardest unserved words per tier, moves any shortfall to the
// heaviest tiers that still have words, then shuffles the serving order.
func (s *Sampler) fill(byTier map[int][]models.Word, tiers, weights, alloc []int, exclude map[int64]bool) []models.Word {
	ranked := make([][]models.Word, len(tiers))
	for i, level := range tiers {
		var avail []models.Word
		for _, w := range byTier[level] {
			if !exclude[w.ID] {
				avail = append(avail, w)
			}
		}
		lexicon.SortHardestFirst(avail)
		ranked[i] = avail
	}

	taken := make([]int, len(tiers))
	shortfall := 0
	for i := range tiers {
		k := alloc[i]
		if k > len(ranked[i]) {
			shortfall += k - len(ranked[i])
			k = len(ranked[i])
		}
		taken[i] = k
	}

	order := make([]int, len(tiers))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return weights[order[a]] > weights[order[b]] })
	for _, i := range order {
		if shortfall == 0 {
			break
		}
		extra := len(ranked[i]) - taken[i]
		if extra > shortfall {
			extra = shortfall
		}
		taken[i] += extra
		shortfall -= extra
	}

	var out []models.Word
	for i := range tiers {
		out = append(out, ranked[i][:taken[i]]...)
	}
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// allocate splits n across weights by largest remainder; ties go to the earlier index
func allocate(weights []int, n int) []int {
	alloc := make([]int, len(weights))
	total := 0
	for _, w := range weights {
		total += w
	}
	if total == 0 || n <= 0 {
		return alloc
	}

	type rem struct{ idx, frac int }
	rems := make([]rem, len(weights))
	given := 0
	for i, w := range weights {
		alloc[i] = n * w / total
		given += alloc[i]
		rems[i] = rem{i, n * w % total}
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; given < n; i++ {
		alloc[rems[i%len(rems)].idx]++
		given++
	}
	return alloc
}

// GroupByTier buckets words by level
func GroupByTier(words []models.Word) map[int][]models.Word {
	byTier := make(map[int][]models.Word)
	for _, w := range words {
		byTier[w.Level] = append(byTier[w.Level], w)
	}
	return byTier
}

// TiersWithWords returns the levels that hold at least one word
func TiersWithWords(byTier map[int][]models.Word) []int {
	var tiers []int
	for level, words := range byTier {
		if len(words) > 0 {
			tiers = append(tiers, level)
		}
	}
	sort.Ints(tiers)
	return tiers
}
