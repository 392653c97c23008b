package analytics

import (
	"maps"

	"github.com/phrazzld/realitycheck-api/internal/domain"
)

// Accuracy buckets reported by RegretBuckets.
const (
	BucketLow    = "Low"
	BucketMedium = "Medium"
	BucketHigh   = "High"
)

// highRegretIndex is the regret index at which a decision counts as regretted.
const highRegretIndex = 60

// CategoryScore pairs a category with an averaged score.
type CategoryScore struct {
	Category domain.Category `json:"category"`
	Score    float64         `json:"score"`
}

// RegretBuckets splits completed decisions with an accuracy into Low (<50),
// Medium (50..75) and High (>75) and reports each bucket's share in percent.
// The map is empty when no decision qualifies.
func (a *Aggregator) RegretBuckets() map[string]float64 {
	return maps.Clone(memo(a, "regret_buckets", regretBuckets))
}

func regretBuckets(rs []record) map[string]float64 {
	var low, medium, high int
	for _, r := range rs {
		if !r.completed || !r.hasAccuracy {
			continue
		}
		switch {
		case r.accuracy < 50:
			low++
		case r.accuracy <= 75:
			medium++
		default:
			high++
		}
	}
	total := low + medium + high
	if total == 0 {
		return map[string]float64{}
	}
	pct := func(n int) float64 { return float64(n) / float64(total) * 100 }
	return map[string]float64{
		BucketLow:    pct(low),
		BucketMedium: pct(medium),
		BucketHigh:   pct(high),
	}
}

// RegretScoreByCategory averages the regret index per category over
// completed, categorized decisions that have one.
func (a *Aggregator) RegretScoreByCategory() map[domain.Category]float64 {
	return maps.Clone(memo(a, "regret_by_category", regretByCategory))
}

func regretByCategory(rs []record) map[domain.Category]float64 {
	groups := make(map[domain.Category][]float64)
	for _, r := range rs {
		if r.completed && r.hasRegret && r.Category != "" {
			groups[r.Category] = append(groups[r.Category], r.regret)
		}
	}
	return meanByCategory(groups)
}

// TopRegretCategory returns the category with the highest average regret
// index. Ties go to the alphabetically first category.
func (a *Aggregator) TopRegretCategory() (CategoryScore, bool) {
	scores := a.RegretScoreByCategory()
	return topCategory(scores)
}

func topCategory(scores map[domain.Category]float64) (CategoryScore, bool) {
	var best CategoryScore
	found := false
	for _, c := range sortedCategories(scores) {
		if !found || scores[c] > best.Score {
			best = CategoryScore{Category: c, Score: scores[c]}
			found = true
		}
	}
	return best, found
}

type repeatedRegretResult struct {
	title string
	ok    bool
}

// RepeatedRegret looks for a kind of decision that keeps being regretted.
// Among decisions with a regret index of at least 60 it returns the first
// title sharing a word with another such title. Failing that, it returns a
// title from the most common category if that category holds two or more of
// them.
func (a *Aggregator) RepeatedRegret() (string, bool) {
	res := memo(a, "repeated_regret", repeatedRegret)
	return res.title, res.ok
}

func repeatedRegret(rs []record) repeatedRegretResult {
	var regretted []record
	for _, r := range rs {
		if r.completed && r.hasRegret && r.regret >= highRegretIndex {
			regretted = append(regretted, r)
		}
	}
	if len(regretted) < 2 {
		return repeatedRegretResult{}
	}

	sets := make([]map[string]struct{}, len(regretted))
	counts := make(map[string]int)
	for i, r := range regretted {
		sets[i] = tokenSet(r.Title)
		for w := range sets[i] {
			counts[w]++
		}
	}
	for i, set := range sets {
		for w := range set {
			if counts[w] >= 2 {
				return repeatedRegretResult{title: regretted[i].Title, ok: true}
			}
		}
	}

	byCategory := make(map[domain.Category][]record)
	for _, r := range regretted {
		c := r.DisplayCategory()
		byCategory[c] = append(byCategory[c], r)
	}
	var best []record
	for _, c := range sortedCategories(byCategory) {
		if len(byCategory[c]) > len(best) {
			best = byCategory[c]
		}
	}
	if len(best) >= 2 {
		return repeatedRegretResult{title: best[0].Title, ok: true}
	}
	return repeatedRegretResult{}
}
