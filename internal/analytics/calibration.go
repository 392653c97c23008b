package analytics

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"unicode/utf8"

	"github.com/phrazzld/realitycheck-api/internal/domain"
)

const (
	overconfidenceGap    = 20.0
	underestimateMoodGap = -2.0
	specificityThreshold = 50.0
	lowAccuracy          = 50.0
	patternLimit         = 5
)

// OverconfidencePattern is a detailed prediction that turned out badly.
type OverconfidencePattern struct {
	DecisionTitle string  `json:"decision_title"`
	Prediction    string  `json:"prediction"`
	Outcome       string  `json:"outcome"`
	Accuracy      float64 `json:"accuracy"`
	Specificity   float64 `json:"specificity"`
}

// BlindSpot is a word that keeps showing up in inaccurate predictions.
type BlindSpot struct {
	Pattern   string `json:"pattern"`
	Frequency int    `json:"frequency"`
	Impact    string `json:"impact"`
}

type message struct {
	text string
	ok   bool
}

// OverconfidenceByCategory compares stated confidence with realized
// accuracy per category and names the category with the widest gap above 20
// points.
func (a *Aggregator) OverconfidenceByCategory() (string, bool) {
	m := memo(a, "overconfidence_by_category", overconfidenceByCategory)
	return m.text, m.ok
}

func overconfidenceByCategory(rs []record) message {
	confidence := make(map[domain.Category][]float64)
	accuracy := make(map[domain.Category][]float64)
	for _, r := range rs {
		if !r.completed || r.PredictionConfidence == nil || !r.hasAccuracy || r.Category == "" {
			continue
		}
		confidence[r.Category] = append(confidence[r.Category], *r.PredictionConfidence)
		accuracy[r.Category] = append(accuracy[r.Category], r.accuracy)
	}

	var (
		worst domain.Category
		gap   float64
	)
	for _, c := range sortedCategories(confidence) {
		g := mean(confidence[c]) - mean(accuracy[c])
		if g > overconfidenceGap && (worst == "" || g > gap) {
			worst, gap = c, g
		}
	}
	if worst == "" {
		return message{}
	}
	return message{text: fmt.Sprintf("You are overconfident in decisions about %s.", worst), ok: true}
}

// UnderestimationPattern finds the category where mood turned out most
// worse than predicted, counting only misses of more than two points.
func (a *Aggregator) UnderestimationPattern() (string, bool) {
	m := memo(a, "underestimation", underestimation)
	return m.text, m.ok
}

func underestimation(rs []record) message {
	diffs := make(map[domain.Category][]float64)
	for _, r := range rs {
		if !r.completed || r.PredictedMood == nil || r.ActualMood == nil || r.Category == "" {
			continue
		}
		if d := *r.ActualMood - *r.PredictedMood; d < underestimateMoodGap {
			diffs[r.Category] = append(diffs[r.Category], d)
		}
	}
	if len(diffs) == 0 {
		return message{}
	}

	avg := meanByCategory(diffs)
	var worst domain.Category
	for _, c := range sortedCategories(avg) {
		if worst == "" || avg[c] < avg[worst] {
			worst = c
		}
	}
	if worst == domain.CategoryHealth {
		return message{text: "You underestimate the impact of late-night screens on tomorrow's mood.", ok: true}
	}
	return message{text: fmt.Sprintf("You underestimate the impact of %s decisions on your mood.", worst), ok: true}
}

// OverconfidencePatterns lists up to five completed decisions whose
// prediction was long (over 50 characters) yet scored under 50 accuracy,
// longest prediction first.
func (a *Aggregator) OverconfidencePatterns() []OverconfidencePattern {
	return slices.Clone(memo(a, "overconfidence_patterns", overconfidencePatterns))
}

func overconfidencePatterns(rs []record) []OverconfidencePattern {
	var out []OverconfidencePattern
	for _, r := range rs {
		if !r.completed || !r.hasAccuracy {
			continue
		}
		specificity := float64(utf8.RuneCountInString(r.Prediction))
		if specificity > specificityThreshold && r.accuracy < lowAccuracy {
			out = append(out, OverconfidencePattern{
				DecisionTitle: r.Title,
				Prediction:    r.Prediction,
				Outcome:       r.Outcome,
				Accuracy:      r.accuracy,
				Specificity:   specificity,
			})
		}
	}
	slices.SortStableFunc(out, func(x, y OverconfidencePattern) int {
		return cmp.Compare(y.Specificity, x.Specificity)
	})
	return out[:min(len(out), patternLimit)]
}

// BlindSpots counts prediction words across completed decisions scoring
// under 50 accuracy and returns the five most frequent. Equal counts are
// ordered alphabetically.
func (a *Aggregator) BlindSpots() []BlindSpot {
	return slices.Clone(memo(a, "blind_spots", blindSpots))
}

func blindSpots(rs []record) []BlindSpot {
	counts := make(map[string]int)
	for _, r := range rs {
		if !r.completed || !r.hasAccuracy || r.accuracy >= lowAccuracy {
			continue
		}
		for _, w := range tokens(r.Prediction) {
			counts[w]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	words := slices.Collect(maps.Keys(counts))
	slices.SortFunc(words, func(x, y string) int {
		if c := cmp.Compare(counts[y], counts[x]); c != 0 {
			return c
		}
		return cmp.Compare(x, y)
	})

	out := make([]BlindSpot, 0, patternLimit)
	for _, w := range words[:min(len(words), patternLimit)] {
		out = append(out, BlindSpot{
			Pattern:   w,
			Frequency: counts[w],
			Impact:    fmt.Sprintf("Appears in %d low-accuracy predictions", counts[w]),
		})
	}
	return out
}

// CategoryAccuracy averages accuracy per category over completed,
// categorized decisions that have one.
func (a *Aggregator) CategoryAccuracy() map[domain.Category]float64 {
	return maps.Clone(memo(a, "category_accuracy", categoryAccuracy))
}

func categoryAccuracy(rs []record) map[domain.Category]float64 {
	groups := make(map[domain.Category][]float64)
	for _, r := range rs {
		if r.completed && r.hasAccuracy && r.Category != "" {
			groups[r.Category] = append(groups[r.Category], r.accuracy)
		}
	}
	return meanByCategory(groups)
}
