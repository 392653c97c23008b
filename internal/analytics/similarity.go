package analytics

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/phrazzld/realitycheck-api/internal/domain"
)

const (
	similarityThreshold = 0.2
	positiveAccuracy    = 70.0
)

// PatternType classifies a proactive suggestion.
type PatternType string

// Suggestion kinds returned by SuggestPattern.
const (
	PatternHighRegret  PatternType = "HIGH_REGRET"
	PatternLowAccuracy PatternType = "LOW_ACCURACY"
	PatternPositive    PatternType = "POSITIVE_PATTERN"
)

// PatternSuggestion is advice drawn from past decisions similar to a new one.
type PatternSuggestion struct {
	Type         PatternType `json:"type"`
	Message      string      `json:"message"`
	SimilarCount int         `json:"similar_count"`
}

type match struct {
	record
	similarity float64
}

// similarTo scores every record in category against title and returns the
// ones above the threshold, most similar first.
func similarTo(rs []record, title string, category domain.Category, keep func(record) bool) []match {
	want := tokenSet(title)
	if len(want) == 0 {
		return nil
	}
	var out []match
	for _, r := range rs {
		if r.Category != category || !keep(r) {
			continue
		}
		if s := overlap(want, tokenSet(r.Title)); s > similarityThreshold {
			out = append(out, match{record: r, similarity: s})
		}
	}
	slices.SortStableFunc(out, func(x, y match) int {
		return cmp.Compare(y.similarity, x.similarity)
	})
	return out
}

// FindSimilar returns up to limit completed decisions in target's category
// whose titles overlap with target's title by more than 20%. The target
// itself is never included, and an uncategorized target has no matches.
func (a *Aggregator) FindSimilar(target domain.Decision, limit int) []domain.Decision {
	if target.Category == "" || limit <= 0 {
		return nil
	}
	rs, _ := a.snapshot()
	matches := similarTo(rs, target.Title, target.Category, func(r record) bool {
		return r.completed && r.ID != target.ID
	})
	matches = matches[:min(len(matches), limit)]

	out := make([]domain.Decision, len(matches))
	for i, m := range matches {
		out[i] = m.Decision.Clone()
	}
	return out
}

// SuggestPattern looks at past decisions in category with titles similar to
// title. If at least half of them were regretted, or at least half were
// poorly predicted, it says so; if the closest five were predicted well it
// says that instead. Otherwise there is no suggestion.
func (a *Aggregator) SuggestPattern(title string, category domain.Category) (PatternSuggestion, bool) {
	if category == "" {
		return PatternSuggestion{}, false
	}
	rs, _ := a.snapshot()
	similar := similarTo(rs, title, category, func(record) bool { return true })
	if len(similar) == 0 {
		return PatternSuggestion{}, false
	}

	var regrets, lowAcc []float64
	for _, m := range similar {
		if m.hasRegret && m.regret >= highRegretIndex {
			regrets = append(regrets, m.regret)
		}
		if m.hasAccuracy && m.accuracy < lowAccuracy {
			lowAcc = append(lowAcc, m.accuracy)
		}
	}
	half := float64(len(similar)) * 0.5

	switch {
	case len(regrets) > 0 && float64(len(regrets)) >= half:
		return PatternSuggestion{
			Type:         PatternHighRegret,
			Message:      fmt.Sprintf("You usually regret decisions like this (avg regret: %d%%)", int(mean(regrets))),
			SimilarCount: len(regrets),
		}, true
	case len(lowAcc) > 0 && float64(len(lowAcc)) >= half:
		return PatternSuggestion{
			Type:         PatternLowAccuracy,
			Message:      fmt.Sprintf("Your predictions for similar decisions have been inaccurate (avg: %d%%)", int(mean(lowAcc))),
			SimilarCount: len(lowAcc),
		}, true
	}

	var top []float64
	for _, m := range similar[:min(len(similar), patternLimit)] {
		if m.hasAccuracy {
			top = append(top, m.accuracy)
		}
	}
	if avg := mean(top); len(top) > 0 && avg >= positiveAccuracy {
		return PatternSuggestion{
			Type:         PatternPositive,
			Message:      fmt.Sprintf("You've been accurate with similar decisions (avg: %d%%)", int(avg)),
			SimilarCount: len(similar),
		}, true
	}
	return PatternSuggestion{}, false
}
