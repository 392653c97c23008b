package analytics

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/phrazzld/realitycheck-api/internal/domain/scoring"
)

// minTokenLength is the exclusive lower bound on word length for title and
// prediction tokens.
const minTokenLength = 3

// record is a decision with its derived scores computed once per snapshot.
type record struct {
	domain.Decision
	completed   bool
	accuracy    float64
	hasAccuracy bool
	regret      float64
	hasRegret   bool
}

func scoreAll(decisions []domain.Decision) []record {
	out := make([]record, len(decisions))
	for i, d := range decisions {
		out[i] = scoreOne(d.Clone())
	}
	return out
}

func scoreOne(d domain.Decision) record {
	r := record{Decision: d, completed: d.IsCompleted()}
	r.accuracy, r.hasAccuracy = scoring.Accuracy(d)
	r.regret, r.hasRegret = scoring.RegretIndex(d)
	return r
}

// tokens splits s on whitespace, lowercases it and keeps words longer than
// minTokenLength characters. Duplicates are kept.
func tokens(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, w := range fields {
		if utf8.RuneCountInString(w) > minTokenLength {
			out = append(out, w)
		}
	}
	return out
}

func tokenSet(s string) map[string]struct{} {
	toks := tokens(s)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}

// overlap is |a ∩ b| / max(|a|, |b|), zero when either set is empty.
func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for w := range a {
		if _, ok := b[w]; ok {
			common++
		}
	}
	return float64(common) / float64(max(len(a), len(b)))
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// meanByCategory averages the values collected per category.
func meanByCategory(groups map[domain.Category][]float64) map[domain.Category]float64 {
	if len(groups) == 0 {
		return map[domain.Category]float64{}
	}
	out := make(map[domain.Category]float64, len(groups))
	for c, vals := range groups {
		out[c] = mean(vals)
	}
	return out
}

func sortedCategories[V any](m map[domain.Category]V) []domain.Category {
	keys := make([]domain.Category, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
