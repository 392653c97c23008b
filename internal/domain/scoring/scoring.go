// Package scoring turns a single decision into derived numbers: how accurate
// its prediction was and how much it was regretted. Every function here is
// pure and never fails; a result that cannot be computed is reported through
// a false second return value rather than as zero.
package scoring

import (
	"math"
	"strings"

	"github.com/phrazzld/realitycheck-api/internal/domain"
)

// Scorer computes per-decision scores.
type Scorer interface {
	// Accuracy returns how closely the outcome matched the prediction, 0..100.
	Accuracy(d domain.Decision) (float64, bool)

	// RegretIndex returns the adjusted regret as a percentage, 0..100.
	RegretIndex(d domain.Decision) (float64, bool)

	// Indicator classifies a completed decision as good or regretful.
	Indicator(d domain.Decision) Indicator
}

type defaultScorer struct {
	params *Params
}

// NewDefaultScorer creates a Scorer with the standard constants.
func NewDefaultScorer() Scorer {
	return &defaultScorer{params: NewDefaultParams()}
}

// NewScorerWithParams creates a Scorer with custom constants.
func NewScorerWithParams(params *Params) Scorer {
	return &defaultScorer{params: params}
}

var std = NewDefaultScorer()

// Accuracy scores d with the default parameters.
func Accuracy(d domain.Decision) (float64, bool) { return std.Accuracy(d) }

// RegretIndex scores d with the default parameters.
func RegretIndex(d domain.Decision) (float64, bool) { return std.RegretIndex(d) }

// IndicatorFor classifies d with the default parameters.
func IndicatorFor(d domain.Decision) Indicator { return std.Indicator(d) }

// Accuracy prefers the quantitative readings and falls back to comparing the
// prediction and outcome texts.
//
// Quantitative path: every predicted/actual pair where both sides are present
// contributes its absolute error. Predicted regret chance is shifted onto the
// 0..10 regret scale first. Accuracy is 100*(1 - meanError/ErrorScale),
// clamped to 0..100.
//
// Text path, used only when no pair is available: the Jaccard similarity of
// the lowercase whitespace-separated word sets, times 100.
func (s *defaultScorer) Accuracy(d domain.Decision) (float64, bool) {
	var errs []float64
	pair := func(predicted, actual *float64, offset float64) {
		if predicted == nil || actual == nil {
			return
		}
		errs = append(errs, math.Abs(*predicted+offset-*actual))
	}
	pair(d.PredictedEnergy, d.ActualEnergy, 0)
	pair(d.PredictedMood, d.ActualMood, 0)
	pair(d.PredictedStress, d.ActualStress, 0)
	pair(d.PredictedRegretChance, d.ActualRegret, s.params.RegretChanceOffset)

	if len(errs) > 0 {
		var sum float64
		for _, e := range errs {
			sum += e
		}
		avg := sum / float64(len(errs))
		return clamp(100*(1-avg/s.params.ErrorScale), 0, 100), true
	}

	return textAccuracy(d.Prediction, d.Outcome)
}

func textAccuracy(prediction, outcome string) (float64, bool) {
	if strings.TrimSpace(prediction) == "" || strings.TrimSpace(outcome) == "" {
		return 0, false
	}
	a := wordSet(prediction)
	b := wordSet(outcome)
	union := len(a)
	inter := 0
	for w := range b {
		if _, ok := a[w]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0, false
	}
	return float64(inter) / float64(union) * 100, true
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// RegretIndex requires a recorded regret. Not following through adds
// NotFollowedPenalty; following through and still regretting at or above
// HighRegretThreshold adds HighRegretPenalty. The score is divided by the
// fixed MaxRegretScore.
func (s *defaultScorer) RegretIndex(d domain.Decision) (float64, bool) {
	if d.ActualRegret == nil {
		return 0, false
	}
	score := *d.ActualRegret
	switch d.Followed {
	case domain.FollowNo:
		score += s.params.NotFollowedPenalty
	case domain.FollowYes:
		if *d.ActualRegret >= s.params.HighRegretThreshold {
			score += s.params.HighRegretPenalty
		}
	}
	return clamp(score/s.params.MaxRegretScore*100, 0, 100), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
