package analytics

import (
	"fmt"
	"strings"

	"github.com/phrazzld/realitycheck-api/internal/domain"
)

// WeeklySummary is the periodic digest of how the person is doing.
type WeeklySummary struct {
	AverageAccuracy   float64         `json:"average_accuracy"`
	Streak            int             `json:"streak"`
	TopRegretCategory domain.Category `json:"top_regret_category,omitempty"`
	Message           string          `json:"message"`
}

// Insights gathers the textual pattern findings. Empty fields mean the
// pattern was not detected.
type Insights struct {
	RepeatedRegret           string `json:"repeated_regret,omitempty"`
	OverconfidenceByCategory string `json:"overconfidence_by_category,omitempty"`
	UnderestimationPattern   string `json:"underestimation_pattern,omitempty"`
}

// WeeklySummary builds the digest. It reports false when no decision has an
// outcome yet, since there is nothing to summarize.
func (a *Aggregator) WeeklySummary() (WeeklySummary, bool) {
	if a.CompletedCount() == 0 {
		return WeeklySummary{}, false
	}
	s := WeeklySummary{
		AverageAccuracy: a.AverageAccuracy(),
		Streak:          a.Streak(),
	}
	if top, ok := a.TopRegretCategory(); ok {
		s.TopRegretCategory = top.Category
	}
	s.Message = weeklyMessage(s)
	return s, true
}

func weeklyMessage(s WeeklySummary) string {
	lines := []string{fmt.Sprintf("Your accuracy: %d%%", int(s.AverageAccuracy))}
	if s.Streak > 0 {
		lines = append(lines, fmt.Sprintf("%d day streak", s.Streak))
	}
	if s.TopRegretCategory != "" {
		lines = append(lines, fmt.Sprintf("Watch out for: %s", s.TopRegretCategory))
	}
	return strings.Join(lines, "\n")
}

// Insights collects every textual pattern finding.
func (a *Aggregator) Insights() Insights {
	var in Insights
	in.RepeatedRegret, _ = a.RepeatedRegret()
	in.OverconfidenceByCategory, _ = a.OverconfidenceByCategory()
	in.UnderestimationPattern, _ = a.UnderestimationPattern()
	return in
}
