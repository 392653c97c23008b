package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/phrazzld/realitycheck-api/internal/domain"
)

// Indicator is the two-valued verdict shown next to a completed decision.
type Indicator string

// Indicator values. IndicatorNone is used for decisions without an outcome.
const (
	IndicatorNone      Indicator = ""
	IndicatorGood      Indicator = "good"
	IndicatorRegretful Indicator = "regretful"
)

// Indicator judges d by its regret index, then by accuracy. A completed
// decision with neither score is regretful.
func (s *defaultScorer) Indicator(d domain.Decision) Indicator {
	if !d.IsCompleted() {
		return IndicatorNone
	}
	if idx, ok := s.RegretIndex(d); ok {
		if idx < s.params.GoodRegretIndexBelow {
			return IndicatorGood
		}
		return IndicatorRegretful
	}
	if acc, ok := s.Accuracy(d); ok && acc >= s.params.GoodAccuracyAtLeast {
		return IndicatorGood
	}
	return IndicatorRegretful
}

// HoursUntilCheckIn returns whole hours until the reminder, 0 once it is due.
// It reports false for completed decisions and decisions without a reminder.
func HoursUntilCheckIn(d domain.Decision, now time.Time) (int, bool) {
	if d.IsCompleted() || d.ReminderAt == nil {
		return 0, false
	}
	diff := d.ReminderAt.Sub(now)
	if diff <= 0 {
		return 0, true
	}
	return int(math.Floor(diff.Hours())), true
}

// CheckInLabel formats HoursUntilCheckIn for display. It is empty when there
// is nothing to check in on.
func CheckInLabel(d domain.Decision, now time.Time) string {
	hours, ok := HoursUntilCheckIn(d, now)
	switch {
	case !ok:
		return ""
	case hours <= 0:
		return "Check-in overdue"
	default:
		return fmt.Sprintf("Check-in in %dh", hours)
	}
}
