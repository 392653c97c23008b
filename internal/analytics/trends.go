package analytics

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// WeeklyTrend is the average accuracy of outcomes recorded in one ISO week.
type WeeklyTrend struct {
	WeekLabel       string  `json:"week_label"`
	AverageAccuracy float64 `json:"average_accuracy"`
	DecisionCount   int     `json:"decision_count"`
}

// TimeTrends buckets completed decisions by the ISO week their outcome was
// recorded in. Labels have the form 2024-W07 so they sort chronologically.
// Decisions without an outcome timestamp are left out.
func (a *Aggregator) TimeTrends() []WeeklyTrend {
	return slices.Clone(memo(a, "time_trends", func(rs []record) []WeeklyTrend {
		return timeTrends(rs, a.clock.Now().Location())
	}))
}

func timeTrends(rs []record, loc *time.Location) []WeeklyTrend {
	accuracies := make(map[string][]float64)
	for _, r := range rs {
		if !r.completed || !r.hasAccuracy || r.OutcomeRecordedAt == nil {
			continue
		}
		year, week := r.OutcomeRecordedAt.In(loc).ISOWeek()
		label := fmt.Sprintf("%04d-W%02d", year, week)
		accuracies[label] = append(accuracies[label], r.accuracy)
	}
	if len(accuracies) == 0 {
		return nil
	}

	out := make([]WeeklyTrend, 0, len(accuracies))
	for label, vals := range accuracies {
		out = append(out, WeeklyTrend{
			WeekLabel:       label,
			AverageAccuracy: mean(vals),
			DecisionCount:   len(vals),
		})
	}
	slices.SortFunc(out, func(x, y WeeklyTrend) int {
		return cmp.Compare(x.WeekLabel, y.WeekLabel)
	})
	return out
}

// Streak counts consecutive days, walking back from today, on which at
// least one decision was logged. Up to the grace period of missed days in a
// row still count towards the streak. The walk never goes past the earliest
// logged day, and a streak is 0 unless some decision falls within the grace
// period of today.
func (a *Aggregator) Streak() int {
	today := startOfDay(a.clock.Now())
	v := memoWhile(a, "streak",
		func(s dayStreak) bool { return s.day.Equal(today) },
		func(rs []record) dayStreak {
			return dayStreak{day: today, length: streak(rs, today, a.grace)}
		})
	return v.length
}

// dayStreak is a streak length together with the day it was counted from.
type dayStreak struct {
	day    time.Time
	length int
}

func streak(rs []record, today time.Time, grace int) int {
	loc := today.Location()
	days := make(map[string]struct{}, len(rs))
	var earliest time.Time
	recent := false
	for _, r := range rs {
		day := startOfDay(r.CreatedAt.In(loc))
		days[day.Format(time.DateOnly)] = struct{}{}
		if earliest.IsZero() || day.Before(earliest) {
			earliest = day
		}
		if diff := daysBetween(day, today); diff >= 0 && diff <= grace {
			recent = true
		}
	}
	if !recent {
		return 0
	}

	count, missed := 0, 0
	for day := today; !day.Before(earliest); day = day.AddDate(0, 0, -1) {
		if _, ok := days[day.Format(time.DateOnly)]; ok {
			missed = 0
		} else {
			missed++
			if missed > grace {
				break
			}
		}
		count++
	}
	return count
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, both at local midnight.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
