// Package analytics derives cohort-level metrics from a snapshot of
// decisions: totals, regret and accuracy distributions, calibration
// patterns, weekly trends, streaks and similar-decision lookups.
//
// An Aggregator owns a private copy of its snapshot and memoizes every
// parameterless metric. All memoized values share one fingerprint of the
// snapshot's content; when Refresh observes a different fingerprint, every
// slot is invalidated together and recomputed lazily on next access.
package analytics

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/phrazzld/realitycheck-api/internal/domain"
)

// DefaultGracePeriodDays is how many missed days a streak tolerates.
const DefaultGracePeriodDays = 1

// CacheObserver is notified on every memoized metric access.
type CacheObserver interface {
	CacheHit(metric string)
	CacheMiss(metric string)
}

type nopObserver struct{}

func (nopObserver) CacheHit(string)  {}
func (nopObserver) CacheMiss(string) {}

// Aggregator computes metrics over an immutable snapshot of decisions.
// It is safe for concurrent use.
type Aggregator struct {
	clock    Clock
	grace    int
	observer CacheObserver

	mu          sync.Mutex
	records     []record
	fingerprint uint64
	slots       map[string]slot
}

type slot struct {
	fingerprint uint64
	value       any
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithClock sets the clock used for "today" in streak calculations.
func WithClock(c Clock) AggregatorOption {
	return func(a *Aggregator) {
		a.clock = c
	}
}

// WithGracePeriod sets how many consecutive missed days a streak survives.
// Negative values are treated as zero.
func WithGracePeriod(days int) AggregatorOption {
	return func(a *Aggregator) {
		a.grace = max(days, 0)
	}
}

// WithObserver registers a cache hit/miss observer.
func WithObserver(o CacheObserver) AggregatorOption {
	return func(a *Aggregator) {
		if o != nil {
			a.observer = o
		}
	}
}

// New creates an Aggregator over a copy of decisions.
func New(decisions []domain.Decision, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		clock:    SystemClock{},
		grace:    DefaultGracePeriodDays,
		observer: nopObserver{},
		slots:    make(map[string]slot),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.records = scoreAll(decisions)
	a.fingerprint = Fingerprint(decisions)
	return a
}

// Refresh replaces the snapshot. Cached metrics are discarded only when the
// content differs from the current snapshot. It reports whether it did.
func (a *Aggregator) Refresh(decisions []domain.Decision) bool {
	fp := Fingerprint(decisions)

	a.mu.Lock()
	unchanged := fp == a.fingerprint
	a.mu.Unlock()
	if unchanged {
		return false
	}

	records := scoreAll(decisions)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = records
	a.fingerprint = fp
	clear(a.slots)
	return true
}

// Fingerprint returns the current snapshot fingerprint.
func (a *Aggregator) Fingerprint() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fingerprint
}

func (a *Aggregator) snapshot() ([]record, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.records, a.fingerprint
}

// memo returns the cached value for key or computes it outside the lock.
// The result is published only if the snapshot has not changed meanwhile.
func memo[T any](a *Aggregator, key string, compute func([]record) T) T {
	return memoWhile(a, key, nil, compute)
}

// memoWhile is memo for values that can go stale without the snapshot
// changing. A cached value is reused only while fresh reports true.
func memoWhile[T any](a *Aggregator, key string, fresh func(T) bool, compute func([]record) T) T {
	a.mu.Lock()
	if s, ok := a.slots[key]; ok && s.fingerprint == a.fingerprint {
		if v := s.value.(T); fresh == nil || fresh(v) {
			a.mu.Unlock()
			a.observer.CacheHit(key)
			return v
		}
	}
	records, fp := a.records, a.fingerprint
	a.mu.Unlock()

	a.observer.CacheMiss(key)
	v := compute(records)

	a.mu.Lock()
	if a.fingerprint == fp {
		a.slots[key] = slot{fingerprint: fp, value: v}
	}
	a.mu.Unlock()
	return v
}

// TotalCount is the number of decisions in the snapshot.
func (a *Aggregator) TotalCount() int {
	records, _ := a.snapshot()
	return len(records)
}

// CompletedCount is the number of decisions with a recorded outcome.
func (a *Aggregator) CompletedCount() int {
	return memo(a, "completed_count", completedCount)
}

func completedCount(rs []record) int {
	n := 0
	for _, r := range rs {
		if r.completed {
			n++
		}
	}
	return n
}

// CompletionRate is CompletedCount as a percentage of TotalCount, both taken
// from the same snapshot.
func (a *Aggregator) CompletionRate() float64 {
	return memo(a, "completion_rate", func(rs []record) float64 {
		if len(rs) == 0 {
			return 0
		}
		return float64(completedCount(rs)) / float64(len(rs)) * 100
	})
}

// AverageAccuracy is the mean accuracy over completed decisions that have
// one, or 0 when none do.
func (a *Aggregator) AverageAccuracy() float64 {
	return memo(a, "average_accuracy", func(rs []record) float64 {
		var vals []float64
		for _, r := range rs {
			if r.completed && r.hasAccuracy {
				vals = append(vals, r.accuracy)
			}
		}
		return mean(vals)
	})
}

// Fingerprint hashes the identity and every mutable field of each decision,
// in order. Equal content yields equal fingerprints.
func Fingerprint(decisions []domain.Decision) uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 256)
	for _, d := range decisions {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint64(buf, uint64(d.ID))
		buf = appendString(buf, d.Title)
		buf = appendString(buf, d.Description)
		buf = appendString(buf, string(d.Category))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(d.Tags)))
		for _, t := range d.Tags {
			buf = appendString(buf, t)
		}
		buf = appendString(buf, d.Prediction)
		buf = appendString(buf, d.Outcome)
		buf = appendInt64Ptr(buf, d.GroupID)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(d.CreatedAt.UnixNano()))
		buf = appendTimePtr(buf, d.ReminderAt)
		buf = appendTimePtr(buf, d.OutcomeRecordedAt)
		for _, f := range []*float64{
			d.PredictedEnergy, d.PredictedMood, d.PredictedStress,
			d.PredictedRegretChance, d.PredictedOverallImpact, d.PredictionConfidence,
			d.ActualEnergy, d.ActualMood, d.ActualStress, d.ActualRegret,
		} {
			buf = appendFloatPtr(buf, f)
		}
		buf = append(buf, byte(d.Followed))
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendFloatPtr(buf []byte, f *float64) []byte {
	if f == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(*f))
}

func appendInt64Ptr(buf []byte, v *int64) []byte {
	if v == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	return binary.LittleEndian.AppendUint64(buf, uint64(*v))
}

func appendTimePtr(buf []byte, t *time.Time) []byte {
	if t == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	return binary.LittleEndian.AppendUint64(buf, uint64(t.UnixNano()))
}
