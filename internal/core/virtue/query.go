package virtue

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/zeusync/psyche/internal/core/models"
	"github.com/zeusync/psyche/pkg/sequence"
)

// Level returns the current level of trait, Neutral for unknown traits.
func (l *Ledger) Level(trait models.Trait) float64 {
	if !trait.Valid() {
		return Neutral
	}
	return l.records[trait].Level
}

func (l *Ledger) State(trait models.Trait) models.DevelopmentState {
	if !trait.Valid() {
		return ClassifyState(Neutral, Neutral)
	}
	return l.records[trait].State
}

func (l *Ledger) Record(trait models.Trait) (Record, bool) {
	if !trait.Valid() {
		return Record{}, false
	}
	return l.records[trait], true
}

// Records returns every trait record in trait order.
func (l *Ledger) Records() []Record {
	return slices.Clone(l.records)
}

// OverallScore is the mean level across traits.
func (l *Ledger) OverallScore() float64 {
	mean, ok := sequence.Mean(sequence.From(l.records), func(r Record) float64 { return r.Level })
	if !ok {
		return Neutral
	}
	return mean
}

// HistoryLen returns the number of retained actions.
func (l *Ledger) HistoryLen() int { return len(l.history) }

// RecentActions returns up to n actions, newest first.
func (l *Ledger) RecentActions(n int) []models.ActionRecord {
	return l.newest(func(models.ActionRecord) bool { return true }, n)
}

// ActionsByTrait returns up to n actions of trait, newest first.
func (l *Ledger) ActionsByTrait(trait models.Trait, n int) []models.ActionRecord {
	return l.newest(func(a models.ActionRecord) bool { return a.Trait == trait }, n)
}

func (l *Ledger) newest(pred func(models.ActionRecord) bool, n int) []models.ActionRecord {
	rev := slices.Clone(l.history)
	slices.Reverse(rev)
	return sequence.From(rev).Filter(pred).Take(n).Collect()
}

// GrowthRate combines positivity and frequency of the last ten actions of
// trait: (2×positiveRatio − 1) divided by the mean interval in days, floored
// at 0.1 days.
func (l *Ledger) GrowthRate(trait models.Trait) float64 {
	actions := l.ActionsByTrait(trait, 10)
	if len(actions) < 2 {
		return 0
	}
	var days float64
	for i := 1; i < len(actions); i++ {
		days += actions[i-1].Timestamp.Sub(actions[i].Timestamp).Hours() / 24
	}
	interval := days / float64(len(actions)-1)

	positive := sequence.From(actions).Filter(func(a models.ActionRecord) bool { return a.Positive }).Count()
	ratio := float64(positive) / float64(len(actions))
	return (ratio*2 - 1) / math.Max(interval, 0.1)
}

// Report renders a plain text summary of every trait.
func (l *Ledger) Report() string {
	var b strings.Builder
	b.WriteString("=== Virtue Assessment Report ===\n")
	for _, r := range l.records {
		fmt.Fprintf(&b, "%s: level %.1f (%s) - consistency %.1f%%\n",
			r.Trait.DisplayName(), r.Level, r.State.DisplayName(), r.Consistency)
	}
	fmt.Fprintf(&b, "\nOverall virtue score: %.1f\n", l.OverallScore())
	fmt.Fprintf(&b, "Total actions recorded: %d\n", len(l.history))
	return b.String()
}
