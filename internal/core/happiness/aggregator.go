package happiness

import (
	"maps"
	"math"
	"slices"
	"time"

	"github.com/zeusync/psyche/internal/core/memory"
	"github.com/zeusync/psyche/internal/core/models"
	"github.com/zeusync/psyche/internal/core/observability/log"
	"github.com/zeusync/psyche/pkg/sequence"
)

// Default is the value of every sub-score with no supporting memories.
const Default = 50.0

const (
	recentWindow  = 50
	maxInfluences = 5
)

// Overall score weights.
const (
	weightLifeSatisfaction = 0.30
	weightPositiveAffect   = 0.25
	weightNegativeAffect   = 0.15
	weightEudaimonia       = 0.20
	weightFlow             = 0.10
)

// MemorySource is the read side of the memory store. Implementations must
// already exclude repressed memories from All and Recent.
type MemorySource interface {
	All() []memory.Entry
	Recent(n int) []memory.Entry
	Count() int
}

type VirtueSource interface {
	OverallScore() float64
}

type ValueSource interface {
	MeanConfidence() float64
}

// Metrics is one immutable well-being snapshot.
type Metrics struct {
	Overall          float64            `json:"overall"`
	LifeSatisfaction float64            `json:"life_satisfaction"`
	PositiveAffect   float64            `json:"positive_affect"`
	NegativeAffect   float64            `json:"negative_affect"`
	Eudaimonia       float64            `json:"eudaimonia"`
	Flow             float64            `json:"flow"`
	Meaning          float64            `json:"meaning"`
	Engagement       float64            `json:"engagement"`
	SampleSize       int                `json:"sample_size"`
	AssessedAt       time.Time          `json:"assessed_at"`
	Detail           map[string]float64 `json:"detail"`
	Influences       []string           `json:"influences"`
}

func (m Metrics) clone() Metrics {
	m.Detail = maps.Clone(m.Detail)
	m.Influences = slices.Clone(m.Influences)
	return m
}

func defaultMetrics() Metrics {
	m := Metrics{
		LifeSatisfaction: Default,
		PositiveAffect:   Default,
		NegativeAffect:   Default,
		Eudaimonia:       Default,
		Flow:             Default,
		Meaning:          Default,
		Engagement:       Default,
		Detail:           map[string]float64{},
		Influences:       []string{},
	}
	m.Overall = overall(m)
	return m
}

// Aggregator recomputes the well-being snapshot from the other components.
type Aggregator struct {
	memories MemorySource
	virtues  VirtueSource
	values   ValueSource
	current  Metrics

	now    func() time.Time
	logger log.Log
	notify models.Notifier
}

type Option func(*Aggregator)

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func WithNotifier(n models.Notifier) Option {
	return func(a *Aggregator) { a.notify = n }
}

// New creates an aggregator. virtues and values may be nil; they only feed
// the non-scoring detail map.
func New(memories MemorySource, virtues VirtueSource, values ValueSource, logger log.Log, opts ...Option) *Aggregator {
	if logger == nil {
		logger = log.NewNop()
	}
	a := &Aggregator{
		memories: memories,
		virtues:  virtues,
		values:   values,
		current:  defaultMetrics(),
		now:      time.Now,
		logger:   logger.With(log.String("component", "happiness")),
		notify:   models.NopNotifier{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Current returns the last computed snapshot.
func (a *Aggregator) Current() Metrics { return a.current.clone() }

// Reset restores the default snapshot.
func (a *Aggregator) Reset() { a.current = defaultMetrics() }

// Recompute builds a fresh snapshot and replaces the current one.
func (a *Aggregator) Recompute() Metrics {
	all := a.memories.All()
	recent := a.memories.Recent(recentWindow)

	emotional := sequence.From(all).Filter(func(e memory.Entry) bool { return e.Category == models.CategoryEmotional })

	m := Metrics{
		PositiveAffect: meanOr(emotional.Filter(func(e memory.Entry) bool { return e.Intensity > 60 }),
			func(e memory.Entry) float64 { return e.Intensity }),
		NegativeAffect: meanOr(emotional.Filter(func(e memory.Entry) bool { return e.Intensity < 40 }),
			func(e memory.Entry) float64 { return 100 - e.Intensity }),
		Flow: meanOr(sequence.From(all).Filter(func(e memory.Entry) bool {
			return e.Category == models.CategoryProcedural && e.Intensity > 60
		}), func(e memory.Entry) float64 { return e.Intensity }),
		Eudaimonia:       eudaimonia(all),
		LifeSatisfaction: lifeSatisfaction(recent),
		SampleSize:       a.memories.Count(),
		AssessedAt:       a.now(),
		Detail: map[string]float64{
			"memory_count": float64(len(all)),
		},
		Influences: influences(recent),
	}
	m.Meaning = m.Eudaimonia
	m.Engagement = m.Flow
	m.Overall = overall(m)
	if a.virtues != nil {
		m.Detail["virtue_overall"] = a.virtues.OverallScore()
	}
	if a.values != nil {
		m.Detail["value_confidence"] = a.values.MeanConfidence()
	}

	before := a.current.Overall
	a.current = m

	a.logger.Debug("happiness recomputed",
		log.Float64("before", before),
		log.Float64("after", m.Overall),
		log.Int("sample_size", m.SampleSize),
	)
	a.notify.Notify(models.KindHappinessUpdated, models.HappinessUpdated{
		Before:     before,
		After:      m.Overall,
		SampleSize: m.SampleSize,
	})
	return m.clone()
}

func overall(m Metrics) float64 {
	return weightLifeSatisfaction*m.LifeSatisfaction +
		weightPositiveAffect*m.PositiveAffect +
		weightNegativeAffect*(100-m.NegativeAffect) +
		weightEudaimonia*m.Eudaimonia +
		weightFlow*m.Flow
}

func meanOr(it *sequence.Iterator[memory.Entry], value func(memory.Entry) float64) float64 {
	mean, ok := sequence.Mean(it, value)
	if !ok {
		return Default
	}
	return mean
}

func eudaimonia(all []memory.Entry) float64 {
	if len(all) == 0 {
		return Default
	}
	meaningful := sequence.From(all).Filter(func(e memory.Entry) bool { return e.Importance >= models.ImportanceHigh }).Count()
	return Default + 50*float64(meaningful)/float64(len(all))
}

func lifeSatisfaction(recent []memory.Entry) float64 {
	score := Default
	for _, e := range recent {
		if e.Category != models.CategoryEmotional {
			continue
		}
		switch {
		case e.Intensity > 70:
			score += 2
		case e.Intensity < 30:
			score--
		}
	}
	return math.Max(0, math.Min(100, score))
}

func influences(recent []memory.Entry) []string {
	it := sequence.From(recent).
		Filter(func(e memory.Entry) bool { return e.Category == models.CategoryEmotional }).
		Take(maxInfluences)
	return sequence.Map(it, func(e memory.Entry) string { return e.Title }).Collect()
}
