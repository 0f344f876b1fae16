package values

import (
	"encoding/binary"
	"math"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/psyche/internal/core/models"
	"github.com/zeusync/psyche/internal/core/observability/log"
	"github.com/zeusync/psyche/pkg/sequence"
)

const (
	initialStrength    = 50.0
	initialConsistency = 50.0
	initialConfidence  = 20.0

	evidenceScale = 0.1
	trendAlpha    = 0.2
	trendLimit    = 10.0
)

// Assessment is the inferred state of one latent value.
type Assessment struct {
	Value        models.Value `json:"value"`
	Strength     float64      `json:"strength"`
	Consistency  float64      `json:"consistency"`
	Trend        float64      `json:"trend"`
	Confidence   float64      `json:"confidence"`
	SampleCount  int          `json:"sample_count"`
	LastAssessed time.Time    `json:"last_assessed"`
	Evidence     []string     `json:"evidence"`
}

func (a Assessment) clone() Assessment {
	a.Evidence = slices.Clone(a.Evidence)
	if a.Evidence == nil {
		a.Evidence = []string{}
	}
	return a
}

// Engine infers latent player values from the virtue action stream.
// It is not safe for concurrent use.
type Engine struct {
	cfg         Config
	assessments []Assessment
	window      []models.ActionRecord
	published   uint64

	now    func() time.Time
	logger log.Log
	notify models.Notifier
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithNotifier(n models.Notifier) Option {
	return func(e *Engine) { e.notify = n }
}

func New(cfg Config, logger log.Log, opts ...Option) *Engine {
	if logger == nil {
		logger = log.NewNop()
	}
	e := &Engine{
		cfg:    cfg,
		now:    time.Now,
		logger: logger.With(log.String("component", "values")),
		notify: models.NopNotifier{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// Reset restores every value to its initial assessment.
func (e *Engine) Reset() {
	e.assessments = make([]Assessment, models.ValueCount)
	for _, v := range models.Values() {
		e.assessments[v] = Assessment{
			Value:       v,
			Strength:    initialStrength,
			Consistency: initialConsistency,
			Confidence:  initialConfidence,
			Evidence:    []string{},
		}
	}
	e.window = nil
	e.published = e.Fingerprint()
}

// Ingest applies the evidence carried by one action record.
func (e *Engine) Ingest(rec models.ActionRecord) {
	if !e.cfg.Enabled {
		return
	}
	if !models.Finite(rec.Impact) {
		e.logger.Warn("ignored action with non-finite impact", log.String("action", rec.ID.String()))
		return
	}
	e.window = append(e.window, rec)
	if over := len(e.window) - e.cfg.Window; over > 0 {
		e.window = append(e.window[:0:0], e.window[over:]...)
	}

	affected := rec.AffectedValues
	if len(affected) == 0 {
		affected = models.TraitValues(rec.Trait)
	}

	before := e.strengths()
	for _, w := range affected {
		e.UpdateValue(w.Value, rec.Signed()*w.Weight, rec.Description)
	}
	e.publish(before)
}

// UpdateValue folds one piece of evidence into v. Strength moves by a tenth
// of the evidence and the trend is an exponential moving average of it.
func (e *Engine) UpdateValue(v models.Value, evidence float64, context string) {
	if !v.Valid() {
		e.logger.Warn("ignored evidence for unknown value", log.Int("value", int(v)))
		return
	}
	if !models.Finite(evidence) {
		e.logger.Warn("ignored non-finite evidence", log.String("value", v.String()))
		return
	}
	a := &e.assessments[v]
	weighted := evidence * evidenceScale

	a.Strength = clamp(a.Strength + weighted)
	a.Trend = math.Max(-trendLimit, math.Min(trendLimit, (1-trendAlpha)*a.Trend+trendAlpha*weighted))
	a.Evidence = append(a.Evidence, context)
	if over := len(a.Evidence) - e.cfg.EvidenceCap; over > 0 {
		a.Evidence = append(a.Evidence[:0:0], a.Evidence[over:]...)
	}
	a.SampleCount++
	a.Confidence = math.Min(float64(a.SampleCount)*1.5, 100)
	a.LastAssessed = e.now()

	e.logger.Debug("player value updated",
		log.String("value", v.String()),
		log.Float64("evidence", evidence),
		log.Float64("strength", a.Strength),
	)
}

// AssessAll recomputes strength, sample count, confidence and consistency
// of every value from the retained window. Values without supporting
// records keep their current assessment. Calling it twice in a row yields
// identical assessments.
func (e *Engine) AssessAll() {
	if !e.cfg.Enabled {
		return
	}
	before := e.strengths()
	for i := range e.assessments {
		a := &e.assessments[i]
		var (
			evidence []float64
			newest   time.Time
		)
		for _, rec := range e.window {
			if !rec.Affects(a.Value) {
				continue
			}
			evidence = append(evidence, rec.Signed())
			if rec.Timestamp.After(newest) {
				newest = rec.Timestamp
			}
		}
		if len(evidence) == 0 {
			continue
		}

		mean, _ := sequence.Mean(sequence.From(evidence), func(v float64) float64 { return v })
		agreeing := sequence.From(evidence).Filter(func(v float64) bool {
			if mean < 0 {
				return v < 0
			}
			return v >= 0
		}).Count()

		a.Strength = clamp(50 + mean*10)
		a.SampleCount = len(evidence)
		a.Confidence = math.Min(float64(len(evidence))*2, 100)
		a.Consistency = 100 * float64(agreeing) / float64(len(evidence))
		a.LastAssessed = newest
	}
	e.logger.Debug("assessed player values", log.Int("actions", len(e.window)))
	e.publish(before)
}

func (e *Engine) publish(before []models.ValueStrength) {
	fp := e.Fingerprint()
	if fp == e.published {
		return
	}
	e.published = fp
	e.notify.Notify(models.KindValuesUpdated, models.ValuesUpdated{Before: before, After: e.strengths()})
}

// Fingerprint hashes the numeric state of every assessment.
func (e *Engine) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}
	for _, a := range e.assessments {
		put(a.Strength)
		put(a.Consistency)
		put(a.Trend)
		put(a.Confidence)
		put(float64(a.SampleCount))
	}
	return h.Sum64()
}

func (e *Engine) strengths() []models.ValueStrength {
	out := make([]models.ValueStrength, len(e.assessments))
	for i, a := range e.assessments {
		out[i] = models.ValueStrength{Value: a.Value, Strength: a.Strength}
	}
	return out
}

// Strength returns the strength of v, 50 for unknown values.
func (e *Engine) Strength(v models.Value) float64 {
	if !v.Valid() {
		return initialStrength
	}
	return e.assessments[v].Strength
}

func (e *Engine) Assessment(v models.Value) (Assessment, bool) {
	if !v.Valid() {
		return Assessment{}, false
	}
	return e.assessments[v].clone(), true
}

// Profile returns every assessment by descending strength. Ties keep
// enumeration order.
func (e *Engine) Profile() []Assessment {
	it := sequence.From(e.assessments).Sort(func(a, b Assessment) bool { return a.Strength > b.Strength })
	return sequence.Map(it, Assessment.clone).Collect()
}

// Dominant returns the n strongest values.
func (e *Engine) Dominant(n int) []models.Value {
	if n <= 0 {
		return []models.Value{}
	}
	it := sequence.From(e.Profile()).Take(n)
	return sequence.Map(it, func(a Assessment) models.Value { return a.Value }).Collect()
}

// MeanConfidence is the average confidence across all values.
func (e *Engine) MeanConfidence() float64 {
	mean, _ := sequence.Mean(sequence.From(e.assessments), func(a Assessment) float64 { return a.Confidence })
	return mean
}

// clamp bounds v to [0,100]. NaN maps to 0.
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
