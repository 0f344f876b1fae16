package virtue

import (
	"crypto/rand"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/zeusync/psyche/internal/core/models"
	"github.com/zeusync/psyche/internal/core/observability/log"
	"github.com/zeusync/psyche/pkg/sequence"
)

// levelWindow is the number of recent actions ComputeLevel looks at.
const levelWindow = 50

// ValueSink receives every recorded action after the trait level moved.
type ValueSink interface {
	Ingest(record models.ActionRecord)
}

// Ledger owns the bounded action history and the per-trait records.
// It is not safe for concurrent use.
type Ledger struct {
	cfg     Config
	records []Record
	history []models.ActionRecord
	entropy io.Reader

	now    func() time.Time
	logger log.Log
	notify models.Notifier
	sink   ValueSink
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithNotifier(n models.Notifier) Option {
	return func(l *Ledger) { l.notify = n }
}

// WithValueSink forwards recorded actions to sink.
func WithValueSink(sink ValueSink) Option {
	return func(l *Ledger) { l.sink = sink }
}

// New creates a ledger with every trait at the neutral level.
func New(cfg Config, logger log.Log, opts ...Option) *Ledger {
	if logger == nil {
		logger = log.NewNop()
	}
	l := &Ledger{
		cfg:     cfg,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
		logger:  logger.With(log.String("component", "virtue")),
		notify:  models.NopNotifier{},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.initRecords()
	return l
}

func (l *Ledger) initRecords() {
	now := l.now()
	l.records = make([]Record, 0, len(models.Traits()))
	for _, t := range models.Traits() {
		l.records = append(l.records, newRecord(t, now))
	}
}

// RecordAction appends a weighted action, moves the trait level by
// ±impact×multiplier and forwards the record to the value sink. Impact is
// clamped to [0,10].
func (l *Ledger) RecordAction(trait models.Trait, label, description string, impact float64, positive bool) (models.ActionRecord, error) {
	if !trait.Valid() {
		l.logger.Warn("rejected action with unknown trait", log.Int("trait", int(trait)))
		return models.ActionRecord{}, fmt.Errorf("%w: %d", models.ErrUnknownTrait, trait)
	}
	if !models.Finite(impact) {
		l.logger.Warn("rejected action with non-finite impact", log.String("trait", trait.String()), log.String("label", label))
		return models.ActionRecord{}, fmt.Errorf("%w: impact %v", models.ErrNonFinite, impact)
	}

	now := l.now()
	id, err := ulid.New(ulid.Timestamp(now), l.entropy)
	if err != nil {
		return models.ActionRecord{}, fmt.Errorf("failed to issue action id: %w", err)
	}

	rec := models.ActionRecord{
		ID:             id,
		Trait:          trait,
		Label:          label,
		Description:    description,
		Impact:         math.Max(models.MinImpact, math.Min(models.MaxImpact, impact)),
		Positive:       positive,
		Timestamp:      now,
		ContextWeight:  1.0,
		AffectedValues: models.TraitValues(trait),
	}
	l.history = append(l.history, rec)

	delta := rec.Impact * l.cfg.ImpactMultiplier
	if !positive {
		delta = -delta
	}
	l.UpdateLevel(trait, delta, "action: "+label)

	if l.sink != nil {
		l.sink.Ingest(rec)
	}
	l.prune()

	l.logger.Info("virtue action recorded",
		log.String("trait", trait.String()),
		log.String("label", label),
		log.Float64("delta", delta),
	)
	l.notify.Notify(models.KindVirtueActionRecorded, models.VirtueActionRecorded{Record: rec})
	return rec, nil
}

func (l *Ledger) prune() {
	over := len(l.history) - l.cfg.MaxHistory
	if over <= 0 {
		return
	}
	l.history = append(l.history[:0:0], l.history[over:]...)
	l.logger.Debug("pruned virtue history", log.Int("removed", over))
}

// UpdateLevel moves a trait level by delta, clamped to [0,100], and
// refreshes its consistency and development state. Non-finite deltas are
// ignored.
func (l *Ledger) UpdateLevel(trait models.Trait, delta float64, reason string) {
	if !trait.Valid() {
		return
	}
	if !models.Finite(delta) {
		l.logger.Warn("ignored non-finite level delta", log.String("trait", trait.String()), log.String("reason", reason))
		return
	}
	r := &l.records[trait]
	before := r.Level

	r.Level = clamp(r.Level + delta)
	r.LastUpdated = l.now()
	r.RecentActions++
	if delta > 0 {
		r.Experience += int(math.Round(delta * 10))
	}
	r.Consistency, _ = l.Consistency(trait, l.cfg.ConsistencyWindow)
	l.refreshState(r)

	l.logger.Debug("virtue level updated",
		log.String("trait", trait.String()),
		log.Float64("before", before),
		log.Float64("after", r.Level),
		log.String("reason", reason),
	)
	l.notify.Notify(models.KindVirtueLevelChanged, models.VirtueLevelChanged{
		Trait:  trait,
		Before: before,
		After:  r.Level,
		Reason: reason,
	})
}

func (l *Ledger) refreshState(r *Record) {
	before := r.State
	r.State = ClassifyState(r.Level, r.Consistency)
	if r.State == before {
		return
	}
	l.logger.Info("development state changed",
		log.String("trait", r.Trait.String()),
		log.String("before", before.String()),
		log.String("after", r.State.String()),
	)
	l.notify.Notify(models.KindDevelopmentStateChanged, models.DevelopmentStateChanged{
		Trait:  r.Trait,
		Before: before,
		After:  r.State,
	})
}

// Consistency returns the share of positive actions for trait within window,
// scaled to [0,100]. With fewer than MinConsistencySample actions in the
// window it returns Neutral and false.
func (l *Ledger) Consistency(trait models.Trait, window time.Duration) (float64, bool) {
	cutoff := l.now().Add(-window)
	inWindow := sequence.From(l.history).Filter(func(a models.ActionRecord) bool {
		return a.Trait == trait && !a.Timestamp.Before(cutoff)
	}).Collect()
	if len(inWindow) < MinConsistencySample {
		return Neutral, false
	}
	positive := sequence.From(inWindow).Filter(func(a models.ActionRecord) bool { return a.Positive }).Count()
	return 100 * float64(positive) / float64(len(inWindow)), true
}

// MeetsConsistency reports whether the stored consistency of trait reaches
// the configured requirement.
func (l *Ledger) MeetsConsistency(trait models.Trait) bool {
	if !trait.Valid() {
		return false
	}
	return l.records[trait].Consistency >= l.cfg.ConsistencyRequirement*100
}

// ComputeLevel recomputes a trait level from its last 50 actions, weighting
// each by exp(-0.1×daysAgo). It is an audit utility: the incrementally
// maintained level returned by Level is authoritative.
func (l *Ledger) ComputeLevel(trait models.Trait) float64 {
	actions := l.ActionsByTrait(trait, levelWindow)
	if len(actions) == 0 {
		return Neutral
	}
	now := l.now()
	var total, weight float64
	for _, a := range actions {
		days := now.Sub(a.Timestamp).Hours() / 24
		tw := math.Exp(-0.1 * days)
		total += a.Signed() * a.ContextWeight * tw
		weight += tw
	}
	if weight == 0 {
		return Neutral
	}
	return clamp(Neutral + total/weight*5)
}

// DecayTick pulls every trait idle for more than a day toward Neutral by
// decayRate×daysIdle×dt seconds, without crossing it.
func (l *Ledger) DecayTick(dt time.Duration) {
	if !l.cfg.DecayEnabled || dt <= 0 {
		return
	}
	now := l.now()
	for i := range l.records {
		r := &l.records[i]
		days := now.Sub(r.LastUpdated).Hours() / 24
		if days <= 1 || r.Level == Neutral {
			continue
		}
		amount := l.cfg.DecayRate * days * dt.Seconds()
		before := r.Level
		if r.Level > Neutral {
			r.Level = math.Max(r.Level-amount, Neutral)
		} else {
			r.Level = math.Min(r.Level+amount, Neutral)
		}
		l.refreshState(r)

		if math.Abs(before-r.Level) > 0.1 {
			l.notify.Notify(models.KindVirtueLevelChanged, models.VirtueLevelChanged{
				Trait:  r.Trait,
				Before: before,
				After:  r.Level,
				Reason: "decay",
			})
		}
	}
}

// RecordWisdom records a decision. Unwise decisions count at half weight.
func (l *Ledger) RecordWisdom(decision string, wise bool, complexity float64) (models.ActionRecord, error) {
	desc := fmt.Sprintf("decision: %s (wise: %s, complexity: %.1f)", decision, yesNo(wise), complexity)
	return l.RecordAction(models.TraitWisdom, "Decision Making", desc, complexity*scale(wise, 0.5), wise)
}

// RecordCourage records a response to a threat. Cowardice counts at 0.3.
func (l *Ledger) RecordCourage(threat string, courageous bool, risk float64) (models.ActionRecord, error) {
	desc := fmt.Sprintf("threat: %s (courage: %s, risk: %.1f)", threat, yesNo(courageous), risk)
	return l.RecordAction(models.TraitCourage, "Risk Taking", desc, risk*scale(courageous, 0.3), courageous)
}

// RecordJustice records a moral decision. Injustice counts at 0.2.
func (l *Ledger) RecordJustice(situation string, just bool, moralWeight float64) (models.ActionRecord, error) {
	desc := fmt.Sprintf("situation: %s (just: %s, weight: %.1f)", situation, yesNo(just), moralWeight)
	return l.RecordAction(models.TraitJustice, "Moral Decision", desc, moralWeight*scale(just, 0.2), just)
}

// RecordTemperance records a temptation. Giving in counts at 0.1.
func (l *Ledger) RecordTemperance(temptation string, restrained bool, strength float64) (models.ActionRecord, error) {
	desc := fmt.Sprintf("temptation: %s (restraint: %s, strength: %.1f)", temptation, yesNo(restrained), strength)
	return l.RecordAction(models.TraitTemperance, "Self Control", desc, strength*scale(restrained, 0.1), restrained)
}

func scale(virtuous bool, discounted float64) float64 {
	if virtuous {
		return 1.0
	}
	return discounted
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ClearHistory drops the action history. Trait records are kept.
func (l *Ledger) ClearHistory() {
	l.history = nil
	l.logger.Info("virtue history cleared")
}

// Reset restores every trait to its initial record and clears the history.
func (l *Ledger) Reset() {
	l.history = nil
	l.initRecords()
	l.logger.Info("virtue ledger reset")
}

// clamp bounds v to [0,100]. NaN maps to 0.
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
