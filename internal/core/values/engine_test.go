package values

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/psyche/internal/core/models"
	"github.com/zeusync/psyche/internal/core/observability/log"
)

var epoch = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

type counter struct{ updates []models.ValuesUpdated }

func (c *counter) Notify(kind models.Kind, payload any) {
	if kind == models.KindValuesUpdated {
		c.updates = append(c.updates, payload.(models.ValuesUpdated))
	}
}

func newTestEngine(cfg Config) (*Engine, *counter) {
	c := &counter{}
	return New(cfg, log.NewNop(), WithClock(func() time.Time { return epoch }), WithNotifier(c)), c
}

func action(trait models.Trait, impact float64, positive bool, at time.Time) models.ActionRecord {
	return models.ActionRecord{
		Trait:          trait,
		Description:    fmt.Sprintf("%s %.0f", trait, impact),
		Impact:         impact,
		Positive:       positive,
		Timestamp:      at,
		ContextWeight:  1,
		AffectedValues: models.TraitValues(trait),
	}
}

func TestInitialAssessments(t *testing.T) {
	e, _ := newTestEngine(DefaultConfig())
	for _, v := range models.Values() {
		a, ok := e.Assessment(v)
		require.True(t, ok)
		assert.Equal(t, 50.0, a.Strength)
		assert.Equal(t, 50.0, a.Consistency)
		assert.Equal(t, 20.0, a.Confidence)
		assert.Zero(t, a.SampleCount)
	}
}

func TestIngestAppliesWeightedEvidence(t *testing.T) {
	e, c := newTestEngine(DefaultConfig())

	e.Ingest(action(models.TraitCourage, 4, true, epoch))

	ach, _ := e.Assessment(models.ValueAchievement)
	assert.InDelta(t, 50.4, ach.Strength, 1e-9)
	assert.InDelta(t, 0.2*0.4, ach.Trend, 1e-9)
	assert.Equal(t, 1, ach.SampleCount)
	assert.InDelta(t, 1.5, ach.Confidence, 1e-9)
	assert.Equal(t, []string{"courage 4"}, ach.Evidence)

	stim, _ := e.Assessment(models.ValueStimulation)
	assert.InDelta(t, 50.2, stim.Strength, 1e-9)

	assert.Equal(t, 50.0, e.Strength(models.ValueSecurity))
	require.Len(t, c.updates, 1)
	assert.Equal(t, 50.0, c.updates[0].Before[models.ValueAchievement].Strength)
	assert.InDelta(t, 50.4, c.updates[0].After[models.ValueAchievement].Strength, 1e-9)
}

func TestNonFiniteEvidenceIsIgnored(t *testing.T) {
	tests := map[string]float64{
		"nan":          math.NaN(),
		"positive inf": math.Inf(1),
		"negative inf": math.Inf(-1),
	}
	for name, bad := range tests {
		t.Run(name, func(t *testing.T) {
			e, c := newTestEngine(DefaultConfig())

			e.Ingest(action(models.TraitJustice, bad, true, epoch))
			e.UpdateValue(models.ValueSecurity, bad, "direct")
			e.AssessAll()

			for _, a := range e.Profile() {
				assert.Equal(t, 50.0, a.Strength, a.Value.String())
				assert.Zero(t, a.Trend)
				assert.Zero(t, a.SampleCount)
			}
			assert.Equal(t, 20.0, e.MeanConfidence())
			assert.Empty(t, c.updates)
		})
	}
}

func TestTrendIsExponentialMovingAverage(t *testing.T) {
	e, _ := newTestEngine(DefaultConfig())
	want := 0.0
	for i := 0; i < 6; i++ {
		positive := i%2 == 0
		e.Ingest(action(models.TraitWisdom, 5, positive, epoch))
		ev := 0.5
		if !positive {
			ev = -0.5
		}
		want = 0.8*want + 0.2*ev
	}
	a, _ := e.Assessment(models.ValueSelfDirection)
	assert.InDelta(t, want, a.Trend, 1e-9)
}

func TestEvidenceRingIsCapped(t *testing.T) {
	e, _ := newTestEngine(DefaultConfig())
	for i := 1; i <= 13; i++ {
		e.Ingest(action(models.TraitTemperance, float64(i%10), true, epoch))
	}
	a, _ := e.Assessment(models.ValueSecurity)
	require.Len(t, a.Evidence, 10)
	assert.Equal(t, "temperance 4", a.Evidence[0])
	assert.Equal(t, "temperance 3", a.Evidence[9])
	assert.Equal(t, 13, a.SampleCount)
	assert.InDelta(t, 19.5, a.Confidence, 1e-9)
}

func TestConfidenceCapsAtHundred(t *testing.T) {
	e, _ := newTestEngine(DefaultConfig())
	for i := 0; i < 80; i++ {
		e.UpdateValue(models.ValuePower, 1, "push")
	}
	a, _ := e.Assessment(models.ValuePower)
	assert.Equal(t, 100.0, a.Confidence)
}

func TestStrengthStaysInRange(t *testing.T) {
	e, _ := newTestEngine(DefaultConfig())
	for i := 0; i < 200; i++ {
		e.Ingest(action(models.TraitJustice, 10, true, epoch))
	}
	assert.Equal(t, 100.0, e.Strength(models.ValueUniversalism))
	a, _ := e.Assessment(models.ValueUniversalism)
	assert.LessOrEqual(t, a.Trend, 10.0)

	for i := 0; i < 400; i++ {
		e.Ingest(action(models.TraitJustice, 10, false, epoch))
	}
	assert.Equal(t, 0.0, e.Strength(models.ValueUniversalism))
}

func TestAssessAllIsIdempotent(t *testing.T) {
	e, c := newTestEngine(DefaultConfig())
	for i := 0; i < 7; i++ {
		e.Ingest(action(models.TraitJustice, 3, i != 2, epoch.Add(time.Duration(i)*time.Hour)))
		e.Ingest(action(models.TraitCourage, 2, true, epoch.Add(time.Duration(i)*time.Hour)))
	}

	e.AssessAll()
	first := e.Profile()
	published := len(c.updates)

	e.AssessAll()
	assert.Equal(t, first, e.Profile())
	assert.Equal(t, published, len(c.updates))

	univ, _ := e.Assessment(models.ValueUniversalism)
	assert.InDelta(t, 50+((6*3.0-3)/7)*10, univ.Strength, 1e-9)
	assert.Equal(t, 7, univ.SampleCount)
	assert.InDelta(t, 14.0, univ.Confidence, 1e-9)
	assert.InDelta(t, 100*6.0/7, univ.Consistency, 1e-9)
	assert.Equal(t, epoch.Add(6*time.Hour), univ.LastAssessed)

	sec, _ := e.Assessment(models.ValueSecurity)
	assert.Equal(t, 50.0, sec.Strength)
	assert.Zero(t, sec.SampleCount)
}

func TestAssessAllUsesBoundedWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window = 3
	e, _ := newTestEngine(cfg)
	e.Ingest(action(models.TraitWisdom, 10, false, epoch))
	for i := 0; i < 3; i++ {
		e.Ingest(action(models.TraitWisdom, 2, true, epoch))
	}
	e.AssessAll()
	assert.InDelta(t, 70.0, e.Strength(models.ValueSelfDirection), 1e-9)
}

func TestDominantOrdering(t *testing.T) {
	e, _ := newTestEngine(DefaultConfig())
	e.Ingest(action(models.TraitJustice, 5, true, epoch))
	e.Ingest(action(models.TraitTemperance, 5, false, epoch))

	assert.Equal(t, []models.Value{models.ValueUniversalism, models.ValueBenevolence, models.ValueAchievement},
		e.Dominant(3))

	profile := e.Profile()
	require.Len(t, profile, models.ValueCount)
	assert.Equal(t, models.ValueSecurity, profile[len(profile)-1].Value)
	assert.Equal(t, models.ValueConformity, profile[len(profile)-2].Value)
	assert.Empty(t, e.Dominant(0))
	assert.Len(t, e.Dominant(50), models.ValueCount)
}

func TestDisabledEngineIgnoresActions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	e, c := newTestEngine(cfg)
	e.Ingest(action(models.TraitCourage, 10, true, epoch))
	e.AssessAll()
	assert.Equal(t, 50.0, e.Strength(models.ValueAchievement))
	assert.Empty(t, c.updates)
}

func TestResetRestoresInitialState(t *testing.T) {
	e, _ := newTestEngine(DefaultConfig())
	fresh := e.Fingerprint()
	e.Ingest(action(models.TraitCourage, 10, true, epoch))
	assert.NotEqual(t, fresh, e.Fingerprint())
	e.Reset()
	assert.Equal(t, fresh, e.Fingerprint())
	assert.InDelta(t, 20.0, e.MeanConfidence(), 1e-9)
}
