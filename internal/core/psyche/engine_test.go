package psyche

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/psyche/internal/core/events/bus"
	"github.com/zeusync/psyche/internal/core/memory"
	"github.com/zeusync/psyche/internal/core/models"
	"github.com/zeusync/psyche/internal/core/observability/log"
)

type manualClock struct{ t time.Time }

func (c *manualClock) Now() time.Time { return c.t }

func newTestEngine(t *testing.T) (*Engine, *manualClock) {
	t.Helper()
	clk := &manualClock{t: time.Date(2024, 11, 2, 8, 0, 0, 0, time.UTC)}
	return New(DefaultConfig(), log.NewNop(), WithClock(clk.Now)), clk
}

func collect(t *testing.T, e *Engine, kind models.Kind) *[]bus.Event {
	t.Helper()
	var got []bus.Event
	_, err := e.Subscribe(kind, func(ev bus.Event) error {
		got = append(got, ev)
		return nil
	})
	require.NoError(t, err)
	return &got
}

func TestReportActionFlowsIntoValues(t *testing.T) {
	e, _ := newTestEngine(t)
	updates := collect(t, e, models.KindValuesUpdated)

	require.NoError(t, e.ReportAction(ActionReport{Trait: models.TraitJustice, Label: "share", Impact: 4, Positive: true}))

	assert.Equal(t, 54.0, e.GetVirtueLevel(models.TraitJustice))
	assert.Equal(t, models.ValueUniversalism, e.DominantValues(1)[0])
	assert.Len(t, *updates, 1)
	assert.Empty(t, e.RecentMemories(0))
}

func TestReportActionSynthesizesMoralMemory(t *testing.T) {
	e, _ := newTestEngine(t)

	require.NoError(t, e.ReportAction(ActionReport{Trait: models.TraitCourage, Label: "charge", Description: "ran at the wolf", Impact: 6, Positive: true}))
	require.NoError(t, e.ReportAction(ActionReport{Trait: models.TraitWisdom, Label: "riddle", Impact: 9, Positive: false}))

	moral := e.MemoriesByCategory(models.CategoryMoral)
	require.Len(t, moral, 2)
	assert.Equal(t, "Courage (Andreia): charge", moral[0].Title)
	assert.Equal(t, "ran at the wolf", moral[0].Content)
	assert.Equal(t, models.ImportanceMedium, moral[0].Importance)
	assert.Equal(t, 60.0, moral[0].Intensity)
	assert.Equal(t, models.ImportanceHigh, moral[1].Importance)
	assert.Equal(t, 90.0, moral[1].Intensity)
}

func TestReportActionRejectsUnknownTrait(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.ReportAction(ActionReport{Trait: models.Trait(11), Label: "x", Impact: 9, Positive: true})
	assert.ErrorIs(t, err, models.ErrUnknownTrait)
	assert.Zero(t, e.Stats().Memories)
}

func TestRecordHappinessEvent(t *testing.T) {
	e, _ := newTestEngine(t)
	happy := collect(t, e, models.KindHappinessUpdated)

	id, err := e.RecordHappinessEvent("festival", 8, 70)
	require.NoError(t, err)

	m, err := e.GetMemory(id)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryEmotional, m.Category)
	assert.Equal(t, models.ImportanceHigh, m.Importance)
	assert.Equal(t, 90.0, m.Intensity)
	require.Len(t, *happy, 1)
	assert.InDelta(t, 90.0, e.GetHappinessMetrics().PositiveAffect, 1e-9)

	id, err = e.RecordHappinessEvent("rain", -20, 10)
	require.NoError(t, err)
	m, _ = e.GetMemory(id)
	assert.Equal(t, 0.0, m.Intensity)
}

func TestEmotionalMemoriesFollowIntensity(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.RecordHappinessEvent("festival", 8, 70)
	require.NoError(t, err)
	_, err = e.CreateMemory(MemoryRequest{Title: "ledger", Category: models.CategorySemantic, Importance: models.ImportanceLow, Intensity: 10})
	require.NoError(t, err)
	require.NoError(t, e.ReportAction(ActionReport{Trait: models.TraitCourage, Label: "charge", Impact: 7, Positive: true}))

	got := e.EmotionalMemories(70)
	require.Len(t, got, 2)
	assert.Equal(t, "Happiness event: festival", got[0].Title)
	assert.Equal(t, "Courage (Andreia): charge", got[1].Title)
	assert.Len(t, e.EmotionalMemories(0), 3)
	assert.Empty(t, e.EmotionalMemories(95))
}

func TestNotificationsCarryKindAndTimestamp(t *testing.T) {
	e, clk := newTestEngine(t)
	var kinds []string
	_, err := e.SubscribeAll(func(ev bus.Event) error {
		kinds = append(kinds, ev.Type())
		assert.Equal(t, EventSource, ev.Source())
		assert.Equal(t, clk.Now(), ev.Timestamp())
		return nil
	})
	require.NoError(t, err)

	id, err := e.CreateMemory(MemoryRequest{Title: "dawn", Category: models.CategoryEpisodic, Importance: models.ImportanceLow, Intensity: 20})
	require.NoError(t, err)
	require.True(t, e.Access(id))
	require.NoError(t, e.Forget(id, false))

	assert.Equal(t, []string{"memory.created", "memory.accessed", "memory.forgotten"}, kinds)
}

func TestHandlerErrorsAreLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := New(DefaultConfig(), log.NewWithCore(core))
	sub, err := e.Subscribe(models.KindMemoryCreated, func(bus.Event) error { return errors.New("ui offline") })
	require.NoError(t, err)

	_, err = e.CreateMemory(MemoryRequest{Title: "x", Category: models.CategorySemantic, Importance: models.ImportanceLow})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("notification handler failed").Len())

	require.NoError(t, sub.Cancel())
	_, err = e.CreateMemory(MemoryRequest{Title: "y", Category: models.CategorySemantic, Importance: models.ImportanceLow})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("notification handler failed").Len())
}

func TestForgetCriticalThroughEngine(t *testing.T) {
	e, _ := newTestEngine(t)
	id, err := e.CreateMemory(MemoryRequest{Title: "oath", Category: models.CategoryMoral, Importance: models.ImportanceCritical, Intensity: 70})
	require.NoError(t, err)

	assert.ErrorIs(t, e.Forget(id, false), memory.ErrProtected)
	_, err = e.GetMemory(id)
	assert.NoError(t, err)
}

func TestDecayTickAndStats(t *testing.T) {
	e, clk := newTestEngine(t)
	require.NoError(t, e.ReportAction(ActionReport{Trait: models.TraitTemperance, Label: "fast", Impact: 4, Positive: true}))
	_, err := e.CreateMemory(MemoryRequest{Title: "feast", Category: models.CategoryEpisodic, Importance: models.ImportanceMedium, Intensity: 40})
	require.NoError(t, err)

	clk.t = clk.t.Add(72 * time.Hour)
	e.DecayTick(10 * time.Second)

	assert.Less(t, e.GetVirtueLevel(models.TraitTemperance), 54.0)
	assert.Less(t, e.RecentMemories(1)[0].Clarity, 100.0)

	stats := e.Stats()
	assert.Equal(t, clk.Now(), stats.LastDecay)
	assert.Equal(t, 1, stats.Memories)
	assert.Equal(t, 1, stats.Actions)
	assert.Equal(t, 1000, stats.Capacity)
	assert.Equal(t, e.SessionID().String(), stats.SessionID)
}

func TestNewSessionResetsEverything(t *testing.T) {
	e, _ := newTestEngine(t)
	first := e.SessionID()
	require.NoError(t, e.ReportAction(ActionReport{Trait: models.TraitCourage, Label: "charge", Impact: 9, Positive: true}))
	e.RecomputeHappiness()
	require.NotZero(t, e.Stats().Memories)

	second := e.NewSession()

	assert.NotEqual(t, first, second)
	assert.Zero(t, e.Stats().Memories)
	assert.Zero(t, e.Stats().Actions)
	assert.True(t, e.Stats().LastHappiness.IsZero())
	assert.Equal(t, 50.0, e.GetVirtueLevel(models.TraitCourage))
	assert.Equal(t, 50.0, e.GetValueProfile()[0].Strength)
	assert.Equal(t, 50.0, e.GetHappinessMetrics().Overall)

	id, err := e.CreateMemory(MemoryRequest{Title: "again", Category: models.CategoryEpisodic, Importance: models.ImportanceLow})
	require.NoError(t, err)
	assert.Equal(t, memory.ID(1), id)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Engine.MemorySynthesisThreshold = 11
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Memory.Capacity = 0
	assert.ErrorIs(t, cfg.Validate(), memory.ErrMisconfigured)
}
