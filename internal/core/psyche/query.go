package psyche

import (
	"time"

	"github.com/zeusync/psyche/internal/core/happiness"
	"github.com/zeusync/psyche/internal/core/memory"
	"github.com/zeusync/psyche/internal/core/models"
	"github.com/zeusync/psyche/internal/core/values"
	"github.com/zeusync/psyche/internal/core/virtue"
)

func (e *Engine) GetMemory(id memory.ID) (memory.Entry, error) { return e.memory.Get(id) }

func (e *Engine) MemoriesByCategory(c models.Category) []memory.Entry {
	return e.memory.ByCategory(c)
}

func (e *Engine) MemoriesByImportance(i models.Importance) []memory.Entry {
	return e.memory.ByImportance(i)
}

func (e *Engine) SearchMemories(term string) []memory.Entry { return e.memory.Search(term) }

func (e *Engine) RecentMemories(n int) []memory.Entry { return e.memory.Recent(n) }

// EmotionalMemories returns the visible memories with intensity of at least
// minIntensity, oldest first.
func (e *Engine) EmotionalMemories(minIntensity float64) []memory.Entry {
	return e.memory.Emotional(minIntensity)
}

func (e *Engine) AssociatedMemories(id memory.ID) []memory.Entry { return e.memory.Associated(id) }

func (e *Engine) MemoryValue(id memory.ID) (float64, bool) { return e.memory.Value(id) }

func (e *Engine) GetVirtueLevel(t models.Trait) float64 { return e.virtue.Level(t) }

func (e *Engine) GetDevelopmentState(t models.Trait) models.DevelopmentState {
	return e.virtue.State(t)
}

func (e *Engine) GetVirtueRecords() []virtue.Record { return e.virtue.Records() }

func (e *Engine) GetOverallVirtueScore() float64 { return e.virtue.OverallScore() }

func (e *Engine) RecentActions(n int) []models.ActionRecord { return e.virtue.RecentActions(n) }

func (e *Engine) VirtueReport() string { return e.virtue.Report() }

// GetValueProfile returns every value assessment, strongest first.
func (e *Engine) GetValueProfile() []values.Assessment { return e.values.Profile() }

func (e *Engine) DominantValues(n int) []models.Value { return e.values.Dominant(n) }

// GetHappinessMetrics returns the last computed snapshot without
// recomputing it.
func (e *Engine) GetHappinessMetrics() happiness.Metrics { return e.happiness.Current() }

// Stats summarises the session.
type Stats struct {
	SessionID      string    `json:"session_id"`
	SessionStart   time.Time `json:"session_start"`
	Memories       int       `json:"memories"`
	Capacity       int       `json:"capacity"`
	UsagePercent   float64   `json:"usage_percent"`
	NetworkDensity float64   `json:"network_density"`
	Actions        int       `json:"actions"`
	OverallVirtue  float64   `json:"overall_virtue"`
	Happiness      float64   `json:"happiness"`
	LastDecay      time.Time `json:"last_decay"`
	LastHappiness  time.Time `json:"last_happiness"`
}

func (e *Engine) Stats() Stats {
	return Stats{
		SessionID:      e.sessionID.String(),
		SessionStart:   e.sessionStart,
		Memories:       e.memory.Count(),
		Capacity:       e.memory.Capacity(),
		UsagePercent:   e.memory.UsagePercent(),
		NetworkDensity: e.memory.NetworkDensity(),
		Actions:        e.virtue.HistoryLen(),
		OverallVirtue:  e.virtue.OverallScore(),
		Happiness:      e.happiness.Current().Overall,
		LastDecay:      e.lastDecay,
		LastHappiness:  e.lastHappiness,
	}
}
