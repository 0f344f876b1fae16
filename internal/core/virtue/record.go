package virtue

import (
	"time"

	"github.com/zeusync/psyche/internal/core/models"
)

// Neutral is the level and consistency every trait starts from and decays
// toward.
const Neutral = 50.0

// MinConsistencySample is the number of in-window actions needed before a
// consistency score is determined.
const MinConsistencySample = 3

// Record is the running state of one trait.
type Record struct {
	Trait         models.Trait            `json:"trait"`
	Level         float64                 `json:"level"`
	State         models.DevelopmentState `json:"state"`
	Experience    int                     `json:"experience"`
	Consistency   float64                 `json:"consistency"`
	LastUpdated   time.Time               `json:"last_updated"`
	RecentActions int                     `json:"recent_actions"`
}

func newRecord(t models.Trait, now time.Time) Record {
	return Record{
		Trait:       t,
		Level:       Neutral,
		State:       ClassifyState(Neutral, Neutral),
		Consistency: Neutral,
		LastUpdated: now,
	}
}

// ClassifyState maps a level and consistency onto a development state.
// Levels above 95 are excessive regardless of consistency.
func ClassifyState(level, consistency float64) models.DevelopmentState {
	if level > 95 {
		return models.StateExcessive
	}
	adjusted := level * (consistency / 100)
	switch {
	case adjusted >= 80:
		return models.StateExemplary
	case adjusted >= 65:
		return models.StateStrong
	case adjusted >= 40:
		return models.StateModerate
	case adjusted >= 25:
		return models.StateDeveloping
	default:
		return models.StateDeficient
	}
}
