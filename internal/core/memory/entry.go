package memory

import (
	"math"
	"slices"
	"time"

	"github.com/zeusync/psyche/internal/core/models"
)

// ID identifies an entry within a session.
type ID = models.MemoryID

// Entry is a single memory. Values returned by the Store are copies; edits
// to them never reach the store.
type Entry struct {
	ID           ID                `json:"id"`
	Title        string            `json:"title"`
	Content      string            `json:"content"`
	Category     models.Category   `json:"category"`
	Importance   models.Importance `json:"importance"`
	Intensity    float64           `json:"emotional_intensity"`
	Clarity      float64           `json:"clarity"`
	DecayRate    float64           `json:"decay_rate"`
	CreatedAt    time.Time         `json:"created_at"`
	LastAccess   time.Time         `json:"last_access"`
	AccessCount  int               `json:"access_count"`
	Fading       bool              `json:"fading"`
	Repressed    bool              `json:"repressed"`
	Associations []ID              `json:"associations"`

	// set when clarity fell below the decay threshold during the last pass
	pendingForget bool
}

func (e *Entry) clone() Entry {
	out := *e
	out.Associations = slices.Clone(e.Associations)
	if out.Associations == nil {
		out.Associations = []ID{}
	}
	return out
}

func (e *Entry) associated(id ID) bool {
	_, ok := slices.BinarySearch(e.Associations, id)
	return ok
}

func (e *Entry) link(id ID) bool {
	i, ok := slices.BinarySearch(e.Associations, id)
	if ok {
		return false
	}
	e.Associations = slices.Insert(e.Associations, i, id)
	return true
}

func (e *Entry) unlink(id ID) bool {
	i, ok := slices.BinarySearch(e.Associations, id)
	if !ok {
		return false
	}
	e.Associations = slices.Delete(e.Associations, i, i+1)
	return true
}

var typeDecayMultiplier = map[models.Category]float64{
	models.CategoryEpisodic:   1.0,
	models.CategorySemantic:   0.5,
	models.CategoryProcedural: 0.3,
	models.CategoryEmotional:  0.8,
	models.CategoryTraumatic:  0.2,
}

// DecayRate returns the decay rate an entry is created with.
func (c Config) DecayRate(category models.Category, importance models.Importance, intensity float64) float64 {
	mult, ok := typeDecayMultiplier[category]
	if !ok {
		mult = 1.0
	}
	rate := c.BaseDecayRate * mult
	if importance >= models.ImportanceHigh {
		rate *= 0.5
	}
	if intensity > 70 {
		rate *= c.EmotionalRetentionMultiplier
	}
	return rate
}

// RetentionScore ranks entries for eviction; lower scores go first.
func (c Config) RetentionScore(e Entry) float64 {
	score := float64(e.Importance) * 20
	score += e.Intensity * c.EmotionalRetentionMultiplier
	score += e.Clarity
	score += math.Min(float64(e.AccessCount)*5, 50)
	score += float64(len(e.Associations)) * 10
	return score
}

var importanceBaseValue = []float64{10, 25, 50, 75, 90, 100}

// Value is a [0,100] display score blending importance, intensity, access
// frequency, clarity and associations.
func Value(e Entry) float64 {
	base := 50.0
	if int(e.Importance) < len(importanceBaseValue) {
		base = importanceBaseValue[e.Importance]
	}
	v := base + e.Intensity*0.2
	v += math.Min(float64(e.AccessCount)*2, 20)
	v *= e.Clarity / 100
	v += float64(len(e.Associations)) * 5
	return clamp(v)
}

// clamp bounds v to [0,100]. NaN maps to 0.
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
