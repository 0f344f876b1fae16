package models

import (
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
)

// Impact bounds of a single virtue action.
const (
	MinImpact = 0.0
	MaxImpact = 10.0
)

// ValueWeight is the contribution of a trait action to one latent value.
type ValueWeight struct {
	Value  Value   `json:"value" yaml:"value"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// ActionRecord is one weighted virtue action. Records are immutable once
// created; the ledger only ever prunes them.
type ActionRecord struct {
	ID             ulid.ULID     `json:"id"`
	Trait          Trait         `json:"trait"`
	Label          string        `json:"label"`
	Description    string        `json:"description"`
	Impact         float64       `json:"impact"`
	Positive       bool          `json:"positive"`
	Timestamp      time.Time     `json:"timestamp"`
	ContextWeight  float64       `json:"context_weight"`
	AffectedValues []ValueWeight `json:"affected_values"`
}

// Signed returns the impact with the action's polarity applied.
func (a ActionRecord) Signed() float64 {
	if a.Positive {
		return a.Impact
	}
	return -a.Impact
}

// Affects reports whether the record carries evidence for v.
func (a ActionRecord) Affects(v Value) bool {
	return slices.ContainsFunc(a.AffectedValues, func(w ValueWeight) bool { return w.Value == v })
}

var traitValues = map[Trait][]ValueWeight{
	TraitWisdom: {
		{Value: ValueSelfDirection, Weight: 1.0},
	},
	TraitCourage: {
		{Value: ValueAchievement, Weight: 1.0},
		{Value: ValueStimulation, Weight: 0.5},
	},
	TraitJustice: {
		{Value: ValueUniversalism, Weight: 1.0},
		{Value: ValueBenevolence, Weight: 0.8},
	},
	TraitTemperance: {
		{Value: ValueSecurity, Weight: 1.0},
		{Value: ValueConformity, Weight: 0.6},
	},
}

// TraitValues returns the static trait to value mapping for t. The returned
// slice is a copy.
func TraitValues(t Trait) []ValueWeight {
	return slices.Clone(traitValues[t])
}
