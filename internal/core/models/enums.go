package models

import (
	"fmt"
	"strings"
)

// Category is the kind of a memory entry.
type Category uint8

const (
	CategoryEpisodic Category = iota
	CategorySemantic
	CategoryProcedural
	CategoryEmotional
	CategorySocial
	CategoryMoral
	CategoryTraumatic
)

var (
	categoryLabels = []string{"episodic", "semantic", "procedural", "emotional", "social", "moral", "traumatic"}
	categoryNames  = []string{
		"Episodic Memory", "Semantic Memory", "Procedural Memory", "Emotional Memory",
		"Social Memory", "Moral Memory", "Traumatic Memory",
	}
)

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryEpisodic, CategorySemantic, CategoryProcedural, CategoryEmotional,
		CategorySocial, CategoryMoral, CategoryTraumatic,
	}
}

func (c Category) Valid() bool         { return int(c) < len(categoryLabels) }
func (c Category) String() string      { return label(categoryLabels, int(c), "category") }
func (c Category) DisplayName() string { return label(categoryNames, int(c), "category") }

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, c)
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	v, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCategory resolves a category label such as "emotional".
func ParseCategory(s string) (Category, error) {
	i, ok := parse(categoryLabels, s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return Category(i), nil
}

// Importance is the ordered importance tier of a memory. Comparisons between
// tiers are meaningful: ImportanceCritical > ImportanceHigh.
type Importance uint8

const (
	ImportanceTrivial Importance = iota
	ImportanceLow
	ImportanceMedium
	ImportanceHigh
	ImportanceCritical
	ImportanceCore
)

var (
	importanceLabels = []string{"trivial", "low", "medium", "high", "critical", "core-identity"}
	importanceNames  = []string{"Trivial", "Low", "Medium", "High", "Critical", "Core Identity"}
)

func Importances() []Importance {
	return []Importance{
		ImportanceTrivial, ImportanceLow, ImportanceMedium,
		ImportanceHigh, ImportanceCritical, ImportanceCore,
	}
}

func (i Importance) Valid() bool         { return int(i) < len(importanceLabels) }
func (i Importance) String() string      { return label(importanceLabels, int(i), "importance") }
func (i Importance) DisplayName() string { return label(importanceNames, int(i), "importance") }

// Protected reports whether the tier is exempt from automatic forgetting.
func (i Importance) Protected() bool { return i >= ImportanceCritical }

func (i Importance) MarshalText() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownImportance, i)
	}
	return []byte(i.String()), nil
}

func (i *Importance) UnmarshalText(text []byte) error {
	v, err := ParseImportance(string(text))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

func ParseImportance(s string) (Importance, error) {
	if strings.EqualFold(strings.TrimSpace(s), "core") {
		return ImportanceCore, nil
	}
	i, ok := parse(importanceLabels, s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownImportance, s)
	}
	return Importance(i), nil
}

// Trait is one of the four cardinal virtues tracked by the ledger.
type Trait uint8

const (
	TraitWisdom Trait = iota
	TraitCourage
	TraitJustice
	TraitTemperance
)

var (
	traitLabels = []string{"practical-wisdom", "courage", "justice", "temperance"}
	traitNames  = []string{"Wisdom (Sophia)", "Courage (Andreia)", "Justice (Dikaiosyne)", "Temperance (Sophrosyne)"}
)

func Traits() []Trait {
	return []Trait{TraitWisdom, TraitCourage, TraitJustice, TraitTemperance}
}

func (t Trait) Valid() bool         { return int(t) < len(traitLabels) }
func (t Trait) String() string      { return label(traitLabels, int(t), "trait") }
func (t Trait) DisplayName() string { return label(traitNames, int(t), "trait") }

func (t Trait) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTrait, t)
	}
	return []byte(t.String()), nil
}

func (t *Trait) UnmarshalText(text []byte) error {
	v, err := ParseTrait(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func ParseTrait(s string) (Trait, error) {
	if strings.EqualFold(strings.TrimSpace(s), "wisdom") {
		return TraitWisdom, nil
	}
	i, ok := parse(traitLabels, s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTrait, s)
	}
	return Trait(i), nil
}

// DevelopmentState classifies a trait from its level and consistency.
type DevelopmentState uint8

const (
	StateDeficient DevelopmentState = iota
	StateDeveloping
	StateModerate
	StateStrong
	StateExemplary
	StateExcessive
)

var (
	stateLabels = []string{"deficient", "developing", "moderate", "strong", "exemplary", "excessive"}
	stateNames  = []string{"Deficient", "Developing", "Moderate", "Strong", "Exemplary", "Excessive (Vice)"}
)

func (s DevelopmentState) Valid() bool         { return int(s) < len(stateLabels) }
func (s DevelopmentState) String() string      { return label(stateLabels, int(s), "state") }
func (s DevelopmentState) DisplayName() string { return label(stateNames, int(s), "state") }

func (s DevelopmentState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown development state: %d", s)
	}
	return []byte(s.String()), nil
}

// Value is one of the ten latent player values inferred from actions.
type Value uint8

const (
	ValueSecurity Value = iota
	ValueAchievement
	ValueSelfDirection
	ValueStimulation
	ValueHedonism
	ValueConformity
	ValueTradition
	ValueBenevolence
	ValueUniversalism
	ValuePower
)

var (
	valueLabels = []string{
		"security", "achievement", "self-direction", "stimulation", "hedonism",
		"conformity", "tradition", "benevolence", "universalism", "power",
	}
	valueNames = []string{
		"Security", "Achievement", "Self-Direction", "Stimulation", "Hedonism",
		"Conformity", "Tradition", "Benevolence", "Universalism", "Power",
	}
)

// ValueCount is the size of the fixed value set.
const ValueCount = 10

func Values() []Value {
	out := make([]Value, ValueCount)
	for i := range out {
		out[i] = Value(i)
	}
	return out
}

func (v Value) Valid() bool         { return int(v) < len(valueLabels) }
func (v Value) String() string      { return label(valueLabels, int(v), "value") }
func (v Value) DisplayName() string { return label(valueNames, int(v), "value") }

func (v Value) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownValue, v)
	}
	return []byte(v.String()), nil
}

func (v *Value) UnmarshalText(text []byte) error {
	parsed, err := ParseValue(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func ParseValue(s string) (Value, error) {
	i, ok := parse(valueLabels, s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownValue, s)
	}
	return Value(i), nil
}

func label(table []string, i int, kind string) string {
	if i < 0 || i >= len(table) {
		return fmt.Sprintf("%s(%d)", kind, i)
	}
	return table[i]
}

func parse(table []string, s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	for i, l := range table {
		if l == s {
			return i, true
		}
	}
	return 0, false
}
