package models

// Kind identifies a notification pushed out of the core.
type Kind string

const (
	KindMemoryCreated           Kind = "memory.created"
	KindMemoryAccessed          Kind = "memory.accessed"
	KindMemoryForgotten         Kind = "memory.forgotten"
	KindMemoryCapacityChanged   Kind = "memory.capacity_changed"
	KindVirtueActionRecorded    Kind = "virtue.action_recorded"
	KindVirtueLevelChanged      Kind = "virtue.level_changed"
	KindDevelopmentStateChanged Kind = "virtue.development_changed"
	KindValuesUpdated           Kind = "values.updated"
	KindHappinessUpdated        Kind = "happiness.updated"
)

func (k Kind) String() string { return string(k) }

// Notifier receives one-shot state change notifications from a component.
type Notifier interface {
	Notify(kind Kind, payload any)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(Kind, any) {}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind Kind, payload any)

func (f NotifierFunc) Notify(kind Kind, payload any) { f(kind, payload) }

// MemoryID is the stable integer id of a memory entry.
type MemoryID int64

// ForgetReason tells observers why a memory left the store.
type ForgetReason string

const (
	ForgetExplicit ForgetReason = "explicit"
	ForgetDecay    ForgetReason = "decay"
	ForgetEviction ForgetReason = "eviction"
)

type MemoryCreated struct {
	ID         MemoryID
	Title      string
	Category   Category
	Importance Importance
	Intensity  float64
	DecayRate  float64
}

type MemoryAccessed struct {
	ID            MemoryID
	AccessCount   int
	ClarityBefore float64
	ClarityAfter  float64
}

type MemoryForgotten struct {
	ID     MemoryID
	Title  string
	Reason ForgetReason
}

type MemoryCapacityChanged struct {
	Before int
	After  int
}

type VirtueActionRecorded struct {
	Record ActionRecord
}

type VirtueLevelChanged struct {
	Trait  Trait
	Before float64
	After  float64
	Reason string
}

type DevelopmentStateChanged struct {
	Trait  Trait
	Before DevelopmentState
	After  DevelopmentState
}

// ValueStrength is a compact (value, strength) pair used in notifications.
type ValueStrength struct {
	Value    Value
	Strength float64
}

type ValuesUpdated struct {
	Before []ValueStrength
	After  []ValueStrength
}

type HappinessUpdated struct {
	Before     float64
	After      float64
	SampleSize int
}
