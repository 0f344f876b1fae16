package psyche

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/psyche/internal/core/events/bus"
	"github.com/zeusync/psyche/internal/core/happiness"
	"github.com/zeusync/psyche/internal/core/memory"
	"github.com/zeusync/psyche/internal/core/models"
	"github.com/zeusync/psyche/internal/core/observability/log"
	"github.com/zeusync/psyche/internal/core/values"
	"github.com/zeusync/psyche/internal/core/virtue"
)

// EventSource is the Source of every event the engine publishes.
const EventSource = "psyche"

// MemoryRequest is the inbound shape of a memory creation.
type MemoryRequest struct {
	Title      string            `yaml:"title"`
	Content    string            `yaml:"content"`
	Category   models.Category   `yaml:"category"`
	Importance models.Importance `yaml:"importance"`
	Intensity  float64           `yaml:"intensity"`
}

// ActionReport is the inbound shape of a virtue action.
type ActionReport struct {
	Trait       models.Trait `yaml:"trait"`
	Label       string       `yaml:"label"`
	Description string       `yaml:"description"`
	Impact      float64      `yaml:"impact"`
	Positive    bool         `yaml:"positive"`
}

// Engine is the per-session state container composing the memory store,
// the virtue ledger, the value inference engine and the happiness
// aggregator. It is not safe for concurrent use; see host.Driver.
type Engine struct {
	cfg Config

	memory    *memory.Store
	virtue    *virtue.Ledger
	values    *values.Engine
	happiness *happiness.Aggregator

	bus    bus.EventBus
	now    func() time.Time
	logger log.Log

	sessionID     uuid.UUID
	sessionStart  time.Time
	lastDecay     time.Time
	lastHappiness time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now for the engine and every component.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithBus publishes notifications on b instead of a private bus.
func WithBus(b bus.EventBus) Option {
	return func(e *Engine) { e.bus = b }
}

// New builds an engine and starts its first session.
func New(cfg Config, logger log.Log, opts ...Option) *Engine {
	if logger == nil {
		logger = log.NewNop()
	}
	e := &Engine{
		cfg:    cfg,
		now:    time.Now,
		logger: logger.With(log.String("component", "engine")),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = bus.New()
	}

	e.values = values.New(cfg.Values, logger, values.WithClock(e.now), values.WithNotifier(e))
	e.virtue = virtue.New(cfg.Virtue, logger,
		virtue.WithClock(e.now),
		virtue.WithNotifier(e),
		virtue.WithValueSink(e.values),
	)
	e.memory = memory.New(cfg.Memory, logger, memory.WithClock(e.now), memory.WithNotifier(e))
	e.happiness = happiness.New(e.memory, e.virtue, e.values, logger,
		happiness.WithClock(e.now),
		happiness.WithNotifier(e),
	)

	e.startSession()
	return e
}

// Notify publishes a component notification on the bus. Handler errors are
// logged and never reach the component.
func (e *Engine) Notify(kind models.Kind, payload any) {
	if err := e.bus.Publish(bus.NewEvent(kind.String(), EventSource, payload, e.now())); err != nil {
		e.logger.Warn("notification handler failed", log.String("kind", kind.String()), log.Error(err))
	}
}

// Subscribe registers handler for one notification kind.
func (e *Engine) Subscribe(kind models.Kind, handler bus.EventHandler) (bus.Subscription, error) {
	return e.bus.Subscribe(kind.String(), handler)
}

// SubscribeAll registers handler for every notification.
func (e *Engine) SubscribeAll(handler bus.EventHandler) (bus.Subscription, error) {
	return e.bus.SubscribeAll(handler)
}

// Bus returns the bus notifications are published on.
func (e *Engine) Bus() bus.EventBus { return e.bus }

func (e *Engine) startSession() {
	e.sessionID = uuid.New()
	e.sessionStart = e.now()
	e.lastDecay = time.Time{}
	e.lastHappiness = time.Time{}
	e.logger.Info("session started", log.String("session", e.sessionID.String()))
}

// NewSession resets every component and starts a new session. Memory ids
// restart at 1.
func (e *Engine) NewSession() uuid.UUID {
	prev := e.sessionID
	e.memory.Reset()
	e.virtue.Reset()
	e.values.Reset()
	e.happiness.Reset()
	e.startSession()
	e.logger.Info("session replaced", log.String("previous", prev.String()))
	return e.sessionID
}

func (e *Engine) SessionID() uuid.UUID { return e.sessionID }

// CreateMemory stores a new memory.
func (e *Engine) CreateMemory(req MemoryRequest) (memory.ID, error) {
	return e.memory.Create(req.Title, req.Content, req.Category, req.Importance, req.Intensity)
}

// ReportAction records a virtue action. Actions at or above the synthesis
// threshold also leave a moral memory behind.
func (e *Engine) ReportAction(r ActionReport) error {
	rec, err := e.virtue.RecordAction(r.Trait, r.Label, r.Description, r.Impact, r.Positive)
	if err != nil {
		return err
	}

	threshold := e.cfg.Engine.MemorySynthesisThreshold
	if threshold <= 0 || rec.Impact < threshold {
		return nil
	}
	importance := models.ImportanceMedium
	if rec.Impact >= 8 {
		importance = models.ImportanceHigh
	}
	title := fmt.Sprintf("%s: %s", rec.Trait.DisplayName(), rec.Label)
	if _, err := e.memory.Create(title, rec.Description, models.CategoryMoral, importance, rec.Impact*10); err != nil {
		e.logger.Warn("action memory not created", log.String("action", rec.ID.String()), log.Error(err))
	}
	return nil
}

// RecordHappinessEvent stores an emotional memory for a mood affecting event
// and recomputes happiness right away.
func (e *Engine) RecordHappinessEvent(eventType string, impact, intensity float64) (memory.ID, error) {
	importance := models.ImportanceMedium
	if math.Abs(impact) > 5 {
		importance = models.ImportanceHigh
	}
	id, err := e.memory.Create(
		"Happiness event: "+eventType,
		fmt.Sprintf("impact %.1f, intensity %.1f", impact, intensity),
		models.CategoryEmotional,
		importance,
		50+impact*5,
	)
	if err != nil {
		return 0, err
	}
	e.RecomputeHappiness()
	return id, nil
}

func (e *Engine) Access(id memory.ID) bool { return e.memory.Access(id) }

func (e *Engine) Forget(id memory.ID, force bool) error { return e.memory.Forget(id, force) }

func (e *Engine) Associate(a, b memory.ID) error { return e.memory.Associate(a, b) }

func (e *Engine) Dissociate(a, b memory.ID) error { return e.memory.Dissociate(a, b) }

func (e *Engine) Repress(id memory.ID) error { return e.memory.Repress(id) }

func (e *Engine) Recover(id memory.ID) error { return e.memory.Recover(id) }

func (e *Engine) Consolidate(id memory.ID) error { return e.memory.Consolidate(id) }

func (e *Engine) SetMemoryCapacity(n int) { e.memory.SetCapacity(n) }

// DecayTick runs one memory and virtue decay pass.
func (e *Engine) DecayTick(dt time.Duration) {
	e.memory.DecayTick(dt)
	e.virtue.DecayTick(dt)
	e.lastDecay = e.now()
}

// RecomputeHappiness publishes a fresh happiness snapshot.
func (e *Engine) RecomputeHappiness() happiness.Metrics {
	m := e.happiness.Recompute()
	e.lastHappiness = e.now()
	return m
}

// AssessValues recomputes every value assessment from the recent window.
func (e *Engine) AssessValues() { e.values.AssessAll() }
