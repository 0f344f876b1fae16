package memory

import (
	"fmt"
	"slices"
	"time"

	"github.com/zeusync/psyche/internal/core/models"
	"github.com/zeusync/psyche/internal/core/observability/log"
	"github.com/zeusync/psyche/pkg/sequence"
)

// MinCapacity is the lowest capacity SetCapacity accepts.
const MinCapacity = 10

// Store owns the memory entries of one session. It is not safe for
// concurrent use; callers drive it from a single goroutine.
type Store struct {
	cfg      Config
	capacity int

	entries []*Entry
	index   map[ID]int
	nextID  ID

	now    func() time.Time
	logger log.Log
	notify models.Notifier
}

type Option func(*Store)

// WithClock replaces time.Now as the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithNotifier sets the receiver of memory notifications.
func WithNotifier(n models.Notifier) Option {
	return func(s *Store) { s.notify = n }
}

// New creates an empty store. The configuration is not validated here: a
// store with capacity < 1 is constructed but refuses to create entries.
func New(cfg Config, logger log.Log, opts ...Option) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Store{
		cfg:      cfg,
		capacity: cfg.Capacity,
		index:    make(map[ID]int),
		nextID:   1,
		now:      time.Now,
		logger:   logger.With(log.String("component", "memory")),
		notify:   models.NopNotifier{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the configuration the store was built with.
func (s *Store) Config() Config { return s.cfg }

// Create inserts a new memory and returns its id. When the store is at
// capacity the lowest scoring evictable entries are forgotten first.
func (s *Store) Create(title, content string, category models.Category, importance models.Importance, intensity float64) (ID, error) {
	if !category.Valid() {
		s.logger.Warn("rejected memory with unknown category", log.Int("category", int(category)))
		return 0, fmt.Errorf("%w: %d", models.ErrUnknownCategory, category)
	}
	if !importance.Valid() {
		s.logger.Warn("rejected memory with unknown importance", log.Int("importance", int(importance)))
		return 0, fmt.Errorf("%w: %d", models.ErrUnknownImportance, importance)
	}
	if !models.Finite(intensity) {
		s.logger.Warn("rejected memory with non-finite intensity", log.String("title", title))
		return 0, fmt.Errorf("%w: intensity %v", models.ErrNonFinite, intensity)
	}
	if s.capacity < 1 {
		return 0, fmt.Errorf("%w: capacity %d", ErrMisconfigured, s.capacity)
	}

	if len(s.entries) >= s.capacity {
		if err := s.makeRoom(len(s.entries) - s.capacity + 1); err != nil {
			s.logger.Warn("memory not created", log.String("title", title), log.Error(err))
			return 0, err
		}
	}

	now := s.now()
	intensity = clamp(intensity)
	e := &Entry{
		ID:           s.nextID,
		Title:        title,
		Content:      content,
		Category:     category,
		Importance:   importance,
		Intensity:    intensity,
		Clarity:      100,
		DecayRate:    s.cfg.DecayRate(category, importance, intensity),
		CreatedAt:    now,
		LastAccess:   now,
		Associations: []ID{},
	}
	s.nextID++
	s.index[e.ID] = len(s.entries)
	s.entries = append(s.entries, e)

	s.logger.Info("memory created",
		log.Int64("id", int64(e.ID)),
		log.String("title", e.Title),
		log.String("category", e.Category.String()),
		log.String("importance", e.Importance.String()),
	)
	s.notify.Notify(models.KindMemoryCreated, models.MemoryCreated{
		ID:         e.ID,
		Title:      e.Title,
		Category:   e.Category,
		Importance: e.Importance,
		Intensity:  e.Intensity,
		DecayRate:  e.DecayRate,
	})
	return e.ID, nil
}

// makeRoom evicts n entries or none at all.
func (s *Store) makeRoom(n int) error {
	candidates := s.Candidates(n)
	if len(candidates) < n {
		return ErrStoreFull
	}
	for _, id := range candidates {
		s.remove(id, models.ForgetEviction)
	}
	return nil
}

// Access strengthens a memory. It reports false for unknown or repressed ids.
func (s *Store) Access(id ID) bool {
	e, ok := s.lookup(id)
	if !ok {
		return false
	}
	if e.Repressed {
		s.logger.Warn("refused access to repressed memory", log.Int64("id", int64(id)))
		return false
	}

	before := e.Clarity
	e.LastAccess = s.now()
	e.AccessCount++
	e.Clarity = clamp(e.Clarity + s.cfg.AccessClarityBonus)
	if e.Clarity >= 50 {
		e.Fading = false
	}
	if e.Clarity >= s.cfg.DecayThreshold*100 {
		e.pendingForget = false
	}

	s.logger.Debug("memory accessed", log.Int64("id", int64(id)), log.Int("access_count", e.AccessCount))
	s.notify.Notify(models.KindMemoryAccessed, models.MemoryAccessed{
		ID:            id,
		AccessCount:   e.AccessCount,
		ClarityBefore: before,
		ClarityAfter:  e.Clarity,
	})
	return true
}

// Forget removes a memory. Critical and core-identity memories are only
// removed when force is set; otherwise the refusal is logged and
// ErrProtected returned with no state change.
func (s *Store) Forget(id ID, force bool) error {
	e, ok := s.lookup(id)
	if !ok {
		return ErrNotFound
	}
	if !force && e.Importance.Protected() {
		s.logger.Warn("refused to forget protected memory",
			log.Int64("id", int64(id)),
			log.String("title", e.Title),
			log.String("importance", e.Importance.String()),
		)
		return ErrProtected
	}
	s.remove(id, models.ForgetExplicit)
	return nil
}

func (s *Store) remove(id ID, reason models.ForgetReason) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	e := s.entries[i]
	for _, other := range e.Associations {
		if o, ok := s.lookup(other); ok {
			o.unlink(id)
		}
	}

	s.entries = slices.Delete(s.entries, i, i+1)
	delete(s.index, id)
	for j := i; j < len(s.entries); j++ {
		s.index[s.entries[j].ID] = j
	}

	s.logger.Info("memory forgotten",
		log.Int64("id", int64(id)),
		log.String("title", e.Title),
		log.String("reason", string(reason)),
	)
	s.notify.Notify(models.KindMemoryForgotten, models.MemoryForgotten{ID: id, Title: e.Title, Reason: reason})
}

// DecayTick weakens every non-repressed memory that has not been accessed
// for more than a day. Entries that fell below the decay threshold on the
// previous pass are forgotten first, unless they recovered or are protected.
func (s *Store) DecayTick(dt time.Duration) {
	if !s.cfg.DecayEnabled || dt <= 0 {
		return
	}
	threshold := s.cfg.DecayThreshold * 100

	var expired []ID
	for _, e := range s.entries {
		if !e.pendingForget || e.Repressed {
			continue
		}
		if e.Clarity < threshold && !e.Importance.Protected() {
			expired = append(expired, e.ID)
		} else {
			e.pendingForget = false
		}
	}
	for _, id := range expired {
		s.remove(id, models.ForgetDecay)
	}

	now := s.now()
	for _, e := range s.entries {
		if e.Repressed {
			continue
		}
		days := now.Sub(e.LastAccess).Hours() / 24
		if days <= 1 {
			continue
		}
		e.Clarity = clamp(e.Clarity - e.DecayRate*dt.Seconds()*days)
		if e.Clarity < 50 {
			e.Fading = true
		}
		if e.Clarity < threshold && !e.Importance.Protected() {
			e.pendingForget = true
		}
	}

	if s.cfg.AutoManageCapacity {
		s.ManageCapacity()
	}
}

// ManageCapacity evicts the lowest scoring evictable entries while the
// store holds more than its capacity. It returns the number evicted.
func (s *Store) ManageCapacity() int {
	over := len(s.entries) - s.capacity
	if over <= 0 {
		return 0
	}
	candidates := s.Candidates(over)
	for _, id := range candidates {
		s.remove(id, models.ForgetEviction)
	}
	if len(candidates) > 0 {
		s.logger.Info("managed memory capacity", log.Int("evicted", len(candidates)))
	}
	return len(candidates)
}

// Candidates returns up to n evictable ids, lowest retention score first.
// Entries with equal scores keep insertion order. Protected and repressed
// entries are never candidates.
func (s *Store) Candidates(n int) []ID {
	if n <= 0 {
		return []ID{}
	}
	q := sequence.NewScoredQueue[ID](len(s.entries))
	for _, e := range s.entries {
		if e.Importance.Protected() || e.Repressed {
			continue
		}
		q.Push(e.ID, s.cfg.RetentionScore(*e))
	}
	return q.Drain(n)
}

// RetentionScore returns the eviction score of id.
func (s *Store) RetentionScore(id ID) (float64, bool) {
	e, ok := s.lookup(id)
	if !ok {
		return 0, false
	}
	return s.cfg.RetentionScore(*e), true
}

// Value returns the display value of a non-repressed memory.
func (s *Store) Value(id ID) (float64, bool) {
	e, ok := s.visible(id)
	if !ok {
		return 0, false
	}
	return Value(*e), true
}

// SetCapacity changes the capacity, never below MinCapacity, and evicts
// down to it when auto management is enabled.
func (s *Store) SetCapacity(n int) {
	before := s.capacity
	s.capacity = max(n, MinCapacity)

	s.logger.Info("memory capacity changed", log.Int("before", before), log.Int("after", s.capacity))
	s.notify.Notify(models.KindMemoryCapacityChanged, models.MemoryCapacityChanged{Before: before, After: s.capacity})

	if s.cfg.AutoManageCapacity {
		s.ManageCapacity()
	}
}

func (s *Store) Capacity() int { return s.capacity }

// Count returns the number of stored entries, repressed ones included.
func (s *Store) Count() int { return len(s.entries) }

// UsagePercent returns count/capacity as a percentage.
func (s *Store) UsagePercent() float64 {
	if s.capacity < 1 {
		return 0
	}
	return float64(len(s.entries)) / float64(s.capacity) * 100
}

// Associate links two memories symmetrically. Linking an existing pair is a
// no-op.
func (s *Store) Associate(a, b ID) error {
	if a == b {
		return ErrSelfAssociation
	}
	ea, ok := s.lookup(a)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, a)
	}
	eb, ok := s.lookup(b)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, b)
	}
	if ea.link(b) {
		eb.link(a)
		s.logger.Debug("memories associated", log.Int64("a", int64(a)), log.Int64("b", int64(b)))
	}
	return nil
}

// Dissociate removes the link between two memories if present.
func (s *Store) Dissociate(a, b ID) error {
	ea, ok := s.lookup(a)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, a)
	}
	eb, ok := s.lookup(b)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, b)
	}
	ea.unlink(b)
	eb.unlink(a)
	return nil
}

// NetworkDensity is the share of possible association edges that exist.
func (s *Store) NetworkDensity() float64 {
	n := len(s.entries)
	if n <= 1 {
		return 0
	}
	links := 0
	for _, e := range s.entries {
		links += len(e.Associations)
	}
	possible := n * (n - 1) / 2
	return float64(links/2) / float64(possible)
}

// Repress hides a traumatic memory from every read, search and decay pass.
func (s *Store) Repress(id ID) error {
	e, ok := s.lookup(id)
	if !ok {
		return ErrNotFound
	}
	if e.Category != models.CategoryTraumatic {
		s.logger.Warn("refused to repress non traumatic memory",
			log.Int64("id", int64(id)),
			log.String("category", e.Category.String()),
		)
		return ErrNotTraumatic
	}
	if !e.Repressed {
		e.Repressed = true
		e.pendingForget = false
		s.logger.Info("memory repressed", log.Int64("id", int64(id)))
	}
	return nil
}

// Recover makes a repressed memory visible again.
func (s *Store) Recover(id ID) error {
	e, ok := s.lookup(id)
	if !ok {
		return ErrNotFound
	}
	if e.Repressed {
		e.Repressed = false
		s.logger.Info("memory recovered", log.Int64("id", int64(id)))
	}
	return nil
}

// Consolidate moves a memory to long term storage by cutting its decay rate
// to a tenth.
func (s *Store) Consolidate(id ID) error {
	e, ok := s.lookup(id)
	if !ok {
		return ErrNotFound
	}
	e.DecayRate *= 0.1
	s.logger.Debug("memory consolidated", log.Int64("id", int64(id)), log.Float64("decay_rate", e.DecayRate))
	return nil
}

// IsConsolidated reports whether the memory decays slower than 0.01.
func (s *Store) IsConsolidated(id ID) bool {
	e, ok := s.lookup(id)
	return ok && e.DecayRate < 0.01
}

// Reset drops every entry and restarts id assignment at 1.
func (s *Store) Reset() {
	s.entries = nil
	s.index = make(map[ID]int)
	s.nextID = 1
	s.capacity = s.cfg.Capacity
	s.logger.Info("memory store reset")
}

func (s *Store) lookup(id ID) (*Entry, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.entries[i], true
}

func (s *Store) visible(id ID) (*Entry, bool) {
	e, ok := s.lookup(id)
	if !ok || e.Repressed {
		return nil, false
	}
	return e, true
}
