package memory

import (
	"strings"

	"github.com/zeusync/psyche/internal/core/models"
	"github.com/zeusync/psyche/internal/core/observability/log"
	"github.com/zeusync/psyche/pkg/sequence"
)

// Get returns a copy of the memory with the given id.
func (s *Store) Get(id ID) (Entry, error) {
	e, ok := s.lookup(id)
	if !ok {
		return Entry{}, ErrNotFound
	}
	if e.Repressed {
		s.logger.Warn("refused read of repressed memory", log.Int64("id", int64(id)))
		return Entry{}, ErrRepressed
	}
	return e.clone(), nil
}

// All returns every visible memory in insertion order.
func (s *Store) All() []Entry {
	return s.query(func(*Entry) bool { return true })
}

func (s *Store) ByCategory(category models.Category) []Entry {
	return s.query(func(e *Entry) bool { return e.Category == category })
}

func (s *Store) ByImportance(importance models.Importance) []Entry {
	return s.query(func(e *Entry) bool { return e.Importance == importance })
}

// Search matches term case-insensitively against titles and contents.
func (s *Store) Search(term string) []Entry {
	term = strings.ToLower(term)
	return s.query(func(e *Entry) bool {
		return strings.Contains(strings.ToLower(e.Title), term) ||
			strings.Contains(strings.ToLower(e.Content), term)
	})
}

// Emotional returns visible memories with intensity at least minIntensity.
func (s *Store) Emotional(minIntensity float64) []Entry {
	return s.query(func(e *Entry) bool { return e.Intensity >= minIntensity })
}

// Recent returns up to n visible memories, newest first. A non-positive n
// returns all of them.
func (s *Store) Recent(n int) []Entry {
	newest := make([]*Entry, len(s.entries))
	for i, e := range s.entries {
		newest[len(s.entries)-1-i] = e
	}
	it := sequence.From(newest).
		Filter(func(e *Entry) bool { return !e.Repressed }).
		Take(n)
	return sequence.Map(it, (*Entry).clone).Collect()
}

// Associated returns the visible memories linked to id.
func (s *Store) Associated(id ID) []Entry {
	e, ok := s.visible(id)
	if !ok {
		return []Entry{}
	}
	return s.query(func(o *Entry) bool { return o.associated(e.ID) })
}

func (s *Store) query(pred func(*Entry) bool) []Entry {
	it := sequence.From(s.entries).Filter(func(e *Entry) bool { return !e.Repressed && pred(e) })
	return sequence.Map(it, (*Entry).clone).Collect()
}
