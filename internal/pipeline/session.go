package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/couchcryptid/hechos-map-service/internal/domain"
	"github.com/couchcryptid/hechos-map-service/internal/observability"
	"golang.org/x/text/language"
)

// Session owns the loaded collection, its category list and the last
// applied filters. It is safe for concurrent use. Readers share the same
// backing slice, which is never modified after Replace.
type Session struct {
	mu       sync.RWMutex
	snapshot domain.Snapshot
	filters  domain.Filters
	loaded   bool

	lang    language.Tag
	cache   *resultCache
	metrics *observability.Metrics
}

// resultCacheEntries bounds the number of cached filter results.
const resultCacheEntries = 64

// NewSession creates an empty session. Categories are sorted for lang.
func NewSession(lang language.Tag, metrics *observability.Metrics) *Session {
	return &Session{
		snapshot: domain.Snapshot{
			Events:     []domain.Event{},
			Categories: []string{},
		},
		lang:    lang,
		cache:   newResultCache(resultCacheEntries),
		metrics: metrics,
	}
}

// Replace swaps in a new collection wholesale and returns the resulting
// snapshot. Filters are kept. A nil events slice installs an empty collection.
func (s *Session) Replace(loadID string, loadedAt time.Time, events []domain.Event) domain.Snapshot {
	if events == nil {
		events = []domain.Event{}
	}
	snap := domain.Snapshot{
		LoadID:     loadID,
		LoadedAt:   loadedAt,
		Events:     events,
		Categories: domain.Categories(events, s.lang),
	}

	s.mu.Lock()
	s.snapshot = snap
	s.loaded = true
	s.mu.Unlock()
	s.cache.purge()

	s.metrics.EventsLoaded.Set(float64(len(events)))
	return snap
}

// Snapshot returns the current collection and its provenance.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Events returns the whole current collection.
func (s *Session) Events() []domain.Event {
	return s.Snapshot().Events
}

// Categories returns the sorted category list of the current collection.
func (s *Session) Categories() []string {
	return s.Snapshot().Categories
}

// Filters returns the last applied filters.
func (s *Session) Filters() domain.Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// Apply records f as the session's filters and returns the matching events.
// The result must not be modified.
func (s *Session) Apply(f domain.Filters) []domain.Event {
	s.mu.Lock()
	s.filters = f
	snap := s.snapshot
	s.mu.Unlock()

	return s.evaluate(snap, f)
}

// Current returns the events matching the session's filters.
func (s *Session) Current() []domain.Event {
	s.mu.RLock()
	snap, f := s.snapshot, s.filters
	s.mu.RUnlock()

	return s.evaluate(snap, f)
}

// Clear resets every filter and returns the whole collection.
func (s *Session) Clear() []domain.Event {
	return s.Apply(domain.Filters{})
}

// Lookup returns the first event with the given id.
func (s *Session) Lookup(id string) (domain.Event, bool) {
	for _, e := range s.Events() {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Event{}, false
}

// CheckReadiness returns nil once the first load has completed, whatever its
// outcome.
func (s *Session) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return errors.New("initial load has not completed yet")
	}
	return nil
}

// evaluate filters the snapshot's events, reusing a cached result for the
// same load and filters. The returned slice is shared and read-only.
func (s *Session) evaluate(snap domain.Snapshot, f domain.Filters) []domain.Event {
	key := resultKey{loadID: snap.LoadID, filters: f}
	out, ok := s.cache.get(key)
	if ok {
		s.metrics.FilterCache.WithLabelValues("hit").Inc()
	} else {
		s.metrics.FilterCache.WithLabelValues("miss").Inc()
		out = domain.Apply(snap.Events, f)
		s.cache.put(key, out)
	}
	s.metrics.FilterApplications.Inc()
	s.metrics.FilterResultSize.Observe(float64(len(out)))
	return out
}
