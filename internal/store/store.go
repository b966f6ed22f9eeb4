package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pumpsight/pumpsight/internal/simulation"
)

// Scenario is one completed simulation run kept under a user-chosen name.
// Exactly one of Scheduled or Condition is set, matching Model.
type Scenario struct {
	Name  string
	Model string

	// Threshold is the flow-rate line the run was evaluated against: the
	// failure threshold for scheduled runs, the maintenance threshold for
	// condition-based runs.
	Threshold float64

	Years       []simulation.YearRecord
	FailureYear int
	ReplaceYear int
	Impacts     []simulation.FactorImpact

	Scheduled *simulation.Parameters
	Condition *simulation.ConditionParameters
}

// Entry is a stored scenario with the time it was last computed.
type Entry struct {
	Scenario   *Scenario
	ComputedAt time.Time
}

// Store is an in-memory, thread-safe store of scenarios keyed by name.
// Entries older than the TTL are evicted by a background loop.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Entry
	ttl  time.Duration

	// now is replaceable for tests.
	now func() time.Time
}

// New creates a Store with the given entry TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		data: make(map[string]*Entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put inserts or replaces the scenario under its name.
func (s *Store) Put(sc *Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sc.Name] = &Entry{Scenario: sc, ComputedAt: s.now()}
}

// Get returns the entry for a scenario name, or nil if absent.
func (s *Store) Get(name string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[name]
}

// List returns all entries still within the TTL, sorted by scenario name.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.now().Add(-s.ttl)
	out := make([]*Entry, 0, len(s.data))
	for _, e := range s.data {
		if e.ComputedAt.After(cutoff) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Scenario.Name < out[j].Scenario.Name
	})
	return out
}

// Count returns the number of stored entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Delete removes the named scenario and reports whether it was present.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[name]; !ok {
		return false
	}
	delete(s.data, name)
	return true
}

// Evict removes entries older than the TTL and returns how many were removed.
func (s *Store) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for name, e := range s.data {
		if !e.ComputedAt.After(cutoff) {
			delete(s.data, name)
			removed++
		}
	}
	return removed
}

// Run starts the eviction loop and blocks until the context is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				slog.Debug("evicted stale scenarios", "count", n)
			}
		}
	}
}
