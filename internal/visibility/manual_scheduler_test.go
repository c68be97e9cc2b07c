package visibility

import (
	"sync"
	"time"
)

// ManualScheduler runs callbacks only when Tick is called.
type ManualScheduler struct {
	mu      sync.Mutex
	nextID  int
	entries map[int]func() bool
	periods []time.Duration
}

// NewManualScheduler creates an idle manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{entries: make(map[int]func() bool)}
}

// Every implements Scheduler.
func (s *ManualScheduler) Every(period time.Duration, fn func() bool) Cancel {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.entries[id] = fn
	s.periods = append(s.periods, period)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.entries, id)
	}
}

// Tick runs every active callback once. Callbacks returning false are removed.
// Returns the number of callbacks still active.
func (s *ManualScheduler) Tick() int {
	s.mu.Lock()
	ids := make([]int, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.mu.Lock()
		fn, ok := s.entries[id]
		s.mu.Unlock()
		if !ok {
			continue
		}
		if !fn() {
			s.mu.Lock()
			delete(s.entries, id)
			s.mu.Unlock()
		}
	}
	return s.Active()
}

// RunUntilIdle ticks until no callbacks remain or limit ticks have run.
// Returns the number of ticks taken.
func (s *ManualScheduler) RunUntilIdle(limit int) int {
	n := 0
	for s.Active() > 0 && n < limit {
		s.Tick()
		n++
	}
	return n
}

// Active returns the number of scheduled callbacks.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Periods returns the period of every Every call so far.
func (s *ManualScheduler) Periods() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.periods...)
}
