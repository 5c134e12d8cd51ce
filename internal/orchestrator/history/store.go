// Package history keeps the loop's recent events in memory for the monitor.
package history

import (
	"sync"
	"time"
)

// Kind classifies an event.
type Kind string

const (
	KindState     Kind = "state"
	KindAction    Kind = "action"
	KindAttribute Kind = "attribute"
	KindMatch     Kind = "match"
	KindBackoff   Kind = "backoff"
	KindFault     Kind = "fault"
	KindSuccess   Kind = "success"
)

// Event is one thing that happened during an iteration.
type Event struct {
	Time      time.Time `json:"time"`
	Iteration int       `json:"iteration"`
	Kind      Kind      `json:"kind"`
	State     string    `json:"state,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Store is a bounded ring of events plus a lossy fan-out channel.
type Store struct {
	mu       sync.RWMutex
	entries  []Event
	maxSize  int
	counts   map[Kind]int
	eventsCh chan Event
}

func NewStore(maxEntries, eventBuffer int) *Store {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Store{
		entries:  make([]Event, 0, maxEntries),
		maxSize:  maxEntries,
		counts:   make(map[Kind]int),
		eventsCh: make(chan Event, eventBuffer),
	}
}

// Add records e, stamping the time when unset, and emits it.
func (s *Store) Add(e Event) Event {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	s.mu.Lock()
	s.entries = append(s.entries, e)
	if len(s.entries) > s.maxSize {
		s.entries = s.entries[len(s.entries)-s.maxSize:]
	}
	s.counts[e.Kind]++
	s.mu.Unlock()

	s.Emit(e)
	return e
}

// Recent returns up to n newest events, oldest first. n <= 0 returns all.
func (s *Store) Recent(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if n > 0 && n < len(s.entries) {
		start = len(s.entries) - n
	}
	out := make([]Event, len(s.entries)-start)
	copy(out, s.entries[start:])
	return out
}

// Since returns events recorded at or after t.
func (s *Store) Since(t time.Time) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.entries {
		if !e.Time.Before(t) {
			out = append(out, e)
		}
	}
	return out
}

// Counts returns how many events of each kind were ever added, including
// those since evicted from the ring.
func (s *Store) Counts() map[Kind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Kind]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Events returns the channel for live events.
func (s *Store) Events() <-chan Event {
	return s.eventsCh
}

// Emit sends an event (non-blocking). Events are dropped while nobody reads.
func (s *Store) Emit(e Event) {
	select {
	case s.eventsCh <- e:
	default:
	}
}
