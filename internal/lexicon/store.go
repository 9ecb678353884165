package lexicon

import (
	"sync"
	"time"
)

// Store holds the active lexicon. Readers take a snapshot with Current and
// keep using it for the whole analysis, so a concurrent Swap never changes
// tables halfway through a request.
type Store struct {
	mu       sync.RWMutex
	current  *Lexicon
	source   string
	loadedAt time.Time
	reloads  int
}

// NewStore creates a store seeded with lex. A nil lex seeds the embedded default.
func NewStore(lex *Lexicon, source string) *Store {
	if lex == nil {
		lex = Default()
		source = "embedded"
	}
	return &Store{current: lex, source: source, loadedAt: time.Now()}
}

// Current returns the active lexicon
func (s *Store) Current() *Lexicon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Swap replaces the active lexicon
func (s *Store) Swap(lex *Lexicon, source string) {
	if lex == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = lex
	s.source = source
	s.loadedAt = time.Now()
	s.reloads++
}

// Status returns the store state for health reporting
func (s *Store) Status() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"source":    s.source,
		"version":   s.current.Version,
		"loaded_at": s.loadedAt.UTC().Format(time.RFC3339),
		"reloads":   s.reloads,
	}
}
