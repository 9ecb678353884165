package server

import (
	"strings"
	"sync"
)

// keySet is the set of accepted API keys. Replace swaps the whole set so a
// request never sees a half-updated list.
type keySet struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

func newKeySet(keys []string) *keySet {
	ks := &keySet{}
	ks.Replace(keys)
	return ks
}

// Replace installs keys as the accepted set, dropping blanks
func (ks *keySet) Replace(keys []string) {
	next := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			next[key] = struct{}{}
		}
	}
	ks.mu.Lock()
	ks.keys = next
	ks.mu.Unlock()
}

func (ks *keySet) Contains(key string) bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	_, ok := ks.keys[key]
	return ok
}

func (ks *keySet) Len() int {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return len(ks.keys)
}
