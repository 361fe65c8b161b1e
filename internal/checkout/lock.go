package checkout

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes mutations per checkout id so concurrent writes to the
// same session apply one at a time while distinct sessions proceed in
// parallel.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[uuid.UUID]*lockEntry)}
}

// Lock blocks until the caller holds the mutex for id and returns the
// matching release func. Entries are dropped once the last holder releases.
func (k *keyedMutex) Lock(id uuid.UUID) func() {
	k.mu.Lock()
	entry, ok := k.entries[id]
	if !ok {
		entry = &lockEntry{}
		k.entries[id] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, id)
		}
		k.mu.Unlock()
	}
}
