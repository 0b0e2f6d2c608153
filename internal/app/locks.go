package app

import "sync"

// lockTable serializes operations per access code. Entries are refcounted so
// the table stays bounded by the number of in-flight requests, not by the
// number of sessions ever seen.
type lockTable struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for code and returns its release func.
func (t *lockTable) lock(code string) func() {
	t.mu.Lock()
	if t.entries == nil {
		t.entries = make(map[string]*lockEntry)
	}
	entry, ok := t.entries[code]
	if !ok {
		entry = &lockEntry{}
		t.entries[code] = entry
	}
	entry.refs++
	t.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		t.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(t.entries, code)
		}
		t.mu.Unlock()
	}
}
