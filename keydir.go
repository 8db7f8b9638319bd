package cask

// keydir is the in-memory index of the database: it maps a live key to the
// location of its latest record. It does not own the datafiles it points
// into and does not perform any I/O.

import "sync"

// A KeydirEntry locates one key's latest record.
type KeydirEntry struct {
	FileID    uint64
	Offset    uint64
	ValueSize uint32
	Timestamp uint64
}

// newer reports whether candidate should replace current per I3: greatest
// timestamp wins; ties break on the greater (file_id, offset).
func (current KeydirEntry) newer(candidate KeydirEntry) bool {
	if candidate.Timestamp != current.Timestamp {
		return candidate.Timestamp > current.Timestamp
	}
	if candidate.FileID != current.FileID {
		return candidate.FileID > current.FileID
	}
	return candidate.Offset > current.Offset
}

// keydir is a hash map keyed on the raw key bytes. A hash map is explicitly
// acceptable per the design (no ordering contract is exposed over the
// public API); no ordered-map library appears anywhere in the retrieved
// corpus, so this component stays on the standard library (see
// DESIGN.md).
type keydir struct {
	mu      sync.RWMutex
	entries map[string]KeydirEntry
}

func newKeydir() *keydir {
	return &keydir{entries: make(map[string]KeydirEntry)}
}

// insert unconditionally overwrites. The caller is responsible for only
// inserting entries whose timestamp is >= any existing entry's.
func (k *keydir) insert(key []byte, entry KeydirEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	// keydir owns its own copy of the key
	k.entries[string(key)] = entry
}

// insertIfNewer applies entry only if it is newer than any existing entry
// for key (per KeydirEntry.newer); used during hint/datafile replay where
// records may be seen out of timestamp order across files. Reports whether
// the entry was applied.
func (k *keydir) insertIfNewer(key []byte, entry KeydirEntry) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	existing, ok := k.entries[string(key)]
	if ok && !existing.newer(entry) {
		return false
	}
	k.entries[string(key)] = entry
	return true
}

// lookup returns the entry for key, or ErrNotFound if absent.
func (k *keydir) lookup(key []byte) (KeydirEntry, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	entry, ok := k.entries[string(key)]
	if !ok {
		return KeydirEntry{}, ErrNotFound
	}
	return entry, nil
}

// remove deletes the in-memory mapping for key. It never touches disk;
// durable deletion (tombstones) is out of scope for this revision. Reserved
// for future tombstone support, per the spec's keydir contract.
func (k *keydir) remove(key []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.entries[string(key)]; !ok {
		return ErrNotFound
	}
	delete(k.entries, string(key))
	return nil
}

func (k *keydir) len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.entries)
}
