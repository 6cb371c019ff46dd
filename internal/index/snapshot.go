package index

// Snapshot is an immutable ordered set of entries. Once constructed it is
// never mutated, so search workers can read it concurrently without locks.
type Snapshot struct {
	entries []Entry
}

// NewSnapshot builds a snapshot from entries, preserving order. Hash
// collisions on entry IDs are resolved by reassigning the colliding entry
// a sequence-derived ID, keeping IDs unique within the snapshot.
func NewSnapshot(entries []Entry) *Snapshot {
	seen := make(map[uint64]struct{}, len(entries))
	owned := make([]Entry, len(entries))
	copy(owned, entries)
	for i := range owned {
		id := owned[i].ID
		for {
			if _, dup := seen[id]; !dup {
				break
			}
			id++
		}
		owned[i].ID = id
		seen[id] = struct{}{}
	}
	return &Snapshot{entries: owned}
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns the snapshot's entries. Callers must not mutate the
// returned slice.
func (s *Snapshot) Entries() []Entry {
	if s == nil {
		return nil
	}
	return s.entries
}
