package vecstore

// Snapshot is an immutable, ordered view of the store contents.
// Entries keep insertion order. A Snapshot is never modified after it is
// published, so it may be shared between goroutines.
type Snapshot struct {
	entries []Entry
	dim     int
}

func emptySnapshot() *Snapshot {
	return &Snapshot{}
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Dimension returns the embedding length shared by all entries, or 0 when empty.
func (s *Snapshot) Dimension() int {
	return s.dim
}

// Entries returns a deep copy of all entries in insertion order.
func (s *Snapshot) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

// Entry returns a copy of the entry with the given id.
func (s *Snapshot) Entry(id string) (Entry, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e.clone(), true
		}
	}
	return Entry{}, false
}

// Range calls fn for each entry in insertion order until fn returns false.
// fn must not modify e.Embedding; it aliases the snapshot.
func (s *Snapshot) Range(fn func(i int, e Entry) bool) {
	for i, e := range s.entries {
		if !fn(i, e) {
			return
		}
	}
}

// Texts returns the stored texts in insertion order.
func (s *Snapshot) Texts() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Text
	}
	return out
}

// Metadatas returns the stored metadata in insertion order.
func (s *Snapshot) Metadatas() []Metadata {
	out := make([]Metadata, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Metadata
	}
	return out
}

// Embeddings returns copies of the stored embeddings in insertion order.
func (s *Snapshot) Embeddings() [][]float64 {
	out := make([][]float64, len(s.entries))
	for i, e := range s.entries {
		out[i] = append([]float64(nil), e.Embedding...)
	}
	return out
}

// IDs returns the entry ids in insertion order.
func (s *Snapshot) IDs() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.ID
	}
	return out
}

// with returns a new snapshot with e appended. The receiver is left untouched.
func (s *Snapshot) with(e Entry) *Snapshot {
	entries := make([]Entry, len(s.entries), len(s.entries)+1)
	copy(entries, s.entries)
	return &Snapshot{
		entries: append(entries, e),
		dim:     len(e.Embedding),
	}
}
