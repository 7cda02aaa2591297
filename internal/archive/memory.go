package archive

import (
	"slices"
	"sync"
)

// MemoryStore implements Store using in-memory structures (not persistent)
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	byID    map[string]int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]int),
	}
}

// Put stores a copy of rec, replacing any record with the same id
func (m *MemoryStore) Put(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.Texts = slices.Clone(rec.Texts)
	if i, exists := m.byID[rec.ID]; exists {
		m.records[i] = rec
		return nil
	}

	m.byID[rec.ID] = len(m.records)
	m.records = append(m.records, rec)

	return nil
}

// Get returns a copy of the record with the given id
func (m *MemoryStore) Get(id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, exists := m.byID[id]
	if !exists {
		return Record{}, ErrNotFound
	}

	rec := m.records[i]
	rec.Texts = slices.Clone(rec.Texts)

	return rec, nil
}

// List returns up to limit records, newest first
func (m *MemoryStore) List(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0, min(limit, len(m.records)))
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := m.records[i]
		rec.Texts = slices.Clone(rec.Texts)
		out = append(out, rec)
	}

	return out, nil
}

// Close is a no-op for the memory store
func (m *MemoryStore) Close() error {
	return nil
}
