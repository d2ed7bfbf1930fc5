package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store. Readers are copied in and out so callers
// never share state with the store.
type Memory struct {
	mu      sync.RWMutex
	readers map[string]map[string]Reader
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{readers: make(map[string]map[string]Reader)}
}

// ListReaders returns the merchant's readers, oldest first
func (m *Memory) ListReaders(_ context.Context, merchantCode string) ([]Reader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Reader, 0, len(m.readers[merchantCode]))
	for _, r := range m.readers[merchantCode] {
		out = append(out, copyReader(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CreateReader stores a new reader
func (m *Memory) CreateReader(_ context.Context, reader *Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byID, ok := m.readers[reader.MerchantCode]
	if !ok {
		byID = make(map[string]Reader)
		m.readers[reader.MerchantCode] = byID
	}
	if _, exists := byID[reader.ID]; exists {
		return ErrReaderExists
	}
	byID[reader.ID] = copyReader(*reader)
	return nil
}

// GetReader returns a reader by ID
func (m *Memory) GetReader(_ context.Context, merchantCode, id string) (*Reader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.readers[merchantCode][id]
	if !ok {
		return nil, ErrReaderNotFound
	}
	out := copyReader(r)
	return &out, nil
}

// UpdateReader replaces a stored reader
func (m *Memory) UpdateReader(_ context.Context, reader *Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.readers[reader.MerchantCode][reader.ID]; !ok {
		return ErrReaderNotFound
	}
	m.readers[reader.MerchantCode][reader.ID] = copyReader(*reader)
	return nil
}

// DeleteReader removes a reader
func (m *Memory) DeleteReader(_ context.Context, merchantCode, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.readers[merchantCode][id]; !ok {
		return ErrReaderNotFound
	}
	delete(m.readers[merchantCode], id)
	return nil
}

// Close is a no-op
func (m *Memory) Close() error { return nil }

func copyReader(r Reader) Reader {
	if r.Meta != nil {
		meta := make(map[string]any, len(r.Meta))
		for k, v := range r.Meta {
			meta[k] = v
		}
		r.Meta = meta
	}
	return r
}
