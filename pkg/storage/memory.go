package storage

import (
	"context"
	"slices"
	"sync"
)

// Memory keeps the document in process memory. It is used by tests and by
// the API server when no persistent backend is configured.
type Memory struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns a copy of the last saved document.
func (m *Memory) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data), nil
}

// Save stores a copy of data.
func (m *Memory) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = slices.Clone(data)
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Name returns "memory".
func (m *Memory) Name() string { return "memory" }

// Close does nothing.
func (m *Memory) Close() error { return nil }

// Ensure Memory implements Backend.
var _ Backend = (*Memory)(nil)
