package storage

import "context"

// Null is a backend that never stores anything.
// Useful for testing or for throwaway sessions.
type Null struct{}

// NewNull creates a null backend.
func NewNull() *Null {
	return &Null{}
}

// Load always returns an empty document.
func (Null) Load(context.Context) ([]byte, error) { return nil, nil }

// Save does nothing.
func (Null) Save(context.Context, []byte) error { return nil }

// Name returns "null".
func (Null) Name() string { return "null" }

// Close does nothing.
func (Null) Close() error { return nil }

// Ensure Null implements Backend.
var _ Backend = (*Null)(nil)
