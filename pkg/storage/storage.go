// Package storage persists the serialized graph document.
//
// A [Backend] stores exactly one opaque document. The store package encodes
// all graphs into that document and writes it wholesale, so backends never
// see individual graphs or nodes.
//
// Four implementations are provided:
//   - [File]: a JSON file on disk, replaced atomically on save
//   - [Redis]: a single Redis key
//   - [Mongo]: a single MongoDB document
//   - [Null]: discards writes and always loads an empty document
//
// A backend that has never been written returns an empty slice and no
// error from Load. Callers treat empty input as "no graphs yet".
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Backend loads and saves the serialized graph document.
type Backend interface {
	// Load returns the stored document, or an empty slice if nothing has
	// been saved yet.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored document.
	Save(ctx context.Context, data []byte) error

	// Name identifies the backend in logs and hooks.
	Name() string

	// Close releases connections held by the backend.
	Close() error
}

// Sentinel errors for storage operations.
var (
	// ErrUnknownBackend is returned by [Open] for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrClosed is returned when a closed backend is used.
	ErrClosed = errors.New("storage backend closed")
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
