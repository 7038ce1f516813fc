package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	perrors "github.com/matzehuels/possible/pkg/errors"
)

// FileStore is a file-based selection store for CLI applications.
// Selections are stored as JSON files in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based selection store.
// If baseDir is empty, defaults to $XDG_CONFIG_HOME/possible/sessions/.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func defaultDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "possible", "sessions"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "possible", "sessions"), nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) Get(ctx context.Context, name string) (*Selection, error) {
	if err := perrors.ValidateID(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var sel Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &sel, nil
}

func (s *FileStore) Set(ctx context.Context, name string, sel *Selection) error {
	if err := perrors.ValidateID(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sel, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.path(name), data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := perrors.ValidateID(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Path returns the base directory for session files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)

// =============================================================================
// Memory store
// =============================================================================

// MemoryStore keeps selections in memory. The HTTP API uses one per server.
type MemoryStore struct {
	mu   sync.RWMutex
	sels map[string]Selection
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sels: make(map[string]Selection)}
}

func (m *MemoryStore) Get(ctx context.Context, name string) (*Selection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sel, ok := m.sels[name]
	if !ok {
		return nil, nil
	}
	return &sel, nil
}

func (m *MemoryStore) Set(ctx context.Context, name string, sel *Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sels[name] = *sel
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sels, name)
	return nil
}

var _ Store = (*MemoryStore)(nil)
