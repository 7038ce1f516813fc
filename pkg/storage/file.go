package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the document name used inside a data directory.
const DefaultFileName = "graphs.json"

// File stores the document as a single file. Saves write to a temporary
// file in the same directory and rename it over the target, so a crash
// mid-save leaves the previous document intact.
type File struct {
	path string
}

// NewFile creates a file backend writing to path. The parent directory is
// created if it doesn't exist.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &File{path: path}, nil
}

// Path returns the file the backend reads and writes.
func (f *File) Path() string { return f.path }

// Load reads the document. A missing file loads as empty.
func (f *File) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return data, nil
}

// Save atomically replaces the document.
func (f *File) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".graphs-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// Name returns "file".
func (f *File) Name() string { return "file" }

// Close does nothing for file storage.
func (f *File) Close() error { return nil }

// Ensure File implements Backend.
var _ Backend = (*File)(nil)
