package store

import (
	"context"
	"time"

	perrors "github.com/matzehuels/possible/pkg/errors"
	pio "github.com/matzehuels/possible/pkg/io"
	"github.com/matzehuels/possible/pkg/observability"
	"github.com/matzehuels/possible/pkg/storage"
)

// Load replaces every graph in the store with the backend's document. An
// empty document yields an empty store. On failure the store is left empty
// and the error carries the IO_ERROR code.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.graphs)
	if s.backend == nil {
		return nil
	}

	start := time.Now()
	name := s.backend.Name()
	data, err := s.backend.Load(ctx)
	if err != nil {
		observability.Store().OnLoad(ctx, name, 0, time.Since(start), err)
		return perrors.Wrap(perrors.ErrCodeIO, err, "load graphs from %s", name)
	}
	doc, err := pio.Decode(data)
	if err != nil {
		observability.Store().OnLoad(ctx, name, 0, time.Since(start), err)
		return perrors.Wrap(perrors.ErrCodeIO, err, "decode graphs from %s", name)
	}

	for id, g := range doc {
		if err := g.Validate(); err != nil {
			s.logger.Warn("loaded graph is inconsistent", "graph", id, "error", err)
		}
		g.BuildRoots()
		s.graphs[id] = g
	}
	s.dirty = false
	s.saveMu.Lock()
	s.savedHash = storage.Hash(data)
	s.saveMu.Unlock()

	observability.Store().OnLoad(ctx, name, len(doc), time.Since(start), nil)
	s.logger.Debug("graphs loaded", "backend", name, "graphs", len(doc))
	return nil
}

// Save writes every graph to the backend immediately and cancels any
// pending debounced save. Writes of an unchanged document are skipped.
// A failed save leaves the store dirty so the next persisted edit or
// [Store.Flush] retries it.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.backend == nil {
		s.mu.Unlock()
		return nil
	}
	data, gen, err := s.encodeLocked()
	s.dirty = false
	s.mu.Unlock()
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "encode graphs")
	}

	if err := s.write(ctx, data, gen); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}
	return nil
}

// Flush saves pending edits, if any.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	dirty := s.dirty
	s.mu.Unlock()
	if !dirty {
		return nil
	}
	return s.Save(ctx)
}

// Close flushes pending edits and closes the backend.
func (s *Store) Close(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// Dirty reports whether edits are waiting to be saved.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Document returns a deep copy of every graph keyed by ID.
func (s *Store) Document() pio.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := make(pio.Document, len(s.graphs))
	for id, g := range s.graphs {
		doc[id] = g.Clone()
	}
	return doc
}

// scheduleSaveLocked marks the store dirty and (re)starts the debounce
// timer. With a negative debounce the save runs before returning.
func (s *Store) scheduleSaveLocked() {
	if s.backend == nil {
		return
	}
	s.dirty = true
	if s.debounce < 0 {
		data, gen, err := s.encodeLocked()
		if err != nil {
			s.logger.Error("encode graphs", "error", err)
			return
		}
		if err := s.write(context.Background(), data, gen); err == nil {
			s.dirty = false
		}
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.autosave)
}

func (s *Store) autosave() {
	s.mu.Lock()
	s.timer = nil
	s.mu.Unlock()
	if err := s.Flush(context.Background()); err != nil {
		s.logger.Error("autosave failed", "error", err)
	}
}

// encodeLocked serializes the live graphs and returns the generation the
// snapshot belongs to. Callers hold s.mu.
func (s *Store) encodeLocked() ([]byte, uint64, error) {
	s.gen++
	data, err := pio.Encode(pio.Document(s.graphs))
	return data, s.gen, err
}

// write stores data unless a newer snapshot has already been written or the
// content is unchanged.
func (s *Store) write(ctx context.Context, data []byte, gen uint64) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if gen < s.savedGen {
		return nil
	}
	hash := storage.Hash(data)
	if hash == s.savedHash {
		s.savedGen = gen
		return nil
	}

	start := time.Now()
	name := s.backend.Name()
	err := s.backend.Save(ctx, data)
	observability.Store().OnSave(ctx, name, len(data), time.Since(start), err)
	if err != nil {
		s.logger.Error("save failed", "backend", name, "error", err)
		return perrors.Wrap(perrors.ErrCodeIO, err, "save graphs to %s", name)
	}
	s.savedHash = hash
	s.savedGen = gen
	s.logger.Debug("graphs saved", "backend", name, "bytes", len(data))
	return nil
}
