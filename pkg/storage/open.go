package storage

import (
	"context"
	"fmt"
	"path/filepath"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend string // file, redis, mongo, memory or null
	Path    string // file backend: document path, or a directory for graphs.json
	Redis   RedisOptions
	Mongo   MongoOptions
}

// Open constructs the backend named by opts.Backend. An empty name selects
// the file backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case "", "file":
		path := opts.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, DefaultFileName)
		}
		return NewFile(path)
	case "redis":
		return NewRedis(ctx, opts.Redis)
	case "mongo":
		return NewMongo(ctx, opts.Mongo)
	case "memory":
		return NewMemory(), nil
	case "null":
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
