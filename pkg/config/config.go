package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/layout"
	"github.com/matzehuels/possible/pkg/storage"
	"github.com/matzehuels/possible/pkg/store"
)

const (
	appName  = "possible"
	fileName = "config.toml"
)

// =============================================================================
// Types
// =============================================================================

// Config is the complete application configuration.
type Config struct {
	LogLevel string         `toml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Store    StoreConfig    `toml:"store" json:"store"`
	Storage  StorageConfig  `toml:"storage" json:"storage"`
	Layout   layout.Options `toml:"layout" json:"layout"`
	Server   ServerConfig   `toml:"server" json:"server"`
}

// StoreConfig configures the in-memory graph store.
type StoreConfig struct {
	RejectCycles bool `toml:"reject_cycles" json:"reject_cycles"`

	// SaveDebounce is the autosave window. Negative saves synchronously.
	SaveDebounce Duration `toml:"save_debounce" json:"save_debounce"`
}

// StorageConfig selects where graphs are persisted.
type StorageConfig struct {
	Backend string      `toml:"backend" json:"backend" validate:"omitempty,oneof=file redis mongo memory null"`
	Path    string      `toml:"path" json:"path"`
	Redis   RedisConfig `toml:"redis" json:"redis"`
	Mongo   MongoConfig `toml:"mongo" json:"mongo"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr" json:"addr"`
	Password string `toml:"password" json:"password"`
	DB       int    `toml:"db" json:"db" validate:"gte=0"`
	Key      string `toml:"key" json:"key"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri" json:"uri"`
	Database   string `toml:"database" json:"database"`
	Collection string `toml:"collection" json:"collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr" json:"addr" validate:"required"`
	ReadTimeout    Duration `toml:"read_timeout" json:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout" json:"write_timeout"`
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins"`
}

// Duration is a time.Duration written as a string such as "1s" or "250ms".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// =============================================================================
// Defaults
// =============================================================================

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "info",
		Store: StoreConfig{
			RejectCycles: true,
			SaveDebounce: Duration{store.DefaultSaveDebounce},
		},
		Storage: StorageConfig{
			Backend: "file",
			Redis:   RedisConfig{Addr: "localhost:6379", Key: storage.DefaultRedisKey},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   storage.DefaultMongoDatabase,
				Collection: storage.DefaultMongoCollection,
			},
		},
		Layout: layout.DefaultOptions(),
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
		},
	}
}

// =============================================================================
// Loading
// =============================================================================

// Load reads the file at path over [Default] and validates the result.
// An empty path means [Path]; a missing default file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, cfg.Validate()
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		cfg = Default()
	case errors.Is(err, fs.ErrNotExist):
		return cfg, perrors.New(perrors.ErrCodeInvalidPath, "config file %s does not exist", path)
	case err != nil:
		return cfg, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse %s", path)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, perrors.New(perrors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks c and fills derived values.
func (c *Config) Validate() error {
	if err := perrors.ValidateStruct(perrors.ErrCodeInvalidConfig, c); err != nil {
		return err
	}
	if err := c.Layout.ValidateAndSetDefaults(); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "layout")
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.Backend == "file" {
		if c.Storage.Path == "" {
			dir, err := DataDir()
			if err != nil {
				return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "resolve data dir")
			}
			c.Storage.Path = filepath.Join(dir, storage.DefaultFileName)
		}
		c.Storage.Path = expandHome(c.Storage.Path)
		if err := perrors.ValidatePath(c.Storage.Path); err != nil {
			return err
		}
	}
	return nil
}

// StorageOptions converts the storage section for [storage.Open].
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend: c.Storage.Backend,
		Path:    c.Storage.Path,
		Redis: storage.RedisOptions{
			Addr:     c.Storage.Redis.Addr,
			Password: c.Storage.Redis.Password,
			DB:       c.Storage.Redis.DB,
			Key:      c.Storage.Redis.Key,
		},
		Mongo: storage.MongoOptions{
			URI:        c.Storage.Mongo.URI,
			Database:   c.Storage.Mongo.Database,
			Collection: c.Storage.Mongo.Collection,
		},
	}
}

// StoreConfig converts the store section for [store.New]. The backend and
// logger are supplied by the caller.
func (c Config) StoreConfig(backend storage.Backend) store.Config {
	return store.Config{
		RejectCycles: c.Store.RejectCycles,
		SaveDebounce: c.Store.SaveDebounce.Duration,
		Backend:      backend,
	}
}

// Write encodes c as TOML to path, creating parent directories.
func Write(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perrors.Wrap(perrors.ErrCodeIO, err, "create config dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeIO, err, "create %s", path)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return perrors.Wrap(perrors.ErrCodeIO, err, "encode config")
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// Dir returns the config directory ($XDG_CONFIG_HOME/possible).
func Dir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the data directory ($XDG_DATA_HOME/possible).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, fallback, appName), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
