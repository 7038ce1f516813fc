package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/layout"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Store.RejectCycles {
		t.Error("RejectCycles should default to true")
	}
	want := filepath.Join(dir, "possible", "graphs.json")
	if cfg.Storage.Path != want {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, want)
	}
	if cfg.Layout.RankDir != layout.RankDirLR {
		t.Errorf("Layout.RankDir = %q, want %q", cfg.Layout.RankDir, layout.RankDirLR)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !perrors.Is(err, perrors.ErrCodeInvalidPath) {
		t.Errorf("Load() error = %v, want %s", err, perrors.ErrCodeInvalidPath)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := writeFile(t, `
log_level = "debug"

[store]
reject_cycles = false
save_debounce = "250ms"

[storage]
backend = "redis"

[storage.redis]
addr = "cache:6379"
db = 2

[layout]
engine = "dot"
rank_dir = "TB"

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Store.RejectCycles {
		t.Error("RejectCycles = true, want false")
	}
	if cfg.Store.SaveDebounce.Duration != 250*time.Millisecond {
		t.Errorf("SaveDebounce = %v, want 250ms", cfg.Store.SaveDebounce)
	}
	if cfg.Layout.Engine != layout.EngineDot || cfg.Layout.RankDir != layout.RankDirTB {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	// Unset layout keys keep their defaults.
	if cfg.Layout.RankSep != layout.DefaultRankSep {
		t.Errorf("Layout.RankSep = %v, want %v", cfg.Layout.RankSep, layout.DefaultRankSep)
	}

	opts := cfg.StorageOptions()
	if opts.Backend != "redis" || opts.Redis.Addr != "cache:6379" || opts.Redis.DB != 2 {
		t.Errorf("StorageOptions() = %+v", opts)
	}
	if opts.Redis.Key == "" {
		t.Error("Redis.Key lost its default")
	}

	sc := cfg.StoreConfig(nil)
	if sc.RejectCycles || sc.SaveDebounce != 250*time.Millisecond {
		t.Errorf("StoreConfig() = %+v", sc)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "log_level = ", ""},
		{"unknown key", "colour = \"red\"", "colour"},
		{"bad level", `log_level = "loud"`, "log_level must be one of"},
		{"bad backend", "[storage]\nbackend = \"s3\"", "storage.backend must be one of"},
		{"bad rank dir", "[layout]\nrank_dir = \"XY\"", "rankDir must be one of"},
		{"negative sep", "[layout]\nrank_sep = -1.0", "rankSep must be at least 0"},
		{"empty addr", "[server]\naddr = \"\"", "server.addr is required"},
		{"traversal", "[storage]\npath = \"../graphs.json\"", "traversal"},
		{"bad duration", "[store]\nsave_debounce = \"soon\"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "graphs.json")
	cfg.Store.SaveDebounce = Duration{-1}

	if err := Write(path, cfg); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Storage.Path != cfg.Storage.Path {
		t.Errorf("Storage.Path = %q, want %q", got.Storage.Path, cfg.Storage.Path)
	}
	if got.Store.SaveDebounce != cfg.Store.SaveDebounce {
		t.Errorf("SaveDebounce = %v, want %v", got.Store.SaveDebounce, cfg.Store.SaveDebounce)
	}
	if got.Server.Addr != cfg.Server.Addr || got.Server.ReadTimeout != cfg.Server.ReadTimeout {
		t.Errorf("Server = %+v, want %+v", got.Server, cfg.Server)
	}
}

func TestDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")

	if got, _ := Path(); got != filepath.Join("/cfg", "possible", "config.toml") {
		t.Errorf("Path() = %q", got)
	}
	if got, _ := DataDir(); got != filepath.Join("/data", "possible") {
		t.Errorf("DataDir() = %q", got)
	}
}
