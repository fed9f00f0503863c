package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/coalsim/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Simulation.N != 10 {
		t.Errorf("expected N 10, got %d", cfg.Simulation.N)
	}
	if cfg.Simulation.T0 != nil || cfg.Simulation.Theta != nil || cfg.Simulation.Seed != nil {
		t.Error("expected optional simulation parameters to be unset")
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("expected file backend, got %s", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL != 7*24*time.Hour {
		t.Errorf("expected TTL 168h, got %v", cfg.Cache.TTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "coalsim.toml",
			content: `
[simulation]
n = 25
t0 = 0.5
theta = 4.0
seed = 42

[cache]
backend = "redis"
redis_addr = "cache:6379"
ttl = "24h"

[batch]
replicates = 200
workers = 8
`,
		},
		{
			name: "yaml",
			file: "coalsim.yaml",
			content: `
simulation:
  n: 25
  t0: 0.5
  theta: 4
  seed: 42
cache:
  backend: redis
  redis_addr: cache:6379
  ttl: 24h
batch:
  replicates: 200
  workers: 8
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromFile(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("LoadFromFile error: %v", err)
			}
			sim := cfg.Simulation
			if sim.N != 25 {
				t.Errorf("N = %d, want 25", sim.N)
			}
			if sim.T0 == nil || *sim.T0 != 0.5 {
				t.Errorf("T0 = %v, want 0.5", sim.T0)
			}
			if sim.Theta == nil || *sim.Theta != 4 {
				t.Errorf("Theta = %v, want 4", sim.Theta)
			}
			if sim.Seed == nil || *sim.Seed != 42 {
				t.Errorf("Seed = %v, want 42", sim.Seed)
			}
			if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "cache:6379" {
				t.Errorf("Cache = %+v", cfg.Cache)
			}
			if cfg.Cache.TTL != 24*time.Hour {
				t.Errorf("TTL = %v, want 24h", cfg.Cache.TTL)
			}
			if cfg.Batch.Replicates != 200 || cfg.Batch.Workers != 8 {
				t.Errorf("Batch = %+v", cfg.Batch)
			}
		})
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	cfg, err := LoadFromFile(writeFile(t, "c.yml", "simulation:\n  theta: 2\n"))
	if err != nil {
		t.Fatalf("LoadFromFile error: %v", err)
	}
	if cfg.Simulation.N != 10 {
		t.Errorf("missing key should keep default N, got %d", cfg.Simulation.N)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("missing section should keep default backend, got %s", cfg.Cache.Backend)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code errors.Code
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.toml") }, errors.ErrCodeFileNotFound},
		{"extension", func(t *testing.T) string { return writeFile(t, "c.json", "{}") }, errors.ErrCodeInvalidConfig},
		{"bad toml", func(t *testing.T) string { return writeFile(t, "c.toml", "[simulation\nn=") }, errors.ErrCodeInvalidConfig},
		{"bad yaml", func(t *testing.T) string { return writeFile(t, "c.yaml", "simulation: [") }, errors.ErrCodeInvalidConfig},
		{"wrong type", func(t *testing.T) string { return writeFile(t, "c.toml", "[simulation]\nn = \"ten\"\n") }, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(tt.path(t))
			if !errors.Is(err, tt.code) {
				t.Errorf("LoadFromFile error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	neg := -1.0
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sample size", func(c *Config) { c.Simulation.N = 1 }},
		{"theta", func(c *Config) { c.Simulation.Theta = &neg }},
		{"t0", func(c *Config) { c.Simulation.T0 = &neg }},
		{"backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"ttl", func(c *Config) { c.Cache.TTL = -time.Second }},
		{"replicates", func(c *Config) { c.Batch.Replicates = 0 }},
		{"workers", func(c *Config) { c.Batch.Workers = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COALSIM_CACHE_BACKEND", "none")
	t.Setenv("COALSIM_WORKERS", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Cache.Backend != BackendNone {
		t.Errorf("Backend = %s, want none", cfg.Cache.Backend)
	}
	if cfg.Batch.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Batch.Workers)
	}

	t.Setenv("COALSIM_WORKERS", "many")
	if _, err := Load(""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load with bad COALSIM_WORKERS = %v, want INVALID_CONFIG", err)
	}
}

func TestCacheDir(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = "/tmp/explicit"
	if dir, _ := cfg.CacheDir(); dir != "/tmp/explicit" {
		t.Errorf("CacheDir = %s, want explicit dir", dir)
	}

	cfg.Cache.Dir = ""
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if dir, _ := cfg.CacheDir(); dir != filepath.Join("/tmp/xdg", "coalsim") {
		t.Errorf("CacheDir = %s, want XDG path", dir)
	}
}
