// Package config loads coalsim run configuration from TOML or YAML files and
// environment variables.
//
// Command-line flags take precedence over everything loaded here; the CLI
// applies only the flags that were set explicitly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/coalsim/pkg/errors"
)

// Config contains all coalsim configuration settings.
type Config struct {
	Simulation SimulationConfig `toml:"simulation" yaml:"simulation"`
	Cache      CacheConfig      `toml:"cache" yaml:"cache"`
	Batch      BatchConfig      `toml:"batch" yaml:"batch"`
}

// SimulationConfig holds model parameters. Unset pointers mean the feature
// is disabled (no changepoint, no mutations, random seed).
type SimulationConfig struct {
	N     int      `toml:"n" yaml:"n"`
	T0    *float64 `toml:"t0" yaml:"t0"`
	Theta *float64 `toml:"theta" yaml:"theta"`
	Seed  *uint64  `toml:"seed" yaml:"seed"`
}

// Cache backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// CacheConfig selects where seeded results are cached.
type CacheConfig struct {
	// Backend is "file" (default), "redis" or "none".
	Backend string `toml:"backend" yaml:"backend"`

	// Dir overrides the file cache directory. Defaults to
	// $XDG_CACHE_HOME/coalsim or ~/.cache/coalsim.
	Dir string `toml:"dir" yaml:"dir"`

	// RedisAddr is the host:port of the redis backend.
	RedisAddr string `toml:"redis_addr" yaml:"redis_addr"`

	// TTL is how long cached trees are kept, e.g. "168h".
	TTL time.Duration `toml:"ttl" yaml:"ttl"`
}

// BatchConfig sizes replicate batches.
type BatchConfig struct {
	Replicates int `toml:"replicates" yaml:"replicates"`

	// Workers bounds concurrent replicates. 0 means one per CPU.
	Workers int `toml:"workers" yaml:"workers"`
}

// Default returns a Config with the CLI defaults.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{N: 10},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       7 * 24 * time.Hour,
		},
		Batch: BatchConfig{Replicates: 100},
	}
}

// Load returns the defaults overlaid with the file at path (if path is not
// empty) and then with COALSIM_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadFromFile reads a TOML (.toml) or YAML (.yaml, .yml) file on top of the
// defaults. Keys missing from the file keep their default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "config %s: unsupported extension %q (want .toml, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

// Validate checks value ranges. Simulation parameters use the same rules as
// the simulator itself.
func (c *Config) Validate() error {
	if err := errors.ValidateSampleSize(c.Simulation.N); err != nil {
		return err
	}
	if err := errors.ValidateChangepoint(c.Simulation.T0); err != nil {
		return err
	}
	if err := errors.ValidateTheta(c.Simulation.Theta); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid cache backend: %s (valid: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must be non-negative, got %v", c.Cache.TTL)
	}
	return errors.ValidateReplicates(c.Batch.Replicates, c.Batch.Workers)
}

// CacheDir returns the file cache directory: Cache.Dir if set, otherwise
// $XDG_CACHE_HOME/coalsim, otherwise ~/.cache/coalsim.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "coalsim"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cache", "coalsim"), nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("COALSIM_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("COALSIM_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("COALSIM_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("COALSIM_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "COALSIM_WORKERS")
		}
		cfg.Batch.Workers = n
	}
	return nil
}
