// Package cli implements the coalsim command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/coalsim/pkg/buildinfo"
	"github.com/matzehuels/coalsim/pkg/cache"
	"github.com/matzehuels/coalsim/pkg/config"
	"github.com/matzehuels/coalsim/pkg/observability"
	"github.com/matzehuels/coalsim/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "coalsim"

	// redisKeyPrefix scopes cache keys when a redis instance is shared.
	redisKeyPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath  string
	metricsFile string
	metrics     *observability.PrometheusHooks
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Coalsim simulates coalescent genealogies",
		Long: `Coalsim simulates the genealogy of a sample under Kingman's coalescent,
optionally with a population size changepoint and neutral mutations, and
reports T_MRCA, branch lengths, pairwise coalescence times, sequences and
the folded site-frequency spectrum.`,
		Version:            buildinfo.Version,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  c.setupMetrics,
		PersistentPostRunE: c.flushMetrics,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "configuration file (.toml, .yaml)")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	// Register all subcommands
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Metrics
// =============================================================================

func (c *CLI) setupMetrics(cmd *cobra.Command, args []string) error {
	if c.metricsFile == "" {
		return nil
	}
	c.metrics = observability.NewPrometheusHooks()
	observability.SetSimulationHooks(c.metrics)
	observability.SetCacheHooks(c.metrics)
	return nil
}

// flushMetrics only runs after successful commands; cobra skips post-run
// hooks when RunE fails.
func (c *CLI) flushMetrics(cmd *cobra.Command, args []string) error {
	if c.metrics == nil {
		return nil
	}
	if err := c.metrics.WriteTextfile(c.metricsFile); err != nil {
		return err
	}
	c.Logger.Debug("wrote metrics", "path", c.metricsFile)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig reads the --config file (if any) and COALSIM_* overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	backend := cfg.Cache.Backend
	if noCache {
		backend = config.BackendNone
	}

	var keyer cache.Keyer
	store, err := c.newCache(ctx, cfg, backend)
	if err != nil {
		return nil, err
	}
	if backend == config.BackendRedis {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), redisKeyPrefix)
	}

	runner := pipeline.NewRunner(store, keyer, c.Logger)
	if cfg.Cache.TTL > 0 {
		runner.TTL = cfg.Cache.TTL
	}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config, backend string) (cache.Cache, error) {
	switch backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cfg.Cache.RedisAddr})
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		c.Logger.Warn("caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}
