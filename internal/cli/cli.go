// Package cli implements the reactiveshots command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/reactiveshots/portfolio/internal/config"
	"github.com/reactiveshots/portfolio/pkg/buildinfo"
	"github.com/reactiveshots/portfolio/pkg/cache"
	"github.com/reactiveshots/portfolio/pkg/catalog"
	"github.com/reactiveshots/portfolio/pkg/content"
	"github.com/reactiveshots/portfolio/pkg/gallery"
	"github.com/reactiveshots/portfolio/pkg/measure"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and completions.
const appName = config.AppName

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

	// configPath is set by the persistent --config flag.
	configPath string
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
		Use:          appName,
		Short:        "Reactive Shots portfolio server and gallery tools",
		Long:         `reactiveshots serves the Reactive Shots photography portfolio and lays out its galleries as justified masonry rows.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/reactiveshots/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.albumsCommand())
	root.AddCommand(c.pricingCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.contactCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config, or the default one.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// services bundles the collaborators most commands need.
type services struct {
	cfg     config.Config
	content *content.Client
	runner  *gallery.Runner
}

// Close releases the shared cache.
func (s *services) Close() error {
	return s.runner.Close()
}

// newServices opens the configured cache and wires the content client and
// gallery runner to it. With noCache set, nothing is read from or written
// to the cache.
func (c *CLI) newServices(ctx context.Context, noCache bool) (*services, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if noCache {
		cfg.Cache.Backend = config.BackendNone
	}

	store, err := cfg.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "err", err)
		store = cache.NewNullCache()
	}
	keyer := cfg.Keyer()

	client := content.NewClient(store, keyer, cfg.ContentConfig())
	runner := gallery.NewRunner(client, measure.NewHTTPMeasurer(), store, keyer, c.Logger)
	runner.MeasureOptions = cfg.MeasureOptions(c.Logger)

	return &services{cfg: cfg, content: client, runner: runner}, nil
}

// =============================================================================
// Helpers
// =============================================================================

// categoryArg completes category slugs for positional arguments.
func categoryArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return catalog.Slugs(), cobra.ShellCompDirectiveNoFileComp
}
