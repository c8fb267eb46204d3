// Package cli implements the cpanmap command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/cpanmap/pkg/buildinfo"
	"github.com/matzehuels/cpanmap/pkg/cache"
	"github.com/matzehuels/cpanmap/pkg/catalog"
	"github.com/matzehuels/cpanmap/pkg/config"
	"github.com/matzehuels/cpanmap/pkg/enrich"
	errs "github.com/matzehuels/cpanmap/pkg/errors"
	"github.com/matzehuels/cpanmap/pkg/integrations/metacpan"
	"github.com/matzehuels/cpanmap/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "cpanmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// flagKeys binds persistent flags to config keys.
var flagKeys = map[string]string{
	"verbose":           "verbose",
	"strict":            "strict",
	"registry.base_url": "registry-url",
	"registry.timeout":  "timeout",
	"cache.backend":     "cache",
}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	v          *viper.Viper
	cfg        config.Config
	configFile string
	noCache    bool
	refresh    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		v:      config.New(),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "cpanmap explores the CPAN map data file",
		Long:          `cpanmap loads the CPAN map data file, answers lookups by cell, name, maintainer and module, and enriches distributions with dependency data from MetaCPAN.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default ./"+config.FileName+" or ~/"+config.FileName+")")
	flags.BoolP("verbose", "v", false, "enable verbose logging")
	flags.Bool("strict", false, "fail on the first malformed record")
	flags.String("registry-url", "", "MetaCPAN API base URL")
	flags.Duration("timeout", 0, "timeout per registry request")
	flags.String("cache", "", "response cache backend (file, redis, mongo, none)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the response cache")
	flags.BoolVar(&c.refresh, "refresh", false, "bypass cached registry responses")

	// Register all subcommands
	root.AddCommand(c.loadCommand())
	root.AddCommand(c.atCommand())
	root.AddCommand(c.findCommand())
	root.AddCommand(c.maintainerCommand())
	root.AddCommand(c.moduleCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.rdepsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig merges defaults, config file, environment and flags. Flags
// only override when set explicitly.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	if err := config.Bind(c.v, cmd.Root().PersistentFlags(), flagKeys); err != nil {
		return err
	}
	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if cfg.Verbose {
		c.SetLogLevel(LogDebug)
		observability.LogHooks{Logger: c.Logger}.Install()
	}
	if used := config.Used(c.v); used != "" {
		c.Logger.Debug("config loaded", "file", used)
	}
	return nil
}

// =============================================================================
// Catalog and Registry Factories
// =============================================================================

// loadCatalog builds the catalog for path.
func (c *CLI) loadCatalog(ctx context.Context, path string) (*catalog.Catalog, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	return catalog.LoadFile(ctx, path, catalog.LoadOptions{
		Logger: c.Logger,
		Strict: c.cfg.Strict,
		Source: path,
	})
}

// openCache returns the configured response cache.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cacheConfig(c.cfg.Cache))
}

func cacheConfig(cc config.CacheConfig) cache.Config {
	return cache.Config{
		Backend:    cc.Backend,
		Dir:        cc.Dir,
		URL:        cc.URL,
		Database:   cc.Database,
		Collection: cc.Collection,
		Prefix:     cc.Prefix,
	}
}

// newRegistry creates the MetaCPAN-backed registry. The returned close
// function releases the cache.
func (c *CLI) newRegistry(ctx context.Context) (enrich.Registry, func(), error) {
	backend, err := c.openCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	rc := c.cfg.Registry
	var opts []metacpan.Option
	if rc.BaseURL != "" {
		opts = append(opts, metacpan.WithBaseURL(rc.BaseURL))
	}
	if rc.RDepsLimit > 0 {
		opts = append(opts, metacpan.WithReverseDependencyLimit(rc.RDepsLimit))
	}
	ua := rc.UserAgent
	if ua == "" {
		ua = buildinfo.UserAgent()
	}
	client := metacpan.NewClient(backend, rc.CacheTTL, ua, opts...)
	closeFn := func() {
		if err := backend.Close(); err != nil {
			c.Logger.Warn("close cache", "err", err)
		}
	}
	return enrich.NewMetaCPANRegistry(client, c.refresh), closeFn, nil
}

func (c *CLI) enrichOptions() enrich.Options {
	return enrich.Options{
		Timeout: c.cfg.Registry.Timeout,
		Workers: c.cfg.Registry.Workers,
		Logger:  c.Logger,
	}
}

// newEnricher wires a registry to cat.
func (c *CLI) newEnricher(ctx context.Context, cat *catalog.Catalog) (*enrich.Enricher, func(), error) {
	reg, closeFn, err := c.newRegistry(ctx)
	if err != nil {
		return nil, nil, err
	}
	return enrich.New(cat, reg, c.enrichOptions()), closeFn, nil
}
