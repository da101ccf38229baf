package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Sohailsaifi/CodeFlow/pkg/buildinfo"
	"github.com/Sohailsaifi/CodeFlow/pkg/cache"
	"github.com/Sohailsaifi/CodeFlow/pkg/config"
	"github.com/Sohailsaifi/CodeFlow/pkg/integrations"
	"github.com/Sohailsaifi/CodeFlow/pkg/interaction"
	"github.com/Sohailsaifi/CodeFlow/pkg/layout"
	"github.com/Sohailsaifi/CodeFlow/pkg/pipeline"
	"github.com/Sohailsaifi/CodeFlow/pkg/shell"
)

// appName names the cache directory and the binary.
const appName = "codeflow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds state shared by all commands.
type CLI struct {
	Logger     *log.Logger
	logOut     io.Writer
	configPath string
}

// New creates a CLI logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), logOut: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "CodeFlow presents code-structure analyses as interactive graphs",
		Long: `CodeFlow turns a static code-structure analysis (files, classes, functions
and the calls and imports between them) into a layered, styled graph that can be
rendered, browsed in the terminal, or served to a browser.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./"+config.DefaultFile+" if present)")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.uploadCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves configuration for cmd, letting the flags named in b
// override file and environment values.
func (c *CLI) loadConfig(cmd *cobra.Command, b config.Bindings) (*config.Config, error) {
	cfg, err := config.Load(c.configPath, cmd.Flags(), b)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "engine", cfg.Layout.Engine, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// layoutBindings are the flags shared by every command that lays out a graph.
var layoutBindings = config.Bindings{
	"engine":  "layout.engine",
	"ranksep": "layout.ranksep",
	"nodesep": "layout.nodesep",
	"padding": "layout.padding",
}

func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().String("engine", "", "layout engine: layered (default), graphviz")
	cmd.Flags().Float64("ranksep", 0, "vertical gap between ranks in pixels")
	cmd.Flags().Float64("nodesep", 0, "horizontal gap between nodes in pixels")
	cmd.Flags().Float64("padding", 0, "margin around the drawing in pixels")
}

func merge(bs ...config.Bindings) config.Bindings {
	out := config.Bindings{}
	for _, b := range bs {
		for k, v := range b {
			out[k] = v
		}
	}
	return out
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(c.newCache(ctx, cfg, noCache), nil, c.Logger)
}

// newCache opens the configured cache backend. Failures degrade to no
// caching; the cache never decides whether a command succeeds.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) cache.Cache {
	if noCache || cfg.Cache.Backend == config.CacheNone {
		return cache.NewNullCache()
	}
	if cfg.Cache.Backend == config.CacheRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cfg.Cache.RedisAddr})
		if err == nil {
			return rc
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "addr", cfg.Cache.RedisAddr, "err", err)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// newShell creates a mounted shell whose controller exports through the
// configured collaborator and whose uploads go to the analysis backend.
func (c *CLI) newShell(ctx context.Context, cfg *config.Config, noCache bool) (*shell.Shell, error) {
	exporter, err := integrations.NewExportClient(cfg.Export.URL, clientOptions(cfg)...)
	if err != nil {
		return nil, err
	}
	uploader, err := integrations.NewUploadClient(cfg.Upload.URL, clientOptions(cfg)...)
	if err != nil {
		return nil, err
	}
	adapter := layout.NewAdapter(layout.Options{
		Engine: cfg.Layout.Engine,
		Params: cfg.LayoutParams(),
		Cache:  c.newCache(ctx, cfg, noCache),
		TTL:    cfg.Cache.TTL,
		Logger: c.Logger,
	})
	ctrl := interaction.New(exporter,
		interaction.WithLogger(c.Logger),
		interaction.WithLegend(cfg.Render.Legend),
	)
	sh := shell.New(shell.Options{
		Uploader:   uploader,
		Adapter:    adapter,
		Controller: ctrl,
		Logger:     c.Logger,
	})
	if err := sh.Mount(ctx); err != nil {
		return nil, err
	}
	return sh, nil
}

// pipelineOptions maps configuration onto pipeline options.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Engine: cfg.Layout.Engine,
		Params: cfg.LayoutParams(),
		Legend: cfg.Render.Legend,
		Popups: cfg.Render.Popups,
	}
}

// clientOptions are the HTTP settings shared by the collaborator clients.
func clientOptions(cfg *config.Config) []integrations.Option {
	return []integrations.Option{integrations.WithTimeout(cfg.HTTP.Timeout)}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/codeflow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
