package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/grapes/pkg/buildinfo"
	"github.com/matzehuels/grapes/pkg/cache"
	"github.com/matzehuels/grapes/pkg/config"
	"github.com/matzehuels/grapes/pkg/integrations/maven"
	"github.com/matzehuels/grapes/pkg/service"
	"github.com/matzehuels/grapes/pkg/store"
	"github.com/matzehuels/grapes/pkg/store/memory"
	"github.com/matzehuels/grapes/pkg/store/mongo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "grapes"

	// catalogFile is the snapshot used by the memory driver when neither
	// the config nor --catalog names one.
	catalogFile = "catalog.json"
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
	catalogPath string
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
		Short:        "Grapes catalogs modules, artifacts and their dependency graph",
		Long:         `Grapes keeps a catalog of modules, the artifacts they publish and the dependencies between them. It answers version, license and ancestry queries, checks promotion readiness and serves the catalog over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/grapes/grapes.toml)")
	root.PersistentFlags().StringVar(&c.catalogPath, "catalog", "", "catalog snapshot for the memory driver")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.licensesCommand())
	root.AddCommand(c.promoteCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// loadConfig reads the file named by --config, falling back to the
// default location.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// openStore opens the catalog selected by cfg. For the memory driver the
// snapshot is --catalog, then database.snapshot, then the data directory.
func (c *CLI) openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Database.Driver == config.DriverMongo {
		c.Logger.Debug("connecting", "uri", cfg.Database.URI, "database", cfg.Database.Name)
		return mongo.Connect(ctx, cfg.Database.URI, cfg.Database.Name)
	}

	path := c.catalogPath
	if path == "" {
		path = cfg.Database.Snapshot
	}
	if path == "" {
		dir, err := dataDir()
		if err != nil {
			return nil, fmt.Errorf("get data dir: %w", err)
		}
		path = filepath.Join(dir, catalogFile)
	}
	c.Logger.Debug("opening catalog", "path", path)
	return memory.Open(path)
}

// withService opens the catalog, runs fn and closes the catalog again,
// which persists memory snapshots.
func (c *CLI) withService(ctx context.Context, fn func(*config.Config, *service.Service) error) (err error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = fmt.Errorf("close catalog: %w", cerr)
		}
	}()
	return fn(cfg, service.New(st, c.Logger))
}

func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return cache.New(ctx, cfg.CacheOptions())
}

func newMaven(c cache.Cache, cfg *config.Config) *maven.Client {
	return maven.NewClient(c, cfg.Maven.Repository, cfg.Cache.TTL.Duration)
}

// =============================================================================
// Paths
// =============================================================================

// dataDir returns the data directory using XDG standard (~/.local/share/grapes/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// cacheDir returns the file cache directory: cache.dir from the config,
// else the user cache directory.
func cacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}
