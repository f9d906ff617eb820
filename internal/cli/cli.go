package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenresolve/pkg/buildinfo"
	"github.com/matzehuels/mavenresolve/pkg/config"
	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/manifest"
	"github.com/matzehuels/mavenresolve/pkg/repository"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "mavenresolve"

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

	// Global flags.
	configPath string
	localRepo  string
	remotes    []string
	offline    bool
	noCache    bool

	// cfg is loaded before any subcommand runs.
	cfg config.Config
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
		Short: "mavenresolve resolves Maven dependencies and manages repositories",
		Long: `mavenresolve resolves transitive Maven dependencies with nearest-wins
conflict resolution, keeps a local repository in the standard layout, and
installs or deploys artifacts to local and remote repositories.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&c.localRepo, "local-repo", "", "local repository path (overrides config)")
	flags.StringArrayVar(&c.remotes, "remote", nil, "remote repository URL, repeatable (replaces configured remotes)")
	flags.BoolVar(&c.offline, "offline", false, "use only the local repository")
	flags.BoolVar(&c.noCache, "no-cache", false, "do not cache remote metadata")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.deployCommand())
	root.AddCommand(c.pomCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and applies global flag overrides.
// The default config file is optional; an explicit --config is not.
func (c *CLI) loadConfig() error {
	path, optional := c.configPath, false
	if path == "" {
		path, optional = config.DefaultPath(), true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}
	if c.localRepo != "" {
		cfg.LocalRepoPath = c.localRepo
	}
	if len(c.remotes) > 0 {
		cfg.RemoteRepositories = nil
		for _, u := range c.remotes {
			cfg.RemoteRepositories = append(cfg.RemoteRepositories, config.Remote{URL: u})
		}
	}
	if c.offline {
		cfg.RemoteRepositories = nil
	}
	if c.noCache {
		cfg.Cache.Backend = "none"
	}
	c.cfg = cfg
	c.Logger.Debug("configuration loaded", "path", path, "local", cfg.LocalRepoPath, "remotes", len(cfg.RemoteRepositories))
	return nil
}

// newManager builds the repository manager for one command.
func (c *CLI) newManager(ctx context.Context) (*repository.Manager, error) {
	return c.cfg.NewManager(ctx, loggerFromContext(ctx))
}

// =============================================================================
// Input Helpers
// =============================================================================

// parseArgDependency parses "notation" or "notation=scope".
func parseArgDependency(arg string) (coord.Dependency, error) {
	notation, scope, _ := strings.Cut(arg, "=")
	return coord.NewDependency(notation, scope)
}

// roots collects dependencies from a manifest file and positional
// arguments, manifest entries first. It also returns the manifest, if any.
func (c *CLI) roots(ctx context.Context, m *repository.Manager, file string, args []string) ([]coord.Dependency, *manifest.Manifest, error) {
	var deps []coord.Dependency
	var mf *manifest.Manifest
	if file != "" {
		var err error
		if mf, err = manifest.Load(ctx, file, m); err != nil {
			return nil, nil, err
		}
		deps = append(deps, mf.Dependencies...)
		for _, r := range mf.Repositories {
			if c.offline {
				break
			}
			remote, err := repository.NewRemote(r.ID, r.URL, nil)
			if err != nil {
				return nil, nil, err
			}
			m.AddRemoteRepository(remote)
		}
	}
	for _, arg := range args {
		d, err := parseArgDependency(arg)
		if err != nil {
			return nil, nil, err
		}
		deps = append(deps, d)
	}
	if len(deps) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no dependencies given: pass notations or --file")
	}
	return deps, mf, nil
}

// envOr returns the flag value or, when empty, the environment variable.
func envOr(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}
