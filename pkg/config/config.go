// Package config loads mavenresolve settings from a TOML file and the
// environment.
//
// The file recognizes the local repository path, the ordered remote
// repositories, whether artifacts are downloaded, and a few runtime knobs:
//
//	local_repo_path = "~/.m2/repository"
//	download_artifacts = true
//	timeout = "30s"
//	workers = 8
//
//	[cache]
//	backend = "file"
//	ttl = "24h"
//
//	[[remote_repositories]]
//	id = "central"
//	url = "https://repo.maven.apache.org/maven2"
//
// MAVENRESOLVE_LOCAL_REPO, MAVENRESOLVE_TIMEOUT and MAVENRESOLVE_REDIS_URL
// override the file.
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavenresolve/pkg/cache"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/repository"
	"github.com/matzehuels/mavenresolve/pkg/resolve"
)

const appName = "mavenresolve"

// Environment variables that override file settings.
const (
	EnvLocalRepo = "MAVENRESOLVE_LOCAL_REPO"
	EnvTimeout   = "MAVENRESOLVE_TIMEOUT"
	EnvRedisURL  = "MAVENRESOLVE_REDIS_URL"
)

// CentralURL is used when no remote repository is configured.
const CentralURL = "https://repo.maven.apache.org/maven2"

// Config is the full set of settings.
type Config struct {
	LocalRepoPath      string      `toml:"local_repo_path"`
	RemoteRepositories []Remote    `toml:"remote_repositories"`
	DownloadArtifacts  bool        `toml:"download_artifacts"`
	Timeout            Duration    `toml:"timeout"`
	Workers            int         `toml:"workers"`
	Cache              CacheConfig `toml:"cache"`
}

// Remote is one [[remote_repositories]] entry.
type Remote struct {
	ID         string `toml:"id"`
	URL        string `toml:"url"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
	PublicKey  string `toml:"public_key"`
	Passphrase string `toml:"passphrase"`
}

// CacheConfig selects where remote metadata and misses are remembered.
type CacheConfig struct {
	Backend  cache.Backend `toml:"backend"`
	TTL      Duration      `toml:"ttl"`
	RedisURL string        `toml:"redis_url"`
	Dir      string        `toml:"dir"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{DownloadArtifacts: true}.WithDefaults()
}

// WithDefaults returns a copy with zero fields replaced by defaults.
// DownloadArtifacts is left alone because false is meaningful.
func (c Config) WithDefaults() Config {
	if c.LocalRepoPath == "" {
		c.LocalRepoPath = repository.DefaultLocalPath()
	}
	c.LocalRepoPath = expandHome(c.LocalRepoPath)
	if c.Timeout.Duration <= 0 {
		c.Timeout.Duration = repository.DefaultTimeout
	}
	if c.Workers <= 0 {
		c.Workers = resolve.DefaultWorkers
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendFile
	}
	if c.Cache.TTL.Duration <= 0 {
		c.Cache.TTL.Duration = 24 * time.Hour
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = DefaultCacheDir()
	}
	c.Cache.Dir = expandHome(c.Cache.Dir)
	if len(c.RemoteRepositories) == 0 {
		c.RemoteRepositories = []Remote{{ID: "central", URL: CentralURL}}
	}
	return c
}

// DefaultPath returns $XDG_CONFIG_HOME/mavenresolve/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("."+appName, "config.toml")
	}
	return filepath.Join(dir, appName, "config.toml")
}

// DefaultCacheDir returns the per-user cache directory for mavenresolve.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join("."+appName, "cache")
	}
	return filepath.Join(dir, appName)
}

// Load reads the file at path, applies environment overrides and fills in
// defaults. A missing file is not an error when optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Config{DownloadArtifacts: true}
	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, errors.New(errors.ErrCodeInvalidInput, "%s: unknown settings: %s", path, strings.Join(keys, ", "))
		}
	case optional && os.IsNotExist(err):
		cfg = Config{DownloadArtifacts: true}
	case os.IsNotExist(err):
		return Config{}, errors.Wrap(errors.ErrCodeIO, err, "read config")
	default:
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg.WithDefaults(), nil
}

// ApplyEnv overrides settings from environment variables read through
// getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvLocalRepo); v != "" {
		c.LocalRepoPath = v
	}
	if v := getenv(EnvTimeout); v != "" {
		if err := c.Timeout.UnmarshalText([]byte(v)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", EnvTimeout)
		}
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = cache.BackendRedis
	}
	return nil
}

// Validate checks every remote repository entry.
func (c Config) Validate() error {
	for i, r := range c.RemoteRepositories {
		if err := errors.ValidateRepositoryURL(r.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "remote_repositories[%d]", i)
		}
		if r.PublicKey != "" && r.Username != "" {
			return errors.New(errors.ErrCodeInvalidInput, "remote_repositories[%d]: set either username or public_key, not both", i)
		}
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// Auth returns the credentials of r.
func (r Remote) Auth() repository.Auth {
	return repository.NewAuth(r.Username, r.Password, expandHome(r.PublicKey), r.Passphrase)
}

// Repository converts r to a repository.Remote.
func (r Remote) Repository() (repository.Remote, error) {
	return repository.NewRemote(r.ID, r.URL, r.Auth())
}

// OpenCache opens the configured cache backend.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	return cache.Open(ctx, c.Cache.Backend, c.Cache.Dir, c.Cache.RedisURL)
}

// NewManager builds a repository manager with the configured local path,
// cache and remote repositories in order.
func (c Config) NewManager(ctx context.Context, logger *log.Logger) (*repository.Manager, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	store, err := c.OpenCache(ctx)
	if err != nil {
		return nil, err
	}
	m, err := repository.NewManager(repository.Options{
		LocalPath:   c.LocalRepoPath,
		Transport:   repository.TransportOptions{Timeout: c.Timeout.Duration},
		Cache:       store,
		MetadataTTL: c.Cache.TTL.Duration,
		Logger:      logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	for _, r := range c.RemoteRepositories {
		remote, err := r.Repository()
		if err != nil {
			_ = m.Close()
			return nil, err
		}
		m.AddRemoteRepository(remote)
	}
	return m, nil
}

// ResolveOptions returns resolver options for these settings.
func (c Config) ResolveOptions(logger *log.Logger) resolve.Options {
	return resolve.Options{Workers: c.Workers, Logger: logger}
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
