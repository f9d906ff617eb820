package repository

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/matzehuels/mavenresolve/pkg/cache"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/pom"
)

// LocalID is the repository ID reported for local hits.
const LocalID = "local"

var timeNow = time.Now

// Options configures a Manager.
type Options struct {
	// LocalPath is the local repository root. Defaults to ~/.m2/repository.
	LocalPath string

	// Transport configures remote calls, including the per-call timeout.
	Transport TransportOptions

	// Cache remembers remote metadata and misses between runs.
	// Defaults to a NullCache.
	Cache cache.Cache

	// Keyer derives cache keys. Defaults to a keyer scoped to LocalPath.
	Keyer cache.Keyer

	// MetadataTTL is how long remote maven-metadata.xml stays cached.
	MetadataTTL time.Duration

	// MissTTL is how long a remote "not found" is remembered.
	MissTTL time.Duration

	// DescriptorCacheSize bounds the in-process effective POM cache.
	DescriptorCacheSize int

	// DescriptorTTL expires in-process effective POMs.
	DescriptorTTL time.Duration

	Logger *log.Logger
}

// DefaultLocalPath returns ~/.m2/repository, or a relative fallback when
// the home directory is unknown.
func DefaultLocalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".m2", "repository")
	}
	return filepath.Join(home, ".m2", "repository")
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.LocalPath == "" {
		o.LocalPath = DefaultLocalPath()
	}
	o.Transport = o.Transport.WithDefaults()
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.MetadataTTL <= 0 {
		o.MetadataTTL = 30 * time.Minute
	}
	if o.MissTTL <= 0 {
		o.MissTTL = 10 * time.Minute
	}
	if o.DescriptorCacheSize <= 0 {
		o.DescriptorCacheSize = 1024
	}
	if o.DescriptorTTL <= 0 {
		o.DescriptorTTL = time.Hour
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Artifact is a file obtained for a coordinate.
type Artifact struct {
	Path       string // absolute path in the local repository
	Repository string // ID of the repository that supplied it, or LocalID
}

type remoteEntry struct {
	Remote
	once      sync.Once
	transport Transport
	err       error
}

// Manager owns the local repository and the ordered remote list.
// It is safe for concurrent use.
type Manager struct {
	opts Options

	mu      sync.RWMutex
	local   *Local
	keyer   cache.Keyer
	remotes []*remoteEntry

	descriptors *expirable.LRU[string, *pom.Model]
	builder     *pom.Builder
}

// NewManager opens the local repository and returns a Manager with no
// remotes.
func NewManager(opts Options) (*Manager, error) {
	opts = opts.WithDefaults()
	local, err := NewLocal(opts.LocalPath)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		opts:        opts,
		local:       local,
		keyer:       keyerFor(opts.Keyer, local.Root()),
		descriptors: expirable.NewLRU[string, *pom.Model](opts.DescriptorCacheSize, nil, opts.DescriptorTTL),
	}
	m.builder = pom.NewBuilder(m, opts.Logger)
	return m, nil
}

func keyerFor(k cache.Keyer, root string) cache.Keyer {
	if k != nil {
		return k
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), "repo:"+cache.Hash([]byte(root))[:12]+":")
}

// Logger returns the manager's logger.
func (m *Manager) Logger() *log.Logger { return m.opts.Logger }

// TransportOptions returns the options used for remote transports.
func (m *Manager) TransportOptions() TransportOptions { return m.opts.Transport }

// AddRemote appends a remote repository to the search order. The returned
// Remote carries the ID derived from the URL.
func (m *Manager) AddRemote(rawURL string, auth Auth) (Remote, error) {
	r, err := NewRemote("", rawURL, auth)
	if err != nil {
		return Remote{}, err
	}
	return m.AddRemoteRepository(r), nil
}

// AddRemoteRepository appends r. A clashing ID gets a numeric suffix.
func (m *Manager) AddRemoteRepository(r Remote) Remote {
	r.URL, r.Auth = splitUserinfo(r.URL, r.Auth)
	if r.Auth == nil {
		r.Auth = NoAuth{}
	}
	m.mu.Lock()
	base, n := r.ID, 1
	for m.hasID(r.ID) {
		n++
		r.ID = base + "-" + strconv.Itoa(n)
	}
	m.remotes = append(m.remotes, &remoteEntry{Remote: r})
	m.mu.Unlock()

	m.descriptors.Purge()
	m.opts.Logger.Debug("added remote repository", "id", r.ID, "url", r.URL, "auth", r.Auth)
	return r
}

func (m *Manager) hasID(id string) bool {
	if id == LocalID {
		return true
	}
	for _, e := range m.remotes {
		if e.ID == id {
			return true
		}
	}
	return false
}

// ClearRemotes removes every remote repository.
func (m *Manager) ClearRemotes() {
	m.mu.Lock()
	m.remotes = nil
	m.mu.Unlock()
	m.descriptors.Purge()
}

// Remotes returns the remote repositories in search order.
func (m *Manager) Remotes() []Remote {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Remote, len(m.remotes))
	for i, e := range m.remotes {
		out[i] = e.Remote
	}
	return out
}

// LocalPath returns the absolute local repository root.
func (m *Manager) LocalPath() string {
	return m.Local().Root()
}

// SetLocalPath switches the local repository, creating it if needed.
// An empty path is rejected instead of falling back to the working
// directory.
func (m *Manager) SetLocalPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "local repository path cannot be empty")
	}
	local, err := NewLocal(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.local = local
	m.keyer = keyerFor(m.opts.Keyer, local.Root())
	m.mu.Unlock()
	m.descriptors.Purge()
	return nil
}

// Local returns the current local repository.
func (m *Manager) Local() *Local {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.local
}

func (m *Manager) snapshot() (*Local, cache.Keyer, []*remoteEntry) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.local, m.keyer, slices.Clone(m.remotes)
}

func (m *Manager) transport(ctx context.Context, e *remoteEntry) (Transport, error) {
	e.once.Do(func() {
		e.transport, e.err = NewTransport(ctx, e.Remote, m.opts.Transport)
	})
	return e.transport, e.err
}

// InvalidateDescriptors drops every memoized effective POM.
func (m *Manager) InvalidateDescriptors() {
	m.descriptors.Purge()
}

// Close releases the metadata cache.
func (m *Manager) Close() error {
	return m.opts.Cache.Close()
}
