package resolve

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavenresolve/pkg/coord"
)

const (
	DefaultWorkers  = 8   // Default number of concurrent descriptor fetches
	DefaultMaxDepth = 100 // Default depth beyond which nodes are not expanded
)

// Options configures a Resolver.
type Options struct {
	// Workers bounds concurrent descriptor fetches and downloads.
	Workers int

	// MaxDepth stops expansion below this depth. Deeper nodes are kept but
	// their dependencies are not read.
	MaxDepth int

	// Timeout bounds a whole resolution. Zero means no limit beyond the
	// caller's context.
	Timeout time.Duration

	// Managed pins the versions of transitive dependencies, the way a
	// project's dependencyManagement section does. Roots are never
	// overridden.
	Managed []coord.Dependency

	Logger *log.Logger
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}
