package resolve

import (
	"time"

	"github.com/matzehuels/mavenresolve/pkg/coord"
)

// Artifact is one entry of a resolved dependency list.
type Artifact struct {
	coord.Dependency

	// Depth is 0 for roots.
	Depth int

	// Parent indexes the artifact that pulled this one in, -1 for roots.
	Parent int

	// Path and Repository are set when the file was downloaded.
	Path       string
	Repository string
}

// Edge links two entries of Result.Artifacts by index.
type Edge struct {
	From, To int
}

// Stats summarizes a resolution.
type Stats struct {
	Nodes     int // candidates considered, including dropped ones
	Conflicts int // candidates dropped for a different version of a chosen artifact
	Excluded  int // dependencies skipped by an exclusion
	Cycles    int // dependencies skipped because they lead back to an ancestor
	MaxDepth  int // deepest level reached
	Duration  time.Duration
}

// Result is the outcome of Resolver.Resolve.
type Result struct {
	// Artifacts lists the chosen artifacts: roots first in input order, then
	// transitive dependencies in breadth-first discovery order.
	Artifacts []Artifact

	// Edges are the parent/child links of the winning tree.
	Edges []Edge

	Stats Stats
}

// Coordinates returns the chosen coordinates in result order.
func (r *Result) Coordinates() []coord.Coordinate {
	out := make([]coord.Coordinate, len(r.Artifacts))
	for i, a := range r.Artifacts {
		out[i] = a.Coordinate
	}
	return out
}

// Dependencies returns the chosen dependencies with their effective scopes.
func (r *Result) Dependencies() []coord.Dependency {
	out := make([]coord.Dependency, len(r.Artifacts))
	for i, a := range r.Artifacts {
		out[i] = a.Dependency
	}
	return out
}

// Chain returns the notations from the root down to artifact i.
func (r *Result) Chain(i int) []string {
	var chain []string
	for ; i >= 0; i = r.Artifacts[i].Parent {
		chain = append([]string{r.Artifacts[i].Coordinate.String()}, chain...)
	}
	return chain
}
