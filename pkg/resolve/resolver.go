package resolve

import (
	"context"
	stderrors "errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/observability"
	"github.com/matzehuels/mavenresolve/pkg/pom"
	"github.com/matzehuels/mavenresolve/pkg/repository"
	"github.com/matzehuels/mavenresolve/pkg/version"
)

// Source supplies descriptors, versions and files. *repository.Manager
// implements it.
type Source interface {
	// Descriptor returns the effective POM of c.
	Descriptor(ctx context.Context, c coord.Coordinate) (*pom.Model, error)
	// ResolveVersion turns a range or LATEST/RELEASE into a version.
	ResolveVersion(ctx context.Context, c coord.Coordinate) (string, error)
	// Fetch stores the file of c in the local repository.
	Fetch(ctx context.Context, c coord.Coordinate) (repository.Artifact, error)
}

var _ Source = (*repository.Manager)(nil)

// Resolver computes dependency closures against a Source.
type Resolver struct {
	src  Source
	opts Options
}

// New returns a Resolver reading from src.
func New(src Source, opts Options) *Resolver {
	return &Resolver{src: src, opts: opts.WithDefaults()}
}

// node is an arena slot. Dropped candidates stay in place with pruned set.
type node struct {
	dep    coord.Dependency
	depth  int
	parent int
	pruned bool
}

type graph struct {
	nodes   []node
	chosen  map[coord.Key]int
	managed map[coord.Key]coord.Dependency
	stats   Stats
}

// Resolve returns roots followed by their transitive dependencies. When
// download is true every non-system artifact is also fetched into the
// local repository; otherwise only descriptors are read.
func (r *Resolver) Resolve(ctx context.Context, roots []coord.Dependency, download bool) (result *Result, err error) {
	start := time.Now()
	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, len(roots))
	defer func() {
		n := 0
		if result != nil {
			n = len(result.Artifacts)
		}
		hooks.OnResolveComplete(ctx, n, time.Since(start), err)
	}()

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	g := &graph{
		chosen:  make(map[coord.Key]int),
		managed: make(map[coord.Key]coord.Dependency, len(r.opts.Managed)),
	}
	for _, m := range r.opts.Managed {
		g.managed[m.Key()] = m
	}

	frontier := make([]int, 0, len(roots))
	for _, d := range roots {
		if err := d.Coordinate.Validate(); err != nil {
			return nil, err
		}
		if d.Scope == "" {
			d.Scope = coord.ScopeCompile
		}
		frontier = append(frontier, g.add(node{dep: d, parent: -1}))
	}

	for depth := 0; len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		winners := r.choose(ctx, g, frontier)
		if len(winners) > 0 {
			g.stats.MaxDepth = depth
		}
		models, err := r.describe(ctx, g, winners)
		if err != nil {
			return nil, err
		}
		frontier = r.expand(g, winners, models)
		r.opts.Logger.Debug("frontier expanded", "depth", depth, "chosen", len(winners), "next", len(frontier))
	}

	result = g.flatten()
	if download {
		if err := r.download(ctx, result); err != nil {
			return nil, err
		}
	}
	result.Stats.Duration = time.Since(start)
	return result, nil
}

func (g *graph) add(n node) int {
	g.nodes = append(g.nodes, n)
	g.stats.Nodes++
	return len(g.nodes) - 1
}

// choose applies nearest-wins to a frontier in discovery order and returns
// the winners. Candidates of earlier frontiers have already been chosen, so
// a shallower artifact always beats a deeper one.
func (r *Resolver) choose(ctx context.Context, g *graph, frontier []int) []int {
	var winners []int
	for _, i := range frontier {
		n := &g.nodes[i]
		key := n.dep.Key()
		if w, ok := g.chosen[key]; ok {
			n.pruned = true
			kept := g.nodes[w].dep.Version
			if kept != n.dep.Version {
				g.stats.Conflicts++
				observability.Resolve().OnConflict(ctx, key.String(), kept, n.dep.Version)
				r.opts.Logger.Debug("version conflict", "artifact", key, "kept", kept, "dropped", n.dep.Version)
			}
			continue
		}
		g.chosen[key] = i
		winners = append(winners, i)
	}
	return winners
}

// describe resolves the version of every winner and fetches the
// descriptors of those that will be expanded. The returned slice is
// parallel to winners; entries stay nil for nodes that are not expanded.
func (r *Resolver) describe(ctx context.Context, g *graph, winners []int) ([]*pom.Model, error) {
	models := make([]*pom.Model, len(winners))
	errs := make([]error, len(winners))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.Workers)
	for pos, i := range winners {
		n := &g.nodes[i]
		eg.Go(func() error {
			c := n.dep.Coordinate
			if needsResolution(c.Version) {
				v, err := r.src.ResolveVersion(egCtx, c)
				if err != nil {
					errs[pos] = err
					return err
				}
				n.dep.Coordinate = c.WithVersion(v)
			}
			if !r.expandable(n) {
				return nil
			}
			model, err := r.src.Descriptor(egCtx, n.dep.Coordinate)
			if err != nil {
				errs[pos] = err
				return err
			}
			models[pos] = model
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Report the first failure in frontier order, not the first to finish.
	for pos, err := range errs {
		if err == nil || (egCtx.Err() != nil && isCanceled(err)) {
			continue
		}
		i := winners[pos]
		return nil, &errors.ResolutionError{
			Coordinate: g.nodes[i].dep.Coordinate.String(),
			Path:       g.chain(g.nodes[i].parent),
			Cause:      err,
		}
	}
	return models, nil
}

func (r *Resolver) expandable(n *node) bool {
	if n.dep.Scope == coord.ScopeSystem {
		return false
	}
	if n.depth >= r.opts.MaxDepth {
		r.opts.Logger.Warn("maximum depth reached, not expanding", "artifact", n.dep.Coordinate, "depth", n.depth)
		return false
	}
	return true
}

// expand turns the descriptors of winners into the next frontier.
func (r *Resolver) expand(g *graph, winners []int, models []*pom.Model) []int {
	var next []int
	for pos, i := range winners {
		model := models[pos]
		if model == nil {
			continue
		}
		parent := g.nodes[i]
		for _, d := range model.Dependencies {
			switch {
			case d.Optional, !d.Scope.Transitive():
				continue
			case parent.dep.Exclusions.Matches(d.Coordinate):
				g.stats.Excluded++
				r.opts.Logger.Debug("excluded", "artifact", d.Coordinate, "via", parent.dep.Coordinate)
				continue
			case g.onPath(i, d.Key()):
				g.stats.Cycles++
				r.opts.Logger.Debug("cycle", "artifact", d.Coordinate, "via", parent.dep.Coordinate)
				continue
			}
			if m, ok := g.managed[d.Key()]; ok {
				d.Coordinate = d.Coordinate.WithVersion(m.Version)
				d.Exclusions = d.Exclusions.Union(m.Exclusions)
			}
			child := coord.Dependency{
				Coordinate: d.Coordinate,
				Scope:      parent.dep.Scope.Narrow(d.Scope),
				Exclusions: parent.dep.Exclusions.Union(d.Exclusions),
			}
			next = append(next, g.add(node{dep: child, depth: parent.depth + 1, parent: i}))
		}
	}
	return next
}

// onPath reports whether key names node i or one of its ancestors.
func (g *graph) onPath(i int, key coord.Key) bool {
	for ; i >= 0; i = g.nodes[i].parent {
		if g.nodes[i].dep.Key() == key {
			return true
		}
	}
	return false
}

// chain returns the notations from the root down to node i.
func (g *graph) chain(i int) []string {
	var out []string
	for ; i >= 0; i = g.nodes[i].parent {
		out = append([]string{g.nodes[i].dep.Coordinate.String()}, out...)
	}
	return out
}

// flatten compacts the arena into a Result, dropping pruned nodes.
func (g *graph) flatten() *Result {
	index := make([]int, len(g.nodes))
	res := &Result{Stats: g.stats}
	for i, n := range g.nodes {
		if n.pruned {
			index[i] = -1
			continue
		}
		parent := -1
		if n.parent >= 0 {
			parent = index[n.parent]
		}
		index[i] = len(res.Artifacts)
		res.Artifacts = append(res.Artifacts, Artifact{
			Dependency: n.dep,
			Depth:      n.depth,
			Parent:     parent,
		})
		if parent >= 0 {
			res.Edges = append(res.Edges, Edge{From: parent, To: index[i]})
		}
	}
	return res
}

// download fetches every non-system artifact of res.
func (r *Resolver) download(ctx context.Context, res *Result) error {
	errs := make([]error, len(res.Artifacts))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.Workers)
	for i := range res.Artifacts {
		a := &res.Artifacts[i]
		if a.Scope == coord.ScopeSystem {
			continue
		}
		eg.Go(func() error {
			got, err := r.src.Fetch(egCtx, a.Coordinate)
			if err != nil {
				errs[i] = err
				return err
			}
			a.Path, a.Repository = got.Path, got.Repository
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	for i, err := range errs {
		if err == nil || (egCtx.Err() != nil && isCanceled(err)) {
			continue
		}
		chain := res.Chain(i)
		return &errors.ResolutionError{
			Coordinate: res.Artifacts[i].Coordinate.String(),
			Path:       chain[:len(chain)-1],
			Cause:      err,
		}
	}
	return nil
}

func needsResolution(v string) bool {
	return v == "LATEST" || v == "RELEASE" || version.IsRange(v)
}

// isCanceled reports whether err only reflects a sibling's failure.
func isCanceled(err error) bool {
	return stderrors.Is(err, context.Canceled)
}
