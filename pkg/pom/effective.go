package pom

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// maxLineage bounds parent chains and BOM import nesting.
const maxLineage = 32

// Loader fetches raw POMs for parents and imported BOMs. Coordinates passed
// to LoadProject always have type "pom".
type Loader interface {
	LoadProject(ctx context.Context, c coord.Coordinate) (*Project, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, c coord.Coordinate) (*Project, error)

// LoadProject calls f.
func (f LoaderFunc) LoadProject(ctx context.Context, c coord.Coordinate) (*Project, error) {
	return f(ctx, c)
}

// Model is the effective view of a project after inheritance,
// interpolation and dependency management.
type Model struct {
	Coordinate   coord.Coordinate
	Packaging    string
	Properties   map[string]string
	Managed      []coord.Dependency
	Dependencies []coord.Dependency
}

// Builder computes effective models. The zero value can only build
// projects without parents or imports.
type Builder struct {
	Loader Loader
	Logger *log.Logger
}

// NewBuilder returns a Builder that loads parents and BOMs through l.
func NewBuilder(l Loader, logger *log.Logger) *Builder {
	return &Builder{Loader: l, Logger: logger}
}

func (b *Builder) logger() *log.Logger {
	if b.Logger == nil {
		return log.New(io.Discard)
	}
	return b.Logger
}

// Build returns the effective model of p.
func (b *Builder) Build(ctx context.Context, p *Project) (*Model, error) {
	return b.build(ctx, p, map[coord.Key]bool{})
}

func (b *Builder) build(ctx context.Context, p *Project, importing map[coord.Key]bool) (*Model, error) {
	lineage, err := b.lineage(ctx, p)
	if err != nil {
		return nil, err
	}

	self := p.Coordinate()
	props := map[string]string{}
	var managed, declared []Dependency

	// Oldest ancestor first so descendants override.
	for i := len(lineage) - 1; i >= 0; i-- {
		anc := lineage[i]
		for k, v := range anc.Properties {
			props[k] = v
		}
		if anc.DependencyManagement != nil {
			managed = mergeDependencies(anc.DependencyManagement.Dependencies, managed)
		}
		declared = mergeDependencies(anc.Dependencies, declared)
	}
	addBuiltins(props, p)

	for i := range managed {
		managed[i] = interpolateDependency(managed[i], props)
	}
	for i := range declared {
		declared[i] = interpolateDependency(declared[i], props)
	}

	managed, err = b.importBOMs(ctx, self, managed, importing)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Coordinate: coord.Coordinate{
			GroupID:    interpolate(self.GroupID, props),
			ArtifactID: interpolate(self.ArtifactID, props),
			Version:    interpolate(self.Version, props),
			Type:       self.Type,
		},
		Packaging:  self.Type,
		Properties: props,
	}

	index := make(map[coord.Key]Dependency, len(managed))
	for _, d := range managed {
		index[d.key()] = d
		if cd, err := toDependency(d, true); err == nil {
			m.Managed = append(m.Managed, cd)
		}
	}

	for _, d := range declared {
		if md, ok := index[d.key()]; ok {
			d = applyManagement(d, md)
		}
		cd, err := toDependency(d, false)
		if err != nil {
			// Unbuildable test, provided or optional entries never reach a
			// consumer's classpath.
			if !transitiveCandidate(d) {
				b.logger().Debug("skipping dependency", "project", m.Coordinate, "dependency", d.GroupID+":"+d.ArtifactID, "err", err)
				continue
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "project %s", m.Coordinate)
		}
		m.Dependencies = append(m.Dependencies, cd)
	}
	return m, nil
}

// lineage returns p followed by its ancestors, nearest first.
func (b *Builder) lineage(ctx context.Context, p *Project) ([]*Project, error) {
	chain := []*Project{p}
	seen := map[string]bool{p.Coordinate().GA(): true}
	cur := p
	for cur.Parent != nil {
		if len(chain) > maxLineage {
			return nil, errors.New(errors.ErrCodeInvalidInput, "parent chain of %s too deep", p.Coordinate())
		}
		pc := cur.Parent.Coordinate()
		if seen[pc.GA()] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "parent cycle at %s", pc)
		}
		seen[pc.GA()] = true
		if b.Loader == nil {
			return nil, errors.New(errors.ErrCodeMetadataNotFound, "no loader for parent %s", pc)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parent, err := b.Loader.LoadProject(ctx, pc)
		if err != nil {
			return nil, fmt.Errorf("parent %s: %w", pc, err)
		}
		chain = append(chain, parent)
		cur = parent
	}
	return chain, nil
}

// importBOMs replaces import-scoped entries with the managed dependencies of
// the referenced BOMs. Entries already managed locally win over imported
// ones, and earlier imports win over later ones.
func (b *Builder) importBOMs(ctx context.Context, self coord.Coordinate, managed []Dependency, importing map[coord.Key]bool) ([]Dependency, error) {
	var (
		out     []Dependency
		imports []Dependency
	)
	for _, d := range managed {
		if strings.EqualFold(d.Scope, string(coord.ScopeImport)) && d.Type == "pom" {
			imports = append(imports, d)
			continue
		}
		out = append(out, d)
	}
	if len(imports) == 0 {
		return out, nil
	}

	have := make(map[coord.Key]bool, len(out))
	for _, d := range out {
		have[d.key()] = true
	}
	if len(importing) > maxLineage {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bom imports of %s nested too deep", self)
	}
	for _, imp := range imports {
		bc := coord.Coordinate{GroupID: imp.GroupID, ArtifactID: imp.ArtifactID, Type: "pom", Version: imp.Version}
		if importing[bc.Key()] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "bom import cycle at %s", bc)
		}
		if b.Loader == nil {
			return nil, errors.New(errors.ErrCodeMetadataNotFound, "no loader for bom %s", bc)
		}
		raw, err := b.Loader.LoadProject(ctx, bc)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", bc, err)
		}
		importing[bc.Key()] = true
		bom, err := b.build(ctx, raw, importing)
		delete(importing, bc.Key())
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", bc, err)
		}
		for _, md := range bom.Managed {
			k := md.Key()
			if have[k] {
				continue
			}
			have[k] = true
			out = append(out, fromDependency(md))
		}
	}
	return out, nil
}

// mergeDependencies overlays child on inherited: entries of child come
// first, inherited entries follow unless child redeclares them.
func mergeDependencies(child, inherited []Dependency) []Dependency {
	out := make([]Dependency, 0, len(child)+len(inherited))
	seen := make(map[coord.Key]bool, len(child))
	for _, d := range child {
		seen[d.key()] = true
		out = append(out, d)
	}
	for _, d := range inherited {
		if !seen[d.key()] {
			out = append(out, d)
		}
	}
	return out
}

func addBuiltins(props map[string]string, p *Project) {
	c := p.Coordinate()
	for _, prefix := range []string{"project.", "pom.", ""} {
		props[prefix+"groupId"] = c.GroupID
		props[prefix+"artifactId"] = c.ArtifactID
		props[prefix+"version"] = c.Version
	}
	props["project.packaging"] = c.Type
	if p.Parent != nil {
		for _, prefix := range []string{"project.parent.", "parent."} {
			props[prefix+"groupId"] = p.Parent.GroupID
			props[prefix+"artifactId"] = p.Parent.ArtifactID
			props[prefix+"version"] = p.Parent.Version
		}
	}
}

func interpolateDependency(d Dependency, props map[string]string) Dependency {
	d.GroupID = interpolate(d.GroupID, props)
	d.ArtifactID = interpolate(d.ArtifactID, props)
	d.Version = interpolate(d.Version, props)
	d.Type = interpolate(d.Type, props)
	d.Classifier = interpolate(d.Classifier, props)
	d.Scope = interpolate(d.Scope, props)
	d.Optional = interpolate(d.Optional, props)
	if len(d.Exclusions) > 0 {
		ex := make([]Exclusion, len(d.Exclusions))
		for i, e := range d.Exclusions {
			ex[i] = Exclusion{GroupID: interpolate(e.GroupID, props), ArtifactID: interpolate(e.ArtifactID, props)}
		}
		d.Exclusions = ex
	}
	return d
}

func applyManagement(d, managed Dependency) Dependency {
	if d.Version == "" {
		d.Version = managed.Version
	}
	if d.Scope == "" {
		d.Scope = managed.Scope
	}
	if d.Optional == "" {
		d.Optional = managed.Optional
	}
	if len(d.Exclusions) == 0 {
		d.Exclusions = managed.Exclusions
	}
	return d
}

func transitiveCandidate(d Dependency) bool {
	if strings.TrimSpace(d.Optional) == "true" {
		return false
	}
	sc, err := coord.ParseScope(d.Scope)
	return err != nil || sc.Transitive()
}

// toDependency converts an XML dependency. Managed entries may use the
// import scope.
func toDependency(d Dependency, managed bool) (coord.Dependency, error) {
	c := coord.Coordinate{
		GroupID:    d.GroupID,
		ArtifactID: d.ArtifactID,
		Type:       d.Type,
		Classifier: d.Classifier,
		Version:    d.Version,
	}
	if c.Type == "" {
		c.Type = coord.DefaultType
	}
	for _, s := range []string{c.GroupID, c.ArtifactID, c.Type, c.Classifier, c.Version} {
		if unresolved(s) {
			return coord.Dependency{}, errors.New(errors.ErrCodeMalformedNotation, "unresolved expression %q in %s:%s", s, d.GroupID, d.ArtifactID)
		}
	}
	if c.Version == "" {
		return coord.Dependency{}, errors.New(errors.ErrCodeMalformedNotation, "no version for %s:%s", d.GroupID, d.ArtifactID)
	}
	if err := c.Validate(); err != nil {
		return coord.Dependency{}, err
	}
	sc, err := coord.ParseScope(d.Scope)
	if err != nil {
		return coord.Dependency{}, err
	}
	if sc == coord.ScopeImport && !managed {
		return coord.Dependency{}, errors.New(errors.ErrCodeMalformedNotation, "import scope outside dependencyManagement for %s", c)
	}

	out := coord.Dependency{
		Coordinate: c,
		Scope:      sc,
		Optional:   strings.TrimSpace(d.Optional) == "true",
	}
	for _, e := range d.Exclusions {
		ex, err := coord.ParseExclusion(e.GroupID + ":" + e.ArtifactID)
		if err != nil {
			return coord.Dependency{}, err
		}
		out.Exclusions = append(out.Exclusions, ex)
	}
	return out, nil
}

func fromDependency(d coord.Dependency) Dependency {
	out := Dependency{
		GroupID:    d.GroupID,
		ArtifactID: d.ArtifactID,
		Version:    d.Version,
		Classifier: d.Classifier,
		Scope:      string(d.Scope),
	}
	if d.Type != coord.DefaultType {
		out.Type = d.Type
	}
	if d.Optional {
		out.Optional = "true"
	}
	for _, e := range d.Exclusions {
		out.Exclusions = append(out.Exclusions, Exclusion{GroupID: e.GroupID, ArtifactID: e.ArtifactID})
	}
	return out
}
