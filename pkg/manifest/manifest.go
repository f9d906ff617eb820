package manifest

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/pom"
)

// Format names a manifest syntax.
type Format string

const (
	FormatPOM  Format = "pom"
	FormatYAML Format = "yaml"
)

// Manifest is a parsed dependency manifest.
type Manifest struct {
	Format Format

	// Project is the declaring project, zero when the manifest names none.
	Project coord.Coordinate

	// Dependencies are the roots of a resolution, in declaration order.
	Dependencies []coord.Dependency

	// Managed pins versions of transitive dependencies.
	Managed []coord.Dependency

	Repositories []Repository
}

// Repository is a remote repository declared by a manifest.
type Repository struct {
	ID  string `yaml:"id"`
	URL string `yaml:"url"`
}

// UnmarshalYAML accepts either a bare URL or an {id, url} mapping.
func (r *Repository) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		r.URL = n.Value
		return nil
	}
	type plain Repository
	return n.Decode((*plain)(r))
}

// Detect returns the format of the manifest at path.
func Detect(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case name == "pom.xml", strings.HasSuffix(name, ".pom"):
		return FormatPOM, nil
	case strings.HasSuffix(name, ".yaml"), strings.HasSuffix(name, ".yml"):
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported manifest: %s", filepath.Base(path))
}

// Load reads the manifest at path. l resolves parents and imported BOMs of
// POM manifests and may be nil when the POM has neither.
func Load(ctx context.Context, path string, l pom.Loader) (*Manifest, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read manifest")
	}
	return Parse(ctx, bytes.NewReader(data), format, l)
}

// Parse reads a manifest of the given format from r.
func Parse(ctx context.Context, r io.Reader, format Format, l pom.Loader) (*Manifest, error) {
	switch format {
	case FormatPOM:
		return parsePOM(ctx, r, l)
	case FormatYAML:
		return parseYAML(r)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported manifest format %q", format)
}

func parsePOM(ctx context.Context, r io.Reader, l pom.Loader) (*Manifest, error) {
	p, err := pom.Parse(r)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = pom.LoaderFunc(func(_ context.Context, c coord.Coordinate) (*pom.Project, error) {
			return nil, errors.New(errors.ErrCodeArtifactNotFound, "no repository to load %s", c)
		})
	}
	model, err := pom.NewBuilder(l, nil).Build(ctx, p)
	if err != nil {
		return nil, err
	}
	return &Manifest{
		Format:       FormatPOM,
		Project:      model.Coordinate,
		Dependencies: model.Dependencies,
		Managed:      model.Managed,
	}, nil
}

type document struct {
	Project      string       `yaml:"project"`
	Repositories []Repository `yaml:"repositories"`
	Dependencies []any        `yaml:"dependencies"`
	Managed      []any        `yaml:"managed"`
}

func parseYAML(r io.Reader) (*Manifest, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse manifest")
	}

	m := &Manifest{Format: FormatYAML}
	if doc.Project != "" {
		c, err := coord.Parse(doc.Project)
		if err != nil {
			return nil, err
		}
		m.Project = c
	}
	for i, repo := range doc.Repositories {
		if err := errors.ValidateRepositoryURL(repo.URL); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "repository %d", i)
		}
	}
	m.Repositories = doc.Repositories

	var err error
	if m.Dependencies, err = coord.ParseDependencies(doc.Dependencies); err != nil {
		return nil, err
	}
	if m.Managed, err = coord.ParseDependencies(doc.Managed); err != nil {
		return nil, err
	}
	return m, nil
}
