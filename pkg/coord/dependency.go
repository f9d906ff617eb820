package coord

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// Exclusion names a groupId:artifactId pair to prune from a dependency's
// transitive closure. Either field may be "*" to match anything.
type Exclusion struct {
	GroupID    string
	ArtifactID string
}

// ParseExclusion parses "groupId:artifactId".
func ParseExclusion(s string) (Exclusion, error) {
	g, a, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || g == "" || a == "" || strings.Contains(a, ":") {
		return Exclusion{}, errors.New(errors.ErrCodeMalformedNotation, "invalid exclusion %q (expected groupId:artifactId)", s)
	}
	return Exclusion{GroupID: g, ArtifactID: a}, nil
}

// Matches reports whether the exclusion prunes c.
func (e Exclusion) Matches(c Coordinate) bool {
	return (e.GroupID == "*" || e.GroupID == c.GroupID) &&
		(e.ArtifactID == "*" || e.ArtifactID == c.ArtifactID)
}

// String implements fmt.Stringer.
func (e Exclusion) String() string { return e.GroupID + ":" + e.ArtifactID }

// Exclusions is a set of exclusion patterns.
type Exclusions []Exclusion

// Matches reports whether any exclusion in the set prunes c.
func (x Exclusions) Matches(c Coordinate) bool {
	for _, e := range x {
		if e.Matches(c) {
			return true
		}
	}
	return false
}

// Union returns a new set holding the exclusions of x and y without
// duplicates. Neither input is modified.
func (x Exclusions) Union(y Exclusions) Exclusions {
	if len(y) == 0 {
		return x
	}
	if len(x) == 0 {
		return y
	}
	out := slices.Clone(x)
	for _, e := range y {
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}

// Dependency is a coordinate together with how it is used.
type Dependency struct {
	Coordinate
	Scope      Scope
	Optional   bool
	Exclusions Exclusions
}

// NewDependency parses notation and attaches scope. An empty scope means
// compile.
func NewDependency(notation, scope string) (Dependency, error) {
	c, err := Parse(notation)
	if err != nil {
		return Dependency{}, err
	}
	sc, err := ParseScope(scope)
	if err != nil {
		return Dependency{}, err
	}
	if sc == ScopeImport {
		return Dependency{}, errors.New(errors.ErrCodeMalformedNotation, "scope %q is only valid in dependencyManagement", sc)
	}
	return Dependency{Coordinate: c, Scope: sc}, nil
}

// ParseDependency builds a Dependency from a declaration value.
//
// Accepted values:
//   - string: a notation, scope compile
//   - map[string]string or map[string]any with exactly one entry:
//     notation => scope
//   - Dependency: returned unchanged
func ParseDependency(v any) (Dependency, error) {
	switch d := v.(type) {
	case string:
		return NewDependency(d, string(ScopeCompile))
	case Dependency:
		return d, nil
	case map[string]string:
		if len(d) != 1 {
			return Dependency{}, errors.New(errors.ErrCodeMalformedNotation, "dependency mapping must have exactly one entry, got %d", len(d))
		}
		for notation, scope := range d {
			return NewDependency(notation, scope)
		}
	case map[string]any:
		if len(d) != 1 {
			return Dependency{}, errors.New(errors.ErrCodeMalformedNotation, "dependency mapping must have exactly one entry, got %d", len(d))
		}
		for notation, scope := range d {
			s, ok := scope.(string)
			if !ok {
				return Dependency{}, errors.New(errors.ErrCodeMalformedNotation, "scope for %q must be a string, got %T", notation, scope)
			}
			return NewDependency(notation, s)
		}
	}
	return Dependency{}, errors.New(errors.ErrCodeMalformedNotation, "unsupported dependency declaration %T", v)
}

// ParseDependencies applies ParseDependency to every element, preserving
// order. The first malformed entry aborts parsing.
func ParseDependencies(values []any) ([]Dependency, error) {
	out := make([]Dependency, 0, len(values))
	for i, v := range values {
		d, err := ParseDependency(v)
		if err != nil {
			return nil, fmt.Errorf("dependency %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// String renders the dependency as "notation (scope)".
func (d Dependency) String() string {
	scope := d.Scope
	if scope == "" {
		scope = ScopeCompile
	}
	return fmt.Sprintf("%s (%s)", d.Coordinate, scope)
}
