package repository

import (
	"context"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/pom"
)

// LoadProject fetches and parses the raw POM of c. It implements
// pom.Loader so parents and imported BOMs resolve through the same
// repositories as everything else.
func (m *Manager) LoadProject(ctx context.Context, c coord.Coordinate) (*pom.Project, error) {
	a, err := m.Fetch(ctx, c.WithType("pom"))
	if err != nil {
		return nil, err
	}
	return pom.ParseFile(a.Path)
}

// Descriptor returns the effective POM of c. Results are memoized for the
// configured descriptor TTL; changing the repository list or the local path
// clears the memo.
func (m *Manager) Descriptor(ctx context.Context, c coord.Coordinate) (*pom.Model, error) {
	key := c.WithType("pom").String()
	if model, ok := m.descriptors.Get(key); ok {
		return model, nil
	}
	raw, err := m.LoadProject(ctx, c)
	if err != nil {
		return nil, err
	}
	model, err := m.builder.Build(ctx, raw)
	if err != nil {
		return nil, err
	}
	m.descriptors.Add(key, model)
	return model, nil
}

var _ pom.Loader = (*Manager)(nil)
