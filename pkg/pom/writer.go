package pom

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// Write renders a POM for project with one <dependency> per entry of deps
// and writes it to outputPath. Failures to write are reported as IO_ERROR.
func Write(project coord.Coordinate, deps []coord.Dependency, outputPath string) error {
	data, err := Marshal(project, deps)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", outputPath)
	}
	return nil
}

// Marshal renders the POM document produced by Write.
func Marshal(project coord.Coordinate, deps []coord.Dependency) ([]byte, error) {
	if err := project.Validate(); err != nil {
		return nil, err
	}
	p := Project{
		Xmlns:        Namespace,
		ModelVersion: "4.0.0",
		GroupID:      project.GroupID,
		ArtifactID:   project.ArtifactID,
		Version:      project.Version,
	}
	if project.Type != "" && project.Type != coord.DefaultType {
		p.Packaging = project.Type
	}
	for _, d := range deps {
		pd := fromDependency(d)
		if d.Scope == coord.ScopeCompile {
			pd.Scope = ""
		}
		p.Dependencies = append(p.Dependencies, pd)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(&p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode pom for %s", project)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
