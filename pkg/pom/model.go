package pom

import (
	"encoding/xml"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// Namespace is the POM 4.0.0 XML namespace.
const Namespace = "http://maven.apache.org/POM/4.0.0"

// Project is a pom.xml as written, before inheritance and interpolation.
type Project struct {
	XMLName      xml.Name `xml:"project"`
	Xmlns        string   `xml:"xmlns,attr,omitempty"`
	ModelVersion string   `xml:"modelVersion,omitempty"`
	Parent       *Parent  `xml:"parent,omitempty"`
	GroupID      string   `xml:"groupId,omitempty"`
	ArtifactID   string   `xml:"artifactId"`
	Version      string   `xml:"version,omitempty"`
	Packaging    string   `xml:"packaging,omitempty"`
	Name         string   `xml:"name,omitempty"`
	Description  string   `xml:"description,omitempty"`
	URL          string   `xml:"url,omitempty"`

	Properties           Properties            `xml:"properties,omitempty"`
	DependencyManagement *DependencyManagement `xml:"dependencyManagement,omitempty"`
	Dependencies         []Dependency          `xml:"dependencies>dependency,omitempty"`
}

// Parent references the project a POM inherits from.
type Parent struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath,omitempty"`
}

// Coordinate returns the parent POM coordinate.
func (p *Parent) Coordinate() coord.Coordinate {
	return coord.Coordinate{GroupID: p.GroupID, ArtifactID: p.ArtifactID, Type: "pom", Version: p.Version}
}

// DependencyManagement holds version and scope defaults.
type DependencyManagement struct {
	Dependencies []Dependency `xml:"dependencies>dependency,omitempty"`
}

// Dependency is a <dependency> element.
type Dependency struct {
	GroupID    string      `xml:"groupId"`
	ArtifactID string      `xml:"artifactId"`
	Version    string      `xml:"version,omitempty"`
	Type       string      `xml:"type,omitempty"`
	Classifier string      `xml:"classifier,omitempty"`
	Scope      string      `xml:"scope,omitempty"`
	Optional   string      `xml:"optional,omitempty"`
	Exclusions []Exclusion `xml:"exclusions>exclusion,omitempty"`
}

// Exclusion is an <exclusion> element.
type Exclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

func (d Dependency) key() coord.Key {
	return coord.Coordinate{GroupID: d.GroupID, ArtifactID: d.ArtifactID, Type: d.Type, Classifier: d.Classifier}.Key()
}

// Properties is the free-form <properties> section.
type Properties map[string]string

// UnmarshalXML collects every child element as name => text.
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if *p == nil {
		*p = make(Properties)
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			(*p)[t.Name.Local] = strings.TrimSpace(v)
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML writes properties in name order.
func (p Properties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if len(p) == 0 {
		return nil
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, k := range names {
		if err := e.EncodeElement(p[k], xml.StartElement{Name: xml.Name{Local: k}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// Parse decodes a POM document.
func Parse(r io.Reader) (*Project, error) {
	var p Project
	if err := xml.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode pom")
	}
	if p.ArtifactID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "pom has no artifactId")
	}
	return &p, nil
}

// ParseFile reads and decodes the POM at path.
func ParseFile(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Coordinate returns the project's own coordinate, falling back to the
// parent's groupId and version when they are not declared.
func (p *Project) Coordinate() coord.Coordinate {
	c := coord.Coordinate{
		GroupID:    p.GroupID,
		ArtifactID: p.ArtifactID,
		Version:    p.Version,
		Type:       p.Packaging,
	}
	if p.Parent != nil {
		if c.GroupID == "" {
			c.GroupID = p.Parent.GroupID
		}
		if c.Version == "" {
			c.Version = p.Parent.Version
		}
	}
	if c.Type == "" {
		c.Type = coord.DefaultType
	}
	return c
}
