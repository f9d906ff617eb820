package coord

import (
	"strings"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// DefaultType is the artifact type used when a notation omits it.
const DefaultType = "jar"

// Coordinate identifies one artifact in a Maven repository.
//
// Coordinate is an immutable value; methods return modified copies.
// Version may be a concrete version, a range such as "[1.0,2.0)" or a
// snapshot marker such as "1.0-SNAPSHOT".
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Type       string // packaging type, "jar" when unset
	Classifier string // optional
	Version    string
}

// Key is the identity of a coordinate: everything except the version.
// It is comparable and suitable as a map key.
type Key struct {
	GroupID    string
	ArtifactID string
	Type       string
	Classifier string
}

// String renders the key as groupId:artifactId[:type[:classifier]].
func (k Key) String() string {
	s := k.GroupID + ":" + k.ArtifactID
	if k.Type != DefaultType || k.Classifier != "" {
		s += ":" + k.Type
	}
	if k.Classifier != "" {
		s += ":" + k.Classifier
	}
	return s
}

// Parse parses a notation string into a Coordinate.
//
// Accepted forms have three to five colon-delimited fields; see the package
// documentation for the grammar. Parse has no side effects.
func Parse(notation string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(notation), ":")

	var c Coordinate
	switch len(parts) {
	case 3:
		c = Coordinate{GroupID: parts[0], ArtifactID: parts[1], Type: DefaultType, Version: parts[2]}
	case 4:
		c = Coordinate{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Version: parts[3]}
	case 5:
		c = Coordinate{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Classifier: parts[3], Version: parts[4]}
	default:
		return Coordinate{}, errors.New(errors.ErrCodeMalformedNotation,
			"invalid coordinate %q (expected groupId:artifactId[:type[:classifier]]:version)", notation)
	}

	// Type and classifier may be zero in a struct but never blank in notation.
	for _, p := range parts[2 : len(parts)-1] {
		if p == "" {
			return Coordinate{}, errors.New(errors.ErrCodeMalformedNotation, "invalid coordinate %q: empty segment", notation)
		}
	}
	if err := c.Validate(); err != nil {
		return Coordinate{}, errors.Wrap(errors.ErrCodeMalformedNotation, err, "invalid coordinate %q", notation)
	}
	return c, nil
}

// MustParse is like Parse but panics on malformed input.
// It is intended for tests and package-level literals.
func MustParse(notation string) Coordinate {
	c, err := Parse(notation)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks that every present segment is well formed.
func (c Coordinate) Validate() error {
	if err := errors.ValidateSegment("groupId", c.GroupID); err != nil {
		return err
	}
	if err := errors.ValidateSegment("artifactId", c.ArtifactID); err != nil {
		return err
	}
	if err := errors.ValidateSegment("type", c.typ()); err != nil {
		return err
	}
	if c.Classifier != "" {
		if err := errors.ValidateSegment("classifier", c.Classifier); err != nil {
			return err
		}
	}
	return errors.ValidateSegment("version", c.Version)
}

// Key returns the version-less identity of the coordinate.
func (c Coordinate) Key() Key {
	return Key{GroupID: c.GroupID, ArtifactID: c.ArtifactID, Type: c.typ(), Classifier: c.Classifier}
}

// SameArtifact reports whether c and o share an identity.
func (c Coordinate) SameArtifact(o Coordinate) bool {
	return c.Key() == o.Key()
}

// GA returns "groupId:artifactId", the form used by exclusions.
func (c Coordinate) GA() string {
	return c.GroupID + ":" + c.ArtifactID
}

// WithVersion returns a copy of c with the version replaced.
func (c Coordinate) WithVersion(v string) Coordinate {
	c.Version = v
	return c
}

// WithType returns a copy of c with the type replaced and the classifier
// cleared. It is used to address the descriptor (type "pom") of an artifact.
func (c Coordinate) WithType(typ string) Coordinate {
	c.Type = typ
	c.Classifier = ""
	return c
}

// String returns the shortest notation that parses back to c:
// "g:a:v" for plain jars, "g:a:type:v" for other types and
// "g:a:type:classifier:v" when a classifier is set.
func (c Coordinate) String() string {
	switch {
	case c.Classifier != "":
		return c.GroupID + ":" + c.ArtifactID + ":" + c.typ() + ":" + c.Classifier + ":" + c.Version
	case c.typ() != DefaultType:
		return c.GroupID + ":" + c.ArtifactID + ":" + c.typ() + ":" + c.Version
	default:
		return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
	}
}

// Extension returns the file extension used to store the artifact.
// Types registered by Maven's default artifact handlers map to "jar";
// any other type is used verbatim.
func (c Coordinate) Extension() string {
	if h, ok := handlers[c.typ()]; ok {
		return h.extension
	}
	return c.typ()
}

// FileClassifier returns the classifier that appears in the file name.
// An explicit classifier wins; otherwise types such as "test-jar" imply one.
func (c Coordinate) FileClassifier() string {
	if c.Classifier != "" {
		return c.Classifier
	}
	if h, ok := handlers[c.typ()]; ok {
		return h.classifier
	}
	return ""
}

func (c Coordinate) typ() string {
	if c.Type == "" {
		return DefaultType
	}
	return c.Type
}

type handler struct {
	extension  string
	classifier string
}

// handlers mirrors Maven's built-in artifact handlers for types whose
// extension differs from the type name.
var handlers = map[string]handler{
	"test-jar":     {extension: "jar", classifier: "tests"},
	"maven-plugin": {extension: "jar"},
	"ejb":          {extension: "jar"},
	"ejb-client":   {extension: "jar", classifier: "client"},
	"bundle":       {extension: "jar"},
	"java-source":  {extension: "jar", classifier: "sources"},
	"javadoc":      {extension: "jar", classifier: "javadoc"},
}
