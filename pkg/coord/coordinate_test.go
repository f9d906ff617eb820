package coord

import (
	"testing"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		notation string
		want     Coordinate
	}{
		{"com.acme:core:1.0", Coordinate{GroupID: "com.acme", ArtifactID: "core", Type: "jar", Version: "1.0"}},
		{"com.acme:core:war:1.0", Coordinate{GroupID: "com.acme", ArtifactID: "core", Type: "war", Version: "1.0"}},
		{"com.acme:core:jar:jdk8:1.0", Coordinate{GroupID: "com.acme", ArtifactID: "core", Type: "jar", Classifier: "jdk8", Version: "1.0"}},
		{"com.acme:core:[1.0,2.0)", Coordinate{GroupID: "com.acme", ArtifactID: "core", Type: "jar", Version: "[1.0,2.0)"}},
		{"com.acme:core:1.0-SNAPSHOT", Coordinate{GroupID: "com.acme", ArtifactID: "core", Type: "jar", Version: "1.0-SNAPSHOT"}},
		{"  com.acme:core:1.0  ", Coordinate{GroupID: "com.acme", ArtifactID: "core", Type: "jar", Version: "1.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.notation, func(t *testing.T) {
			got, err := Parse(tt.notation)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.notation, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.notation, got, tt.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []string{
		"",
		"com.acme",
		"com.acme:core",
		"com.acme:core:jar:jdk8:extra:1.0",
		":core:1.0",
		"com.acme::1.0",
		"com.acme:core:",
		"com.acme:core::1.0",
		"com.acme:core:jar::1.0",
		"com acme:core:1.0",
		"com.acme:../core:1.0",
	}

	for _, notation := range tests {
		t.Run(notation, func(t *testing.T) {
			_, err := Parse(notation)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", notation)
			}
			if !errors.Is(err, errors.ErrCodeMalformedNotation) {
				t.Errorf("Parse(%q) code = %v, want %v", notation, errors.GetCode(err), errors.ErrCodeMalformedNotation)
			}
		})
	}
}

func TestCoordinate_StringRoundTrip(t *testing.T) {
	tests := []struct {
		notation string
		want     string
	}{
		{"com.acme:core:1.0", "com.acme:core:1.0"},
		{"com.acme:core:jar:1.0", "com.acme:core:1.0"},
		{"com.acme:core:pom:1.0", "com.acme:core:pom:1.0"},
		{"com.acme:core:jar:sources:1.0", "com.acme:core:jar:sources:1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.notation, func(t *testing.T) {
			c := MustParse(tt.notation)
			if got := c.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			back := MustParse(c.String())
			if back != c {
				t.Errorf("round trip = %+v, want %+v", back, c)
			}
		})
	}
}

func TestCoordinate_Key(t *testing.T) {
	a := MustParse("com.acme:core:1.0")
	b := MustParse("com.acme:core:jar:2.0")
	c := MustParse("com.acme:core:jar:tests:1.0")
	d := Coordinate{GroupID: "com.acme", ArtifactID: "core", Version: "3.0"}

	if a.Key() != b.Key() {
		t.Error("version must not participate in identity")
	}
	if a.Key() == c.Key() {
		t.Error("classifier must participate in identity")
	}
	if a.Key() != d.Key() {
		t.Error("empty type must behave as jar")
	}
	if !a.SameArtifact(b) {
		t.Error("SameArtifact should ignore version")
	}
	if got := c.Key().String(); got != "com.acme:core:jar:tests" {
		t.Errorf("Key().String() = %q", got)
	}
}

func TestCoordinate_Extension(t *testing.T) {
	tests := []struct {
		notation       string
		wantExt        string
		wantClassifier string
	}{
		{"g:a:1", "jar", ""},
		{"g:a:pom:1", "pom", ""},
		{"g:a:war:1", "war", ""},
		{"g:a:test-jar:1", "jar", "tests"},
		{"g:a:bundle:1", "jar", ""},
		{"g:a:test-jar:custom:1", "jar", "custom"},
	}
	for _, tt := range tests {
		t.Run(tt.notation, func(t *testing.T) {
			c := MustParse(tt.notation)
			if got := c.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}
			if got := c.FileClassifier(); got != tt.wantClassifier {
				t.Errorf("FileClassifier() = %q, want %q", got, tt.wantClassifier)
			}
		})
	}
}

func TestCoordinate_WithType(t *testing.T) {
	c := MustParse("g:a:jar:sources:1.0")
	pom := c.WithType("pom")
	if pom.Type != "pom" || pom.Classifier != "" || pom.Version != "1.0" {
		t.Errorf("WithType(pom) = %+v", pom)
	}
	if c.Classifier != "sources" {
		t.Error("WithType must not modify the receiver")
	}
}
