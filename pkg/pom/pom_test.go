package pom

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
)

const parentPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.example</groupId>
  <artifactId>parent</artifactId>
  <version>2.0</version>
  <packaging>pom</packaging>
  <properties>
    <slf4j.version>1.7.36</slf4j.version>
    <junit.version>4.13.2</junit.version>
  </properties>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.slf4j</groupId>
        <artifactId>slf4j-api</artifactId>
        <version>${slf4j.version}</version>
      </dependency>
      <dependency>
        <groupId>junit</groupId>
        <artifactId>junit</artifactId>
        <version>${junit.version}</version>
        <scope>test</scope>
      </dependency>
      <dependency>
        <groupId>com.example</groupId>
        <artifactId>bom</artifactId>
        <version>1.0</version>
        <type>pom</type>
        <scope>import</scope>
      </dependency>
    </dependencies>
  </dependencyManagement>
  <dependencies>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
    </dependency>
  </dependencies>
</project>`

const bomPOM = `<project>
  <groupId>com.example</groupId>
  <artifactId>bom</artifactId>
  <version>1.0</version>
  <packaging>pom</packaging>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>com.google.guava</groupId>
        <artifactId>guava</artifactId>
        <version>32.1.3-jre</version>
        <exclusions>
          <exclusion><groupId>com.google.code.findbugs</groupId><artifactId>*</artifactId></exclusion>
        </exclusions>
      </dependency>
      <dependency>
        <groupId>org.slf4j</groupId>
        <artifactId>slf4j-api</artifactId>
        <version>2.0.9</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

const childPOM = `<project>
  <parent>
    <groupId>com.example</groupId>
    <artifactId>parent</artifactId>
    <version>2.0</version>
  </parent>
  <artifactId>app</artifactId>
  <properties>
    <junit.version>4.12</junit.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
    </dependency>
    <dependency>
      <groupId>${project.groupId}</groupId>
      <artifactId>core</artifactId>
      <version>${project.version}</version>
      <classifier>tests</classifier>
      <type>test-jar</type>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
    </dependency>
    <dependency>
      <groupId>org.example</groupId>
      <artifactId>broken</artifactId>
      <version>${missing.version}</version>
      <optional>true</optional>
    </dependency>
  </dependencies>
</project>`

func mustParse(t *testing.T, s string) *Project {
	t.Helper()
	p, err := Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return p
}

func testLoader(t *testing.T, poms map[string]string) Loader {
	return LoaderFunc(func(_ context.Context, c coord.Coordinate) (*Project, error) {
		s, ok := poms[c.String()]
		if !ok {
			return nil, errors.New(errors.ErrCodeMetadataNotFound, "no pom for %s", c)
		}
		return mustParse(t, s), nil
	})
}

func TestParse(t *testing.T) {
	p := mustParse(t, childPOM)
	if got := p.Coordinate().String(); got != "com.example:app:2.0" {
		t.Errorf("Coordinate() = %q, want com.example:app:2.0", got)
	}
	if p.Properties["junit.version"] != "4.12" {
		t.Errorf("Properties = %v", p.Properties)
	}
	if len(p.Dependencies) != 4 {
		t.Fatalf("len(Dependencies) = %d, want 4", len(p.Dependencies))
	}
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{"", "<project>", "<project><groupId>g</groupId></project>"} {
		if _, err := Parse(strings.NewReader(s)); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Parse(%q) error = %v, want INVALID_INPUT", s, err)
		}
	}
}

func TestBuildEffectiveModel(t *testing.T) {
	loader := testLoader(t, map[string]string{
		"com.example:parent:pom:2.0": parentPOM,
		"com.example:bom:pom:1.0":    bomPOM,
	})
	m, err := NewBuilder(loader, nil).Build(context.Background(), mustParse(t, childPOM))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	var got []string
	for _, d := range m.Dependencies {
		got = append(got, d.String())
	}
	want := []string{
		"com.google.guava:guava:32.1.3-jre (compile)",
		"com.example:core:test-jar:tests:2.0 (compile)",
		"junit:junit:4.12 (test)",
		"org.slf4j:slf4j-api:1.7.36 (compile)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dependencies mismatch (-want +got):\n%s", diff)
	}

	guava := m.Dependencies[0]
	if len(guava.Exclusions) != 1 || guava.Exclusions[0].String() != "com.google.code.findbugs:*" {
		t.Errorf("guava exclusions = %v, want managed exclusion", guava.Exclusions)
	}
}

func TestBuildWithoutLoader(t *testing.T) {
	_, err := (&Builder{}).Build(context.Background(), mustParse(t, childPOM))
	if !errors.Is(err, errors.ErrCodeMetadataNotFound) {
		t.Errorf("Build() error = %v, want METADATA_NOT_FOUND", err)
	}
}

func TestBuildParentCycle(t *testing.T) {
	a := `<project><parent><groupId>g</groupId><artifactId>b</artifactId><version>1</version></parent><artifactId>a</artifactId></project>`
	b := `<project><parent><groupId>g</groupId><artifactId>a</artifactId><version>1</version></parent><artifactId>b</artifactId></project>`
	loader := testLoader(t, map[string]string{"g:a:pom:1": a, "g:b:pom:1": b})
	_, err := NewBuilder(loader, nil).Build(context.Background(), mustParse(t, a))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Build() error = %v, want INVALID_INPUT", err)
	}
}

func TestBuildMissingVersion(t *testing.T) {
	p := `<project><groupId>g</groupId><artifactId>a</artifactId><version>1</version>
<dependencies><dependency><groupId>x</groupId><artifactId>y</artifactId></dependency></dependencies></project>`
	_, err := (&Builder{}).Build(context.Background(), mustParse(t, p))
	if err == nil {
		t.Fatal("Build() should fail for a compile dependency without version")
	}
}

func TestInterpolate(t *testing.T) {
	props := map[string]string{"a": "${b}", "b": "B", "loop": "${loop}"}
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"${a}-x", "B-x"},
		{"${missing}", "${missing}"},
		{"${loop}", "${loop}"},
		{"${b", "${b"},
	}
	for _, tt := range tests {
		if got := interpolate(tt.in, props); got != tt.want {
			t.Errorf("interpolate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWrite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "pom.xml")
	deps := []coord.Dependency{
		{Coordinate: coord.MustParse("org.slf4j:slf4j-api:2.0.9"), Scope: coord.ScopeCompile},
		{Coordinate: coord.MustParse("junit:junit:4.13.2"), Scope: coord.ScopeTest},
		{Coordinate: coord.MustParse("org.lwjgl:lwjgl:jar:natives-linux:3.3.3"), Scope: coord.ScopeRuntime},
	}
	project := coord.MustParse("com.example:app:1.0")
	if err := Write(project, deps, out); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	p, err := ParseFile(out)
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if p.Xmlns != Namespace || p.ModelVersion != "4.0.0" {
		t.Errorf("header = %q %q", p.Xmlns, p.ModelVersion)
	}
	m, err := (&Builder{}).Build(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if m.Coordinate.String() != "com.example:app:1.0" {
		t.Errorf("project = %s", m.Coordinate)
	}
	if diff := cmp.Diff(deps, m.Dependencies); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if p.Dependencies[0].Scope != "" || p.Dependencies[0].Type != "" {
		t.Errorf("compile jar dependency should omit scope and type: %+v", p.Dependencies[0])
	}
}

func TestWriteUnwritable(t *testing.T) {
	dir := t.TempDir()
	err := Write(coord.MustParse("g:a:1"), nil, dir)
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("Write() to a directory error = %v, want IO_ERROR", err)
	}
}
