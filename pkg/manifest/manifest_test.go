package manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/pom"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func notations(deps []coord.Dependency) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = d.String()
	}
	return out
}

func TestDetect(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "/src/app/pom.xml", want: FormatPOM},
		{path: "lib-1.0.pom", want: FormatPOM},
		{path: "deps.yaml", want: FormatYAML},
		{path: "DEPS.YML", want: FormatYAML},
		{path: "build.gradle", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Detect(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Detect(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "deps.yaml", `
project: com.acme:app:1.0
repositories:
  - https://repo.maven.apache.org/maven2
  - id: internal
    url: https://maven.acme.com/releases
dependencies:
  - org.slf4j:slf4j-api:2.0.9
  - junit:junit:4.13.2: test
  - com.acme:native:so:linux:1.0: runtime
managed:
  - com.google.guava:guava:33.0.0-jre
`)
	m, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Format != FormatYAML {
		t.Errorf("Format = %q", m.Format)
	}
	if got := m.Project.String(); got != "com.acme:app:1.0" {
		t.Errorf("Project = %s", got)
	}
	wantDeps := []string{
		"org.slf4j:slf4j-api:2.0.9 (compile)",
		"junit:junit:4.13.2 (test)",
		"com.acme:native:so:linux:1.0 (runtime)",
	}
	if diff := cmp.Diff(wantDeps, notations(m.Dependencies)); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"com.google.guava:guava:33.0.0-jre (compile)"}, notations(m.Managed)); diff != "" {
		t.Errorf("managed mismatch (-want +got):\n%s", diff)
	}
	wantRepos := []Repository{
		{URL: "https://repo.maven.apache.org/maven2"},
		{ID: "internal", URL: "https://maven.acme.com/releases"},
	}
	if diff := cmp.Diff(wantRepos, m.Repositories); diff != "" {
		t.Errorf("repositories mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAMLEmpty(t *testing.T) {
	m, err := Load(context.Background(), writeFile(t, "deps.yml", ""), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Dependencies) != 0 || m.Project != (coord.Coordinate{}) {
		t.Errorf("expected empty manifest, got %+v", m)
	}
}

func TestLoadYAMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"bad notation", "dependencies:\n  - just-a-name\n", errors.ErrCodeMalformedNotation},
		{"bad scope", "dependencies:\n  - g:a:1.0: everywhere\n", errors.ErrCodeMalformedNotation},
		{"two entry mapping", "dependencies:\n  - g:a:1.0: test\n    g:b:1.0: test\n", errors.ErrCodeMalformedNotation},
		{"bad project", "project: nope\n", errors.ErrCodeMalformedNotation},
		{"bad repository", "repositories:\n  - ftp://mirror\n", errors.ErrCodeInvalidInput},
		{"unknown field", "dependency:\n  - g:a:1.0\n", errors.ErrCodeInvalidInput},
		{"not yaml", "dependencies: [\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), strings.NewReader(tt.content), FormatYAML, nil)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

const appPOM = `<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.acme</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
  <properties>
    <slf4j.version>2.0.9</slf4j.version>
  </properties>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>com.google.guava</groupId>
        <artifactId>guava</artifactId>
        <version>33.0.0-jre</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
  <dependencies>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
      <version>${slf4j.version}</version>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.13.2</version>
      <scope>test</scope>
    </dependency>
  </dependencies>
</project>`

func TestLoadPOM(t *testing.T) {
	m, err := Load(context.Background(), writeFile(t, "pom.xml", appPOM), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Format != FormatPOM {
		t.Errorf("Format = %q", m.Format)
	}
	if got := m.Project.String(); got != "com.acme:app:1.0" {
		t.Errorf("Project = %s", got)
	}
	wantDeps := []string{"org.slf4j:slf4j-api:2.0.9 (compile)", "junit:junit:4.13.2 (test)"}
	if diff := cmp.Diff(wantDeps, notations(m.Dependencies)); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"com.google.guava:guava:33.0.0-jre (compile)"}, notations(m.Managed)); diff != "" {
		t.Errorf("managed mismatch (-want +got):\n%s", diff)
	}
}

const childPOM = `<project>
  <parent>
    <groupId>com.acme</groupId>
    <artifactId>parent</artifactId>
    <version>3</version>
  </parent>
  <artifactId>child</artifactId>
  <dependencies>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
    </dependency>
  </dependencies>
</project>`

const parentPOM = `<project>
  <groupId>com.acme</groupId>
  <artifactId>parent</artifactId>
  <version>3</version>
  <packaging>pom</packaging>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.slf4j</groupId>
        <artifactId>slf4j-api</artifactId>
        <version>1.7.36</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

func TestLoadPOMWithParent(t *testing.T) {
	path := writeFile(t, "pom.xml", childPOM)

	if _, err := Load(context.Background(), path, nil); err == nil {
		t.Fatal("expected an error without a loader")
	}

	var asked []string
	loader := pom.LoaderFunc(func(_ context.Context, c coord.Coordinate) (*pom.Project, error) {
		asked = append(asked, c.String())
		return pom.Parse(strings.NewReader(parentPOM))
	})
	m, err := Load(context.Background(), path, loader)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := m.Project.String(); got != "com.acme:child:3" {
		t.Errorf("Project = %s", got)
	}
	if diff := cmp.Diff([]string{"org.slf4j:slf4j-api:1.7.36 (compile)"}, notations(m.Dependencies)); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"com.acme:parent:pom:3"}, asked); diff != "" {
		t.Errorf("loader calls mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "pom.xml"), nil); !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("missing file: error = %v, want IO_ERROR", err)
	}
	if _, err := Load(context.Background(), writeFile(t, "build.sbt", ""), nil); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("unknown format: error = %v, want UNSUPPORTED", err)
	}
}

func TestLoadExamples(t *testing.T) {
	want := map[string]string{
		"com.fasterxml.jackson.core:jackson-databind:2.16.1": "compile",
		"org.postgresql:postgresql:42.7.1":                   "runtime",
		"org.junit.jupiter:junit-jupiter:5.10.1":             "test",
	}
	for _, name := range []string{"deps.yaml", "pom.xml"} {
		t.Run(name, func(t *testing.T) {
			m, err := Load(context.Background(), filepath.Join("..", "..", "examples", name), nil)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := m.Project.String(); got != "com.acme:inventory:1.4.0" {
				t.Errorf("project = %s", got)
			}
			got := make(map[string]string)
			for _, d := range m.Dependencies {
				got[d.Coordinate.String()] = string(d.Scope)
			}
			for notation, scope := range want {
				if got[notation] != scope {
					t.Errorf("%s scope = %q, want %q", notation, got[notation], scope)
				}
			}
			if len(m.Managed) != 1 || m.Managed[0].Coordinate.String() != "com.fasterxml.jackson.core:jackson-core:2.16.1" {
				t.Errorf("managed = %v", m.Managed)
			}
		})
	}
}
