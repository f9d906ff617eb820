package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/resolve"
)

func artifact(notation string, scope coord.Scope, depth, parent int) resolve.Artifact {
	return resolve.Artifact{
		Dependency: coord.Dependency{Coordinate: coord.MustParse(notation), Scope: scope},
		Depth:      depth,
		Parent:     parent,
	}
}

// sample is app -> (core -> util, junit[test]) plus a second root.
func sample() *resolve.Result {
	return &resolve.Result{
		Artifacts: []resolve.Artifact{
			artifact("com.acme:app:1.0", coord.ScopeCompile, 0, -1),
			artifact("com.acme:tools:2.0", coord.ScopeRuntime, 0, -1),
			artifact("com.acme:core:1.1", coord.ScopeCompile, 1, 0),
			artifact("junit:junit:4.13", coord.ScopeTest, 1, 0),
			artifact("com.acme:util:3.0", coord.ScopeCompile, 2, 2),
		},
		Edges: []resolve.Edge{{From: 0, To: 2}, {From: 0, To: 3}, {From: 2, To: 4}},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		"digraph G {",
		`n0 [label="com.acme:app:1.0", penwidth=2];`,
		`n3 [label="junit:junit:4.13", style="rounded,filled,dashed"];`,
		"n0 -> n2;",
		"n0 -> n3;",
		"n2 -> n4;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "scope:") {
		t.Error("compact DOT should not contain scope labels")
	}
	if got := strings.Count(dot, "->"); got != 3 {
		t.Errorf("edges = %d, want 3", got)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sample(), Options{Detailed: true})
	want := `n4 [label="com.acme:util:3.0\nscope: compile\ndepth: 2"];`
	if !strings.Contains(dot, want) {
		t.Errorf("DOT missing %q\n%s", want, dot)
	}
}

func TestToDOTSystemScope(t *testing.T) {
	res := &resolve.Result{Artifacts: []resolve.Artifact{
		artifact("com.sun:tools:1.8", coord.ScopeSystem, 0, -1),
	}}
	if dot := ToDOT(res, Options{}); !strings.Contains(dot, "fillcolor=lightgrey") {
		t.Errorf("system artifact not greyed:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(&resolve.Result{}, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("malformed empty graph:\n%s", dot)
	}
}

func TestWriteTree(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTree(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"com.acme:app:1.0 (compile)",
		"├── com.acme:core:1.1 (compile)",
		"│   └── com.acme:util:3.0 (compile)",
		"└── junit:junit:4.13 (test)",
		"com.acme:tools:2.0 (runtime)",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestFlat(t *testing.T) {
	got := Flat(sample())
	lines := strings.Split(strings.TrimSpace(got), "\n")
	want := []string{
		"com.acme:app:1.0 (compile)",
		"com.acme:tools:2.0 (runtime)",
		"com.acme:core:1.1 (compile)",
		"junit:junit:4.13 (test)",
		"com.acme:util:3.0 (compile)",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("flat mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(sample(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("com.acme:util:3.0")) {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG("digraph {"); err == nil {
		t.Error("expected error for malformed DOT")
	}
}
