package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/resolve"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds scope and depth to node labels.
	// When false, only the coordinate is shown.
	Detailed bool
}

// ToDOT converts a resolution result to Graphviz DOT format.
// Roots are drawn bold; test and provided artifacts dashed; system
// artifacts grey.
func ToDOT(res *resolve.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for i, a := range res.Artifacts {
		attrs := fmtAttrs(a, fmtLabel(a, opts.Detailed))
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range res.Edges {
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(a resolve.Artifact, detailed bool) string {
	if !detailed {
		return a.Coordinate.String()
	}
	return fmt.Sprintf("%s\nscope: %s\ndepth: %d", a.Coordinate, a.Scope, a.Depth)
}

func fmtAttrs(a resolve.Artifact, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch a.Scope {
	case coord.ScopeTest, coord.ScopeProvided:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	case coord.ScopeSystem:
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	if a.Depth == 0 {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the pt-sized svg element with a pixel-sized one
// so browsers scale the drawing.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
