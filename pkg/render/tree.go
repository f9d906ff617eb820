package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/mavenresolve/pkg/resolve"
)

// WriteTree prints res as an indented tree:
//
//	com.acme:core:1.0 (compile)
//	└── com.acme:util:2.0 (compile)
func WriteTree(w io.Writer, res *resolve.Result) error {
	children := make([][]int, len(res.Artifacts))
	for _, e := range res.Edges {
		children[e.From] = append(children[e.From], e.To)
	}
	var walk func(i int, prefix string, last bool, root bool) error
	walk = func(i int, prefix string, last bool, root bool) error {
		branch, next := "", ""
		if !root {
			branch, next = "├── ", "│   "
			if last {
				branch, next = "└── ", "    "
			}
		}
		a := res.Artifacts[i]
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, a.Dependency); err != nil {
			return err
		}
		for n, c := range children[i] {
			if err := walk(c, prefix+next, n == len(children[i])-1, false); err != nil {
				return err
			}
		}
		return nil
	}
	for i, a := range res.Artifacts {
		if a.Parent >= 0 {
			continue
		}
		if err := walk(i, "", true, true); err != nil {
			return err
		}
	}
	return nil
}

// Flat renders one "notation (scope)" line per artifact.
func Flat(res *resolve.Result) string {
	var b strings.Builder
	for _, a := range res.Artifacts {
		b.WriteString(a.Dependency.String())
		b.WriteByte('\n')
	}
	return b.String()
}
