package pom

import (
	"strings"
)

const maxInterpolationDepth = 16

// interpolate replaces ${name} expressions using props. Values may refer to
// other properties; unknown expressions are left in place.
func interpolate(s string, props map[string]string) string {
	for range maxInterpolationDepth {
		if !strings.Contains(s, "${") {
			return s
		}
		next := expand(s, props)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func expand(s string, props map[string]string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		end += start
		name := s[start+2 : end]
		b.WriteString(s[:start])
		if v, ok := props[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(s[start : end+1])
		}
		s = s[end+1:]
	}
}

// unresolved reports whether s still contains an expression.
func unresolved(s string) bool {
	return strings.Contains(s, "${")
}
