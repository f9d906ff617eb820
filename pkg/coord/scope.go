package coord

import (
	"strings"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// Scope is the declared usage phase of a dependency.
type Scope string

// Supported scopes.
const (
	ScopeCompile  Scope = "compile"
	ScopeProvided Scope = "provided"
	ScopeRuntime  Scope = "runtime"
	ScopeTest     Scope = "test"
	ScopeSystem   Scope = "system"
	// ScopeImport only appears inside dependencyManagement sections.
	ScopeImport Scope = "import"
)

// ParseScope converts a scope name to a Scope. An empty string yields
// ScopeCompile. Unknown names are reported as malformed notation.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case "":
		return ScopeCompile, nil
	case ScopeCompile, ScopeProvided, ScopeRuntime, ScopeTest, ScopeSystem, ScopeImport:
		return sc, nil
	default:
		return "", errors.New(errors.ErrCodeMalformedNotation, "unknown scope %q", s)
	}
}

// strength orders scopes by how far they narrow a classpath.
// test > provided > runtime > compile; system sits with provided because
// system artifacts are supplied by the environment.
func (s Scope) strength() int {
	switch s {
	case ScopeRuntime:
		return 1
	case ScopeProvided, ScopeSystem:
		return 2
	case ScopeTest:
		return 3
	default:
		return 0
	}
}

// Narrow returns the effective scope of a dependency declared with scope
// child when it is reached through a parent whose effective scope is s.
// The narrower of the two wins: test or provided anywhere on the path
// restricts the whole subtree, and compile below runtime becomes runtime.
func (s Scope) Narrow(child Scope) Scope {
	if s == "" {
		s = ScopeCompile
	}
	if child == "" {
		child = ScopeCompile
	}
	if child.strength() > s.strength() {
		return child
	}
	if s == ScopeSystem {
		return ScopeProvided
	}
	return s
}

// Transitive reports whether a dependency declared with this scope in
// another artifact's descriptor contributes to that artifact's consumers.
// Only compile and runtime dependencies are inherited transitively.
func (s Scope) Transitive() bool {
	return s == "" || s == ScopeCompile || s == ScopeRuntime
}

// String implements fmt.Stringer.
func (s Scope) String() string { return string(s) }
