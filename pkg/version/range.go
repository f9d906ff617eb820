package version

import (
	"strings"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// Restriction is one interval of a version range. Empty bounds are open.
type Restriction struct {
	Lower          string
	LowerInclusive bool
	Upper          string
	UpperInclusive bool
}

// Contains reports whether v falls inside the interval.
func (r Restriction) Contains(v string) bool {
	if r.Lower != "" {
		c := Compare(v, r.Lower)
		if c < 0 || (c == 0 && !r.LowerInclusive) {
			return false
		}
	}
	if r.Upper != "" {
		c := Compare(v, r.Upper)
		if c > 0 || (c == 0 && !r.UpperInclusive) {
			return false
		}
	}
	return true
}

func (r Restriction) String() string {
	var b strings.Builder
	if r.LowerInclusive {
		b.WriteByte('[')
	} else {
		b.WriteByte('(')
	}
	if r.Lower == r.Upper && r.LowerInclusive && r.UpperInclusive {
		b.WriteString(r.Lower)
		b.WriteByte(']')
		return b.String()
	}
	b.WriteString(r.Lower)
	b.WriteByte(',')
	b.WriteString(r.Upper)
	if r.UpperInclusive {
		b.WriteByte(']')
	} else {
		b.WriteByte(')')
	}
	return b.String()
}

// Range is a parsed version requirement. A plain version such as "1.0" is a
// soft requirement: Recommended is set and Restrictions is empty.
type Range struct {
	Recommended  string
	Restrictions []Restriction
}

// IsRange reports whether spec uses bracket range syntax.
func IsRange(spec string) bool {
	spec = strings.TrimSpace(spec)
	return strings.HasPrefix(spec, "[") || strings.HasPrefix(spec, "(")
}

// ParseRange parses a Maven version requirement:
//
//	1.0            soft requirement
//	[1.0]          exactly 1.0
//	[1.0,2.0)      1.0 <= v < 2.0
//	(,1.0],[1.2,)  v <= 1.0 or v >= 1.2
func ParseRange(spec string) (Range, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Range{}, errors.New(errors.ErrCodeMalformedNotation, "empty version")
	}
	if !IsRange(spec) {
		return Range{Recommended: spec}, nil
	}

	var rng Range
	rest := spec
	for rest != "" {
		if rest[0] != '[' && rest[0] != '(' {
			return Range{}, errors.New(errors.ErrCodeMalformedNotation, "invalid version range %q", spec)
		}
		end := strings.IndexAny(rest, "])")
		if end < 0 {
			return Range{}, errors.New(errors.ErrCodeMalformedNotation, "unterminated version range %q", spec)
		}
		r, err := parseRestriction(rest[:end+1])
		if err != nil {
			return Range{}, errors.Wrap(errors.ErrCodeMalformedNotation, err, "invalid version range %q", spec)
		}
		rng.Restrictions = append(rng.Restrictions, r)

		rest = strings.TrimSpace(rest[end+1:])
		if rest == "" {
			break
		}
		if rest[0] != ',' {
			return Range{}, errors.New(errors.ErrCodeMalformedNotation, "invalid version range %q", spec)
		}
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return Range{}, errors.New(errors.ErrCodeMalformedNotation, "trailing comma in version range %q", spec)
		}
	}
	return rng, nil
}

func parseRestriction(s string) (Restriction, error) {
	r := Restriction{
		LowerInclusive: s[0] == '[',
		UpperInclusive: s[len(s)-1] == ']',
	}
	body := strings.TrimSpace(s[1 : len(s)-1])

	lower, upper, hasComma := strings.Cut(body, ",")
	if !hasComma {
		if body == "" || !r.LowerInclusive || !r.UpperInclusive {
			return Restriction{}, errors.New(errors.ErrCodeMalformedNotation, "single version %q must be [x]", s)
		}
		r.Lower, r.Upper = body, body
		return r, nil
	}
	if strings.Contains(upper, ",") {
		return Restriction{}, errors.New(errors.ErrCodeMalformedNotation, "too many bounds in %q", s)
	}
	r.Lower, r.Upper = strings.TrimSpace(lower), strings.TrimSpace(upper)
	if r.Lower != "" && r.Upper != "" && Compare(r.Lower, r.Upper) > 0 {
		return Restriction{}, errors.New(errors.ErrCodeMalformedNotation, "lower bound above upper bound in %q", s)
	}
	return r, nil
}

// Contains reports whether v satisfies the range. A soft requirement
// contains only its recommended version.
func (r Range) Contains(v string) bool {
	if len(r.Restrictions) == 0 {
		return Compare(v, r.Recommended) == 0
	}
	for _, res := range r.Restrictions {
		if res.Contains(v) {
			return true
		}
	}
	return false
}

// Select picks the version to use from the available list. A soft
// requirement selects its recommended version whether or not it is listed;
// a range selects the newest available version it contains. Snapshots are
// only selected when a bound names one explicitly.
func (r Range) Select(available []string) (string, bool) {
	if len(r.Restrictions) == 0 {
		return r.Recommended, r.Recommended != ""
	}
	var best string
	for _, v := range available {
		if !r.Contains(v) {
			continue
		}
		if IsSnapshot(v) && !r.names(v) {
			continue
		}
		if best == "" || Compare(v, best) > 0 {
			best = v
		}
	}
	return best, best != ""
}

func (r Range) names(v string) bool {
	for _, res := range r.Restrictions {
		if res.Lower == v || res.Upper == v {
			return true
		}
	}
	return false
}

func (r Range) String() string {
	if len(r.Restrictions) == 0 {
		return r.Recommended
	}
	parts := make([]string, len(r.Restrictions))
	for i, res := range r.Restrictions {
		parts[i] = res.String()
	}
	return strings.Join(parts, ",")
}
