// Package version implements Maven version ordering, version ranges and
// snapshot naming.
//
// Ordering follows Maven's ComparableVersion closely enough for resolution:
// versions are split into numeric and qualifier tokens at '.', '-', '_' and
// at digit/letter transitions, then compared token by token. Well-known
// qualifiers sort as
//
//	alpha < beta < milestone < rc < snapshot < "" (release) < sp
//
// and any other qualifier sorts after sp, alphabetically. A numeric token is
// always newer than a qualifier in the same position, so 1.0.1 > 1.0-rc1.
package version

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// SnapshotSuffix marks a development version.
const SnapshotSuffix = "SNAPSHOT"

type token struct {
	num    bool
	digits string // numeric value without leading zeros, "0" for zero
	qual   string // normalized qualifier
}

var qualifierAliases = map[string]string{
	"a":       "alpha",
	"b":       "beta",
	"m":       "milestone",
	"cr":      "rc",
	"ga":      "",
	"final":   "",
	"release": "",
}

var qualifierRank = map[string]int{
	"alpha":     0,
	"beta":      1,
	"milestone": 2,
	"rc":        3,
	"snapshot":  4,
	"":          5,
	"sp":        6,
}

func tokenize(v string) []token {
	var (
		tokens []token
		cur    strings.Builder
		digit  bool
	)
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		s := cur.String()
		cur.Reset()
		if digit {
			s = strings.TrimLeft(s, "0")
			if s == "" {
				s = "0"
			}
			tokens = append(tokens, token{num: true, digits: s})
			return
		}
		if alias, ok := qualifierAliases[s]; ok {
			s = alias
		}
		tokens = append(tokens, token{qual: s})
	}

	for _, r := range strings.ToLower(strings.TrimSpace(v)) {
		switch {
		case r == '.' || r == '-' || r == '_':
			flush()
		case unicode.IsDigit(r):
			if cur.Len() > 0 && !digit {
				flush()
			}
			digit = true
			cur.WriteRune(r)
		default:
			if cur.Len() > 0 && digit {
				flush()
			}
			digit = false
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func compareTokens(a, b token) int {
	switch {
	case a.num && b.num:
		if len(a.digits) != len(b.digits) {
			return cmpInt(len(a.digits), len(b.digits))
		}
		return strings.Compare(a.digits, b.digits)
	case a.num:
		return 1
	case b.num:
		return -1
	}
	ra, oka := qualifierRank[a.qual]
	rb, okb := qualifierRank[b.qual]
	switch {
	case oka && okb:
		return cmpInt(ra, rb)
	case oka:
		return -1
	case okb:
		return 1
	default:
		return strings.Compare(a.qual, b.qual)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Compare returns -1, 0 or +1 depending on whether a is older than, equal
// to or newer than b. "1.0" and "1" compare equal.
func Compare(a, b string) int {
	ta, tb := tokenize(a), tokenize(b)
	for i := range max(len(ta), len(tb)) {
		var x, y token
		switch {
		case i < len(ta) && i < len(tb):
			x, y = ta[i], tb[i]
		case i < len(ta):
			x, y = ta[i], padding(ta[i])
		default:
			x, y = padding(tb[i]), tb[i]
		}
		if c := compareTokens(x, y); c != 0 {
			return c
		}
	}
	return 0
}

// padding returns the neutral token compared against t when the other
// version has run out of tokens.
func padding(t token) token {
	if t.num {
		return token{num: true, digits: "0"}
	}
	return token{qual: ""}
}

// Sort orders versions from oldest to newest in place.
func Sort(versions []string) {
	slices.SortStableFunc(versions, Compare)
}

// Latest returns the newest of versions, or "" when versions is empty.
func Latest(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	return slices.MaxFunc(versions, Compare)
}

// IsSnapshot reports whether v names a development version.
func IsSnapshot(v string) bool {
	return strings.HasSuffix(v, "-"+SnapshotSuffix) || v == SnapshotSuffix
}

// Timestamped returns the file version of a deployed snapshot build:
// "1.0-SNAPSHOT" with timestamp "20240101.120000" and build 3 becomes
// "1.0-20240101.120000-3".
func Timestamped(base, timestamp string, build int) string {
	return strings.TrimSuffix(base, SnapshotSuffix) + timestamp + "-" + strconv.Itoa(build)
}
