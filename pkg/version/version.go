// Package version ranks version strings and classifies them as release or
// development versions.
//
// A version is parsed into a [Version]: a main part of '.'-separated numeric
// or alphabetic segments, and an optional qualifier following the first '-'.
// Two versions compare only when their main parts have the same shape (same
// segment count, same kind at each position). Anything else is signaled
// with [*IncomparableError] rather than guessed. Strings the grammar does not
// cover, such as "AAAAA" or "1.0b2", become a single opaque segment whose
// comparison fails with [*UnsupportedFormatError].
//
// # Release Classification
//
// A version is a release unless one of its segments matches "SNAPSHOT"
// (case-insensitive):
//
//	version.Parse("1.0.0").IsRelease()          // true
//	version.Parse("1.0.0-SNAPSHOT").IsRelease() // false
//
// # Up-To-Date Checks
//
// [IsUpToDate] tries the structured comparison first and, if any comparison
// fails, falls back to a plain lexicographic scan. The fallback ignores
// release status.
package version

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

type kind int

const (
	numeric kind = iota
	textual
	opaque
)

func (k kind) String() string {
	switch k {
	case numeric:
		return "numeric"
	case textual:
		return "textual"
	default:
		return "opaque"
	}
}

type segment struct {
	kind kind
	text string
	num  uint64
}

// developmentPattern marks a development version.
var developmentPattern = regexp.MustCompile(`(?i)snapshot`)

// Version is a parsed version string. It is immutable once parsed.
type Version struct {
	raw       string
	main      []segment
	qualifier []segment
	release   bool
}

// Parse splits raw into comparable segments. It never fails: input outside
// the grammar becomes a single opaque segment.
func Parse(raw string) Version {
	v := Version{raw: raw}

	mainPart, qual, hasQual := strings.Cut(raw, "-")
	v.main = parseMain(mainPart)
	if v.main == nil || (hasQual && qual == "") {
		v.main = []segment{{kind: opaque, text: raw}}
	} else if hasQual {
		v.qualifier = parseQualifier(qual)
	}

	v.release = !developmentPattern.MatchString(raw)
	return v
}

func parseMain(s string) []segment {
	if s == "" {
		return nil
	}
	pieces := strings.Split(s, ".")
	segs := make([]segment, 0, len(pieces))
	for i, p := range pieces {
		seg := classify(p)
		if seg.kind == opaque || (i == 0 && seg.kind != numeric) {
			return nil
		}
		segs = append(segs, seg)
	}
	return segs
}

func parseQualifier(s string) []segment {
	var (
		segs []segment
		cur  strings.Builder
		prev kind = -1
	)
	flush := func() {
		if cur.Len() > 0 {
			segs = append(segs, classify(cur.String()))
			cur.Reset()
		}
		prev = -1
	}
	for _, r := range s {
		if r == '-' || r == '.' {
			flush()
			continue
		}
		k := runeKind(r)
		if prev != -1 && k != prev {
			flush()
		}
		cur.WriteRune(r)
		prev = k
	}
	flush()
	return segs
}

func runeKind(r rune) kind {
	switch {
	case r >= '0' && r <= '9':
		return numeric
	case unicode.IsLetter(r):
		return textual
	default:
		return opaque
	}
}

func classify(p string) segment {
	if p == "" {
		return segment{kind: opaque, text: p}
	}
	k := runeKind(rune(p[0]))
	for _, r := range p {
		if runeKind(r) != k {
			return segment{kind: opaque, text: p}
		}
	}
	switch k {
	case numeric:
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return segment{kind: opaque, text: p}
		}
		return segment{kind: numeric, text: p, num: n}
	case textual:
		return segment{kind: textual, text: p}
	}
	return segment{kind: opaque, text: p}
}

// String returns the raw version string.
func (v Version) String() string { return v.raw }

// IsRelease reports whether no segment carries a development marker.
func (v Version) IsRelease() bool { return v.release }

// Opaque reports whether the version fell outside the grammar.
func (v Version) Opaque() bool {
	for _, s := range v.main {
		if s.kind == opaque {
			return true
		}
	}
	for _, s := range v.qualifier {
		if s.kind == opaque {
			return true
		}
	}
	return false
}

// Shape describes the segment kinds of the main part, e.g.
// "numeric.numeric.numeric". Versions compare only when shapes are equal.
func (v Version) Shape() string {
	kinds := make([]string, len(v.main))
	for i, s := range v.main {
		kinds[i] = s.kind.String()
	}
	return strings.Join(kinds, ".")
}

// IsRelease parses raw and reports whether it is a release version.
func IsRelease(raw string) bool {
	return Parse(raw).IsRelease()
}
