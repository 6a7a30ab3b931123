package version

import (
	"fmt"
	"strings"

	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/observability"
)

// IncomparableError reports two versions whose segment shapes differ.
type IncomparableError struct {
	A, B string
}

func (e *IncomparableError) Error() string {
	return fmt.Sprintf("versions %q and %q are not comparable", e.A, e.B)
}

// Code returns INCOMPARABLE_VERSION.
func (e *IncomparableError) Code() grapeserrors.Code {
	return grapeserrors.ErrCodeIncomparableVersion
}

// UnsupportedFormatError reports a version outside the comparator's grammar.
type UnsupportedFormatError struct {
	Version string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("version %q has an unsupported format", e.Version)
}

// Code returns UNSUPPORTED_VERSION.
func (e *UnsupportedFormatError) Code() grapeserrors.Code {
	return grapeserrors.ErrCodeUnsupportedVersion
}

// Compare orders a and b. It returns a negative number when a ranks below
// b, zero when they are equal and a positive number otherwise.
//
// When the main parts are equal, a version without qualifier ranks above one
// with a qualifier ("1.0" > "1.0-SNAPSHOT"), and qualifiers compare run by
// run with the same shape rules, a prefix ranking first.
func Compare(a, b Version) (int, error) {
	if a.Opaque() {
		return 0, &UnsupportedFormatError{Version: a.raw}
	}
	if b.Opaque() {
		return 0, &UnsupportedFormatError{Version: b.raw}
	}
	if len(a.main) != len(b.main) {
		return 0, &IncomparableError{A: a.raw, B: b.raw}
	}
	for i := range a.main {
		c, ok := compareSegment(a.main[i], b.main[i])
		if !ok {
			return 0, &IncomparableError{A: a.raw, B: b.raw}
		}
		if c != 0 {
			return c, nil
		}
	}

	switch {
	case len(a.qualifier) == 0 && len(b.qualifier) == 0:
		return 0, nil
	case len(a.qualifier) == 0:
		return 1, nil
	case len(b.qualifier) == 0:
		return -1, nil
	}

	n := min(len(a.qualifier), len(b.qualifier))
	for i := 0; i < n; i++ {
		c, ok := compareSegment(a.qualifier[i], b.qualifier[i])
		if !ok {
			return 0, &IncomparableError{A: a.raw, B: b.raw}
		}
		if c != 0 {
			return c, nil
		}
	}
	return len(a.qualifier) - len(b.qualifier), nil
}

func compareSegment(a, b segment) (int, bool) {
	if a.kind != b.kind {
		return 0, false
	}
	if a.kind == numeric {
		switch {
		case a.num < b.num:
			return -1, true
		case a.num > b.num:
			return 1, true
		}
		return 0, true
	}
	return strings.Compare(a.text, b.text), true
}

// CompareStrings parses and compares two raw versions.
func CompareStrings(a, b string) (int, error) {
	return Compare(Parse(a), Parse(b))
}

// LatestAny returns the greatest version under [Compare]. ok is false when
// versions is empty. The first comparator error aborts the fold.
func LatestAny(versions []string) (latest string, ok bool, err error) {
	return fold(versions, false)
}

// LatestRelease returns the greatest release version under [Compare]. ok is
// false when no release version is present.
func LatestRelease(versions []string) (latest string, ok bool, err error) {
	return fold(versions, true)
}

func fold(versions []string, releasesOnly bool) (string, bool, error) {
	var (
		best  Version
		found bool
	)
	for _, raw := range versions {
		v := Parse(raw)
		if releasesOnly && !v.IsRelease() {
			continue
		}
		if !found {
			best, found = v, true
			continue
		}
		c, err := Compare(best, v)
		if err != nil {
			return "", false, err
		}
		if c < 0 {
			best = v
		}
	}
	if !found {
		return "", false, nil
	}
	return best.raw, true, nil
}

// IsUpToDate reports whether current is the latest version or the latest
// release among all.
//
// If either lookup fails, the answer is instead whether no member of all is
// lexicographically greater than current.
func IsUpToDate(current string, all []string) bool {
	latest, okAny, err := LatestAny(all)
	if err == nil {
		var release string
		var okRel bool
		release, okRel, err = LatestRelease(all)
		if err == nil {
			return (okAny && current == latest) || (okRel && current == release)
		}
	}

	observability.Versions().OnFallback("uptodate", err)
	for _, v := range all {
		if v > current {
			return false
		}
	}
	return true
}

// Newest returns the latest version under [Compare], or the lexicographic
// maximum when the versions cannot be ordered. It returns "" for an empty
// list.
func Newest(versions []string) string {
	latest, _, err := LatestAny(versions)
	if err == nil {
		return latest
	}

	observability.Versions().OnFallback("newest", err)
	var best string
	for _, v := range versions {
		if v > best {
			best = v
		}
	}
	return best
}
