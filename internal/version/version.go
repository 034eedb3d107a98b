package version

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// semverPattern is the strict manifest version format: MAJOR.MINOR.PATCH with
// an optional prerelease suffix of lowercase alphanumerics, dots, and hyphens.
// Deliberately narrower than Masterminds' parser: no "v" prefix, no build
// metadata, no uppercase prerelease identifiers.
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-z0-9.-]+)?$`)

// IsValidSemVer reports whether s is a valid manifest version string.
func IsValidSemVer(s string) bool {
	if !semverPattern.MatchString(s) {
		return false
	}
	// The regexp admits things like "1.0.0-" only via a non-empty suffix,
	// but StrictNewVersion catches the remaining oddities (leading zeros
	// in prerelease numerics, empty identifiers such as "1.0.0-a..b").
	_, err := semver.StrictNewVersion(s)
	return err == nil
}

// Compare compares two version strings numerically by MAJOR, MINOR, PATCH,
// returning -1, 0, or 1. Prerelease suffixes are stripped before comparison;
// prerelease ordering is intentionally not evaluated, so "1.2.0-beta" and
// "1.2.0" compare equal.
func Compare(a, b string) (int, error) {
	av, err := parseCore(a)
	if err != nil {
		return 0, err
	}
	bv, err := parseCore(b)
	if err != nil {
		return 0, err
	}
	return av.Compare(bv), nil
}

// parseCore parses a version and discards any prerelease suffix.
func parseCore(s string) (*semver.Version, error) {
	if i := strings.IndexByte(s, '-'); i > 0 {
		s = s[:i]
	}
	return semver.StrictNewVersion(s)
}

// MatchesRange reports whether version satisfies the range expression.
// Five grammars are recognized, tried in order: exact match, wildcard
// ("1.x.x", "1.2.x"), caret ("^1.2.3"), tilde ("~1.2.3"), and minimum
// (">=1.2.3"). Anything else fails closed.
func MatchesRange(version, rng string) bool {
	if !IsValidSemVer(version) {
		return false
	}

	// Exact match.
	if version == rng {
		return true
	}

	// Wildcard: each non-x component must equal the version's component.
	if strings.Contains(rng, "x") {
		return matchesWildcard(version, rng)
	}

	// Caret: >= base, same MAJOR.
	if base, ok := strings.CutPrefix(rng, "^"); ok {
		return matchesFloor(version, base, 1)
	}

	// Tilde: >= base, same MAJOR.MINOR.
	if base, ok := strings.CutPrefix(rng, "~"); ok {
		return matchesFloor(version, base, 2)
	}

	// Minimum: >= base.
	if base, ok := strings.CutPrefix(rng, ">="); ok {
		return matchesFloor(version, base, 0)
	}

	return false
}

// matchesWildcard matches "1.x.x" style ranges component-wise.
func matchesWildcard(version, rng string) bool {
	v, err := parseCore(version)
	if err != nil {
		return false
	}
	parts := strings.Split(rng, ".")
	if len(parts) != 3 {
		return false
	}
	got := []uint64{v.Major(), v.Minor(), v.Patch()}
	for i, part := range parts {
		if part == "x" {
			continue
		}
		want, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return false
		}
		if got[i] != want {
			return false
		}
	}
	return true
}

// matchesFloor checks version >= base, with the leading pinned components
// (0 = none, 1 = MAJOR, 2 = MAJOR.MINOR) required to be equal.
func matchesFloor(version, base string, pinned int) bool {
	v, err := parseCore(version)
	if err != nil {
		return false
	}
	b, err := parseCore(base)
	if err != nil {
		return false
	}
	if v.Compare(b) < 0 {
		return false
	}
	if pinned >= 1 && v.Major() != b.Major() {
		return false
	}
	if pinned >= 2 && v.Minor() != b.Minor() {
		return false
	}
	return true
}
