package version

import "fmt"

// IsCompatible reports whether the host application version satisfies an
// extension's declared requirements: host >= minAppVersion, and if
// maxAppVersion is set, host must satisfy it as a range expression.
func IsCompatible(hostVersion, minAppVersion, maxAppVersion string) (bool, error) {
	cmp, err := Compare(hostVersion, minAppVersion)
	if err != nil {
		return false, fmt.Errorf("comparing host version %q against minimum %q: %w", hostVersion, minAppVersion, err)
	}
	if cmp < 0 {
		return false, nil
	}
	if maxAppVersion != "" && !MatchesRange(hostVersion, maxAppVersion) {
		return false, nil
	}
	return true, nil
}
