// Package version implements the semantic-version rules used by extension
// manifests: strict MAJOR.MINOR.PATCH validation, prerelease-insensitive
// comparison, range matching (exact, wildcard, caret, tilde, minimum), and
// host-compatibility checks.
package version
