package registry

import (
	"github.com/lumen-design/ldip/internal/manifest"
	"github.com/lumen-design/ldip/internal/version"
)

// checkDependencies verifies that every required dependency is registered
// with a version inside the declared range. Optional dependencies are
// ignored. Satisfaction uses true range matching, not a numeric comparison
// against the range string.
func (r *Registry) checkDependencies(m *manifest.ExtensionManifest) error {
	var depErr DependencyError

	for _, dep := range m.Requirements.Dependencies {
		if dep.Optional {
			continue
		}
		installed, ok := r.extensions[dep.ID]
		if !ok {
			depErr.Missing = append(depErr.Missing, dep.ID)
			continue
		}
		if !version.MatchesRange(installed.Manifest.Metadata.Version, dep.VersionRange) {
			depErr.Incompatible = append(depErr.Incompatible, dep.ID)
		}
	}

	if len(depErr.Missing) > 0 || len(depErr.Incompatible) > 0 {
		return &depErr
	}
	return nil
}
