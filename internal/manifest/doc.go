// Package manifest defines the extension manifest data model and implements
// manifest generation (creation, updates, per-type presets, integrity
// stamping) and three-layer validation: JSON Schema structure, semantic
// rules (ID grammar, semver, host compatibility), and permission
// classification against the restricted set.
package manifest
