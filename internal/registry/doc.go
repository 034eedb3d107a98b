// Package registry owns the set of installed extensions and their lifecycle:
// archive-validated installation with dependency resolution, the
// installed→enabled⇄disabled state machine with degraded/error absorbing
// states, hook delegation to an external sandbox, and persistence of the
// registry table across processes.
package registry
