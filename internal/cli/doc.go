// Package cli defines the command tree for the extension toolkit: scaffolding
// and packing extension projects, validating and inspecting archives, driving
// the installed-extension lifecycle, and fetching cloud resources.
package cli
