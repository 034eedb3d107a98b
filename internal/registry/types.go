package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lumen-design/ldip/internal/manifest"
)

// Status is an extension's lifecycle state.
type Status string

const (
	StatusInstalled Status = "installed"
	StatusEnabled   Status = "enabled"
	StatusDisabled  Status = "disabled"
	StatusError     Status = "error"
	StatusDegraded  Status = "degraded"
)

// Lifecycle phases, used for hook dispatch and error reporting.
const (
	PhaseInstall   = "install"
	PhaseEnable    = "enable"
	PhaseDisable   = "disable"
	PhaseUninstall = "uninstall"
)

// Extension is the runtime record for one installed extension. It is owned
// exclusively by the Registry: callers receive copies.
type Extension struct {
	ID          string                      `json:"id"`
	Manifest    *manifest.ExtensionManifest `json:"-"`
	Status      Status                      `json:"status"`
	InstallPath string                      `json:"install_path"`
	InstalledAt time.Time                   `json:"installed_at"`
	EnabledAt   *time.Time                  `json:"enabled_at,omitempty"`
	Error       string                      `json:"error,omitempty"`
}

// HookContext carries the information a sandbox needs to run one lifecycle
// hook. InvocationID correlates log lines across the registry and the sandbox.
type HookContext struct {
	ExtensionID  string
	Phase        string
	InstallPath  string
	InvocationID string
}

// HookRunner executes a named lifecycle script in an external sandbox. The
// registry decides when a hook runs and with what deadline; how it runs is
// the runner's business. A non-nil error aborts the lifecycle transition.
type HookRunner interface {
	RunHook(ctx context.Context, script string, hookCtx HookContext) error
}

// ErrNotFound is returned by lifecycle operations on unregistered IDs.
var ErrNotFound = errors.New("extension not found")

// ValidationError reports a manifest that failed validation during install.
type ValidationError struct {
	Result *manifest.ValidationResult
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Result.Errors))
	for _, issue := range e.Result.Errors {
		if issue.Path != "" {
			msgs = append(msgs, issue.Path+": "+issue.Message)
			continue
		}
		msgs = append(msgs, issue.Message)
	}
	return fmt.Sprintf("manifest validation failed: %s", strings.Join(msgs, "; "))
}

// DependencyError reports required dependencies that block an install.
type DependencyError struct {
	Missing      []string // dependency IDs not registered at all
	Incompatible []string // registered, but outside the declared range
}

func (e *DependencyError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Incompatible) > 0 {
		parts = append(parts, "incompatible version: "+strings.Join(e.Incompatible, ", "))
	}
	return "unsatisfied required dependencies (" + strings.Join(parts, "; ") + ")"
}

// HookError reports a lifecycle hook that failed or timed out.
type HookError struct {
	ExtensionID string
	Phase       string
	Err         error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook for %s failed: %v", e.Phase, e.ExtensionID, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }
