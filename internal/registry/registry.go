package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lumen-design/ldip/internal/archive"
	"github.com/lumen-design/ldip/internal/manifest"
)

// defaultHookTimeout applies when a hook declares no timeout of its own.
const defaultHookTimeout = 30 * time.Second

// Options configures a Registry instance.
type Options struct {
	// HostVersion is the running host application version manifests are
	// validated against.
	HostVersion string
	// Root is the directory that holds one subdirectory per installed
	// extension plus the registry state file.
	Root string
	// Runner executes lifecycle hooks. Defaults to a logging no-op runner.
	Runner HookRunner
	// Logger defaults to the standard charm logger.
	Logger *log.Logger
}

// Registry owns the set of installed extensions and drives their lifecycle
// state machine. All lifecycle methods are safe for concurrent use; calls
// are serialized internally.
type Registry struct {
	mu          sync.Mutex
	hostVersion string
	root        string
	runner      HookRunner
	logger      *log.Logger
	extensions  map[string]*Extension
}

// New creates a registry rooted at opts.Root, reloading any persisted state
// from a previous process.
func New(opts Options) (*Registry, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("registry root directory is required")
	}
	if opts.HostVersion == "" {
		return nil, fmt.Errorf("host version is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	runner := opts.Runner
	if runner == nil {
		runner = &NoopRunner{Logger: logger}
	}

	r := &Registry{
		hostVersion: opts.HostVersion,
		root:        opts.Root,
		runner:      runner,
		logger:      logger,
		extensions:  make(map[string]*Extension),
	}
	if err := r.loadState(); err != nil {
		return nil, err
	}
	return r, nil
}

// Install validates and registers the extension archive at archivePath.
// The archive is tamper-checked, its manifest validated against the host
// version, and its required dependencies resolved before anything is written.
// On any failure nothing is registered and no files are left behind.
func (r *Registry) Install(ctx context.Context, archivePath string) (*Extension, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(archivePath)
	if err != nil {
		return nil, fmt.Errorf("reading archive %s: %w", archivePath, err)
	}

	data, err := archive.Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("validating archive: %w", err)
	}

	result, err := manifest.ValidateManifest(data.Manifest, r.hostVersion)
	if err != nil {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}
	if !result.Valid {
		return nil, &ValidationError{Result: result}
	}
	for _, warning := range result.Warnings {
		r.logger.Warn("manifest warning", "id", data.Manifest.Metadata.ID, "message", warning.Message)
	}

	id := data.Manifest.Metadata.ID
	if _, exists := r.extensions[id]; exists {
		return nil, fmt.Errorf("extension %s is already installed", id)
	}

	if err := r.checkDependencies(data.Manifest); err != nil {
		return nil, err
	}

	installPath := filepath.Join(r.root, id)
	if err := archive.WriteDir(installPath, data); err != nil {
		os.RemoveAll(installPath)
		return nil, fmt.Errorf("writing extension files: %w", err)
	}

	if err := r.runHook(ctx, data.Manifest, PhaseInstall, id, installPath); err != nil {
		os.RemoveAll(installPath)
		return nil, err
	}

	ext := &Extension{
		ID:          id,
		Manifest:    data.Manifest,
		Status:      StatusInstalled,
		InstallPath: installPath,
		InstalledAt: time.Now().UTC(),
	}
	r.extensions[id] = ext

	if err := r.saveState(); err != nil {
		delete(r.extensions, id)
		os.RemoveAll(installPath)
		return nil, err
	}

	r.logger.Info("extension installed", "id", id, "version", data.Manifest.Metadata.Version)
	out := *ext
	return &out, nil
}

// Enable transitions an extension to enabled, running its enable hook first.
// Enabling an already-enabled extension is a no-op. Enabling a degraded
// extension re-runs the hook and clears the recorded fault.
func (r *Registry) Enable(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext, ok := r.extensions[id]
	if !ok {
		return fmt.Errorf("enabling %s: %w", id, ErrNotFound)
	}
	if ext.Status == StatusEnabled {
		return nil
	}
	if ext.Status == StatusError {
		return fmt.Errorf("enabling %s: extension is in the error state", id)
	}

	if err := r.runHook(ctx, ext.Manifest, PhaseEnable, id, ext.InstallPath); err != nil {
		return err
	}

	now := time.Now().UTC()
	ext.Status = StatusEnabled
	ext.EnabledAt = &now
	ext.Error = ""
	if err := r.saveState(); err != nil {
		return err
	}
	r.logger.Info("extension enabled", "id", id)
	return nil
}

// Disable transitions an extension to disabled, running its disable hook
// first. Disabling an already-disabled extension is a no-op.
func (r *Registry) Disable(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disableLocked(ctx, id)
}

func (r *Registry) disableLocked(ctx context.Context, id string) error {
	ext, ok := r.extensions[id]
	if !ok {
		return fmt.Errorf("disabling %s: %w", id, ErrNotFound)
	}
	if ext.Status == StatusDisabled {
		return nil
	}

	if err := r.runHook(ctx, ext.Manifest, PhaseDisable, id, ext.InstallPath); err != nil {
		return err
	}

	ext.Status = StatusDisabled
	ext.EnabledAt = nil
	if err := r.saveState(); err != nil {
		return err
	}
	r.logger.Info("extension disabled", "id", id)
	return nil
}

// Uninstall removes an extension. An enabled extension is disabled first so
// the disable hook always runs before the uninstall hook. The registry entry
// and the installed files are both removed.
func (r *Registry) Uninstall(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext, ok := r.extensions[id]
	if !ok {
		return fmt.Errorf("uninstalling %s: %w", id, ErrNotFound)
	}

	if ext.Status == StatusEnabled {
		if err := r.disableLocked(ctx, id); err != nil {
			return err
		}
	}

	if err := r.runHook(ctx, ext.Manifest, PhaseUninstall, id, ext.InstallPath); err != nil {
		return err
	}

	delete(r.extensions, id)
	if err := os.RemoveAll(ext.InstallPath); err != nil {
		return fmt.Errorf("removing extension files: %w", err)
	}
	if err := r.saveState(); err != nil {
		return err
	}
	r.logger.Info("extension uninstalled", "id", id)
	return nil
}

// ReportFault records a runtime fault and moves the extension to degraded.
// Degraded is reachable from any state; enabling again clears it.
func (r *Registry) ReportFault(id string, fault error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext, ok := r.extensions[id]
	if !ok {
		return fmt.Errorf("reporting fault for %s: %w", id, ErrNotFound)
	}
	ext.Status = StatusDegraded
	ext.Error = fault.Error()
	if err := r.saveState(); err != nil {
		return err
	}
	r.logger.Warn("extension degraded", "id", id, "fault", fault)
	return nil
}

// Get returns a copy of the extension record for id.
func (r *Registry) Get(id string) (*Extension, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext, ok := r.extensions[id]
	if !ok {
		return nil, fmt.Errorf("looking up %s: %w", id, ErrNotFound)
	}
	out := *ext
	return &out, nil
}

// List returns copies of all registered extensions, sorted by ID.
func (r *Registry) List() []*Extension {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Extension, 0, len(r.extensions))
	for _, ext := range r.extensions {
		cp := *ext
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// runHook dispatches one lifecycle hook to the runner with the declared
// timeout. Phases with no declared hook are skipped silently; a hook that
// fails or times out aborts the transition.
func (r *Registry) runHook(ctx context.Context, m *manifest.ExtensionManifest, phase, id, installPath string) error {
	hook := hookForPhase(m, phase)
	if hook == nil {
		return nil
	}

	timeout := defaultHookTimeout
	if hook.TimeoutMS > 0 {
		timeout = time.Duration(hook.TimeoutMS) * time.Millisecond
	}
	hookCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	invocation := HookContext{
		ExtensionID:  id,
		Phase:        phase,
		InstallPath:  installPath,
		InvocationID: uuid.NewString(),
	}
	r.logger.Debug("running lifecycle hook",
		"id", id, "phase", phase, "script", hook.Script, "invocation", invocation.InvocationID)

	if err := r.runner.RunHook(hookCtx, hook.Script, invocation); err != nil {
		return &HookError{ExtensionID: id, Phase: phase, Err: err}
	}
	return nil
}

func hookForPhase(m *manifest.ExtensionManifest, phase string) *manifest.Hook {
	if m.Lifecycle == nil {
		return nil
	}
	switch phase {
	case PhaseInstall:
		return m.Lifecycle.Install
	case PhaseEnable:
		return m.Lifecycle.Enable
	case PhaseDisable:
		return m.Lifecycle.Disable
	case PhaseUninstall:
		return m.Lifecycle.Uninstall
	}
	return nil
}
