package registry

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lumen-design/ldip/internal/archive"
	"github.com/lumen-design/ldip/internal/manifest"
)

const hostVersion = "2.0.0"

// recordingRunner captures hook invocations in order and can be told to
// fail specific phases.
type recordingRunner struct {
	phases []string
	fail   map[string]error
}

func (r *recordingRunner) RunHook(ctx context.Context, script string, hookCtx HookContext) error {
	r.phases = append(r.phases, hookCtx.Phase)
	if err := r.fail[hookCtx.Phase]; err != nil {
		return err
	}
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestRegistry(t *testing.T, runner HookRunner) *Registry {
	t.Helper()
	r, err := New(Options{
		HostVersion: hostVersion,
		Root:        t.TempDir(),
		Runner:      runner,
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return r
}

// buildArchive writes a .ldip file for the given manifest and returns its path.
func buildArchive(t *testing.T, m *manifest.ExtensionManifest) string {
	t.Helper()
	raw, err := archive.Build(&archive.PackageData{
		Manifest: m,
		Templates: []archive.Template{
			{ID: "starter", Name: "Starter", Body: []byte(`{"kind":"blank"}`)},
		},
	})
	if err != nil {
		t.Fatalf("building archive: %v", err)
	}
	path := filepath.Join(t.TempDir(), m.Metadata.ID+".ldip")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}
	return path
}

func packManifest(t *testing.T, id, version string, deps []manifest.Dependency, hooks *manifest.Lifecycle) *manifest.ExtensionManifest {
	t.Helper()
	m, err := manifest.CreateManifest(manifest.Options{
		Metadata: manifest.Metadata{
			ID:      id,
			Name:    "Test Pack",
			Version: version,
			Type:    manifest.TypeTemplatePack,
		},
		Requirements: manifest.Requirements{
			MinAppVersion: "1.0.0",
			Dependencies:  deps,
		},
		Permissions: manifest.Permissions{Required: []string{manifest.PermTemplateRead}},
		Lifecycle:   hooks,
	})
	if err != nil {
		t.Fatalf("creating manifest: %v", err)
	}
	return m
}

func allHooks() *manifest.Lifecycle {
	return &manifest.Lifecycle{
		Install:   &manifest.Hook{Script: "install.lua"},
		Enable:    &manifest.Hook{Script: "enable.lua"},
		Disable:   &manifest.Hook{Script: "disable.lua"},
		Uninstall: &manifest.Hook{Script: "uninstall.lua"},
	}
}

func TestInstall(t *testing.T) {
	r := newTestRegistry(t, &recordingRunner{})
	path := buildArchive(t, packManifest(t, "com.acme.pack", "1.0.0", nil, nil))

	ext, err := r.Install(context.Background(), path)
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if ext.Status != StatusInstalled {
		t.Errorf("Status = %s, want installed", ext.Status)
	}
	if ext.InstalledAt.IsZero() {
		t.Error("InstalledAt not stamped")
	}

	// Files are on disk.
	if _, err := os.Stat(filepath.Join(ext.InstallPath, "manifest.json")); err != nil {
		t.Errorf("manifest.json not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ext.InstallPath, "templates", "starter.json")); err != nil {
		t.Errorf("template not written: %v", err)
	}
}

func TestInstall_DuplicateID(t *testing.T) {
	r := newTestRegistry(t, &recordingRunner{})
	path := buildArchive(t, packManifest(t, "com.acme.pack", "1.0.0", nil, nil))

	if _, err := r.Install(context.Background(), path); err != nil {
		t.Fatalf("first Install error: %v", err)
	}
	if _, err := r.Install(context.Background(), path); err == nil {
		t.Error("expected error installing the same ID twice")
	}
}

func TestInstall_InvalidManifest(t *testing.T) {
	r := newTestRegistry(t, &recordingRunner{})
	// Requires a newer host than we are running.
	m := packManifest(t, "com.acme.future", "1.0.0", nil, nil)
	m.Requirements.MinAppVersion = "9.0.0"
	if err := manifest.StampIntegrity(m, "sha256"); err != nil {
		t.Fatalf("restamping: %v", err)
	}
	path := buildArchive(t, m)

	_, err := r.Install(context.Background(), path)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if _, getErr := r.Get("com.acme.future"); !errors.Is(getErr, ErrNotFound) {
		t.Error("failed install left a registered extension behind")
	}
}

func TestInstall_TamperedArchive(t *testing.T) {
	r := newTestRegistry(t, &recordingRunner{})
	m := packManifest(t, "com.acme.pack", "1.0.0", nil, nil)
	path := buildArchive(t, m)

	// Corrupt the stored checksum after stamping.
	m.Integrity.Checksum = "0000000000000000000000000000000000000000000000000000000000000000"
	tamperedPath := buildArchive(t, m)

	if _, err := r.Install(context.Background(), tamperedPath); !errors.Is(err, archive.ErrIntegrity) {
		t.Errorf("err = %v, want ErrIntegrity", err)
	}
	// The clean one still installs.
	if _, err := r.Install(context.Background(), path); err != nil {
		t.Errorf("clean archive failed after tampered attempt: %v", err)
	}
}

func TestInstall_MissingDependency(t *testing.T) {
	r := newTestRegistry(t, &recordingRunner{})
	deps := []manifest.Dependency{{ID: "com.acme.base", VersionRange: "^1.0.0"}}
	path := buildArchive(t, packManifest(t, "com.acme.pack", "1.0.0", deps, nil))

	_, err := r.Install(context.Background(), path)
	var de *DependencyError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DependencyError", err)
	}
	if len(de.Missing) != 1 || de.Missing[0] != "com.acme.base" {
		t.Errorf("Missing = %v, want [com.acme.base]", de.Missing)
	}
}

func TestInstall_OptionalDependencyIgnored(t *testing.T) {
	r := newTestRegistry(t, &recordingRunner{})
	deps := []manifest.Dependency{{ID: "com.acme.base", VersionRange: "^1.0.0", Optional: true}}
	path := buildArchive(t, packManifest(t, "com.acme.pack", "1.0.0", deps, nil))

	if _, err := r.Install(context.Background(), path); err != nil {
		t.Errorf("optional dependency blocked install: %v", err)
	}
}

func TestInstall_DependencyRangeMatching(t *testing.T) {
	r := newTestRegistry(t, &recordingRunner{})
	basePath := buildArchive(t, packManifest(t, "com.acme.base", "1.5.0", nil, nil))
	if _, err := r.Install(context.Background(), basePath); err != nil {
		t.Fatalf("installing base: %v", err)
	}

	// 1.5.0 satisfies ^1.0.0 even though a naive numeric comparison of
	// "1.5.0" against the literal range string would not.
	okDeps := []manifest.Dependency{{ID: "com.acme.base", VersionRange: "^1.0.0"}}
	okPath := buildArchive(t, packManifest(t, "com.acme.ontop", "1.0.0", okDeps, nil))
	if _, err := r.Install(context.Background(), okPath); err != nil {
		t.Errorf("in-range dependency rejected: %v", err)
	}

	badDeps := []manifest.Dependency{{ID: "com.acme.base", VersionRange: "^2.0.0"}}
	badPath := buildArchive(t, packManifest(t, "com.acme.toohigh", "1.0.0", badDeps, nil))
	_, err := r.Install(context.Background(), badPath)
	var de *DependencyError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DependencyError", err)
	}
	if len(de.Incompatible) != 1 || de.Incompatible[0] != "com.acme.base" {
		t.Errorf("Incompatible = %v, want [com.acme.base]", de.Incompatible)
	}
}

func TestEnableDisable(t *testing.T) {
	runner := &recordingRunner{}
	r := newTestRegistry(t, runner)
	path := buildArchive(t, packManifest(t, "com.acme.pack", "1.0.0", nil, allHooks()))

	if _, err := r.Install(context.Background(), path); err != nil {
		t.Fatalf("Install error: %v", err)
	}

	if err := r.Enable(context.Background(), "com.acme.pack"); err != nil {
		t.Fatalf("Enable error: %v", err)
	}
	ext, _ := r.Get("com.acme.pack")
	if ext.Status != StatusEnabled {
		t.Errorf("Status = %s, want enabled", ext.Status)
	}
	if ext.EnabledAt == nil {
		t.Error("EnabledAt not stamped")
	}

	// Enabling again is a no-op: the hook must not fire a second time.
	hookCount := len(runner.phases)
	if err := r.Enable(context.Background(), "com.acme.pack"); err != nil {
		t.Fatalf("second Enable error: %v", err)
	}
	if len(runner.phases) != hookCount {
		t.Error("enable hook fired on a no-op enable")
	}

	if err := r.Disable(context.Background(), "com.acme.pack"); err != nil {
		t.Fatalf("Disable error: %v", err)
	}
	ext, _ = r.Get("com.acme.pack")
	if ext.Status != StatusDisabled {
		t.Errorf("Status = %s, want disabled", ext.Status)
	}
	if ext.EnabledAt != nil {
		t.Error("EnabledAt not cleared on disable")
	}
}

func TestLifecycle_NotFound(t *testing.T) {
	r := newTestRegistry(t, &recordingRunner{})
	ctx := context.Background()

	if err := r.Enable(ctx, "com.acme.ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Enable err = %v, want ErrNotFound", err)
	}
	if err := r.Disable(ctx, "com.acme.ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Disable err = %v, want ErrNotFound", err)
	}
	if err := r.Uninstall(ctx, "com.acme.ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Uninstall err = %v, want ErrNotFound", err)
	}
}

func TestUninstall_DisablesFirst(t *testing.T) {
	runner := &recordingRunner{}
	r := newTestRegistry(t, runner)
	path := buildArchive(t, packManifest(t, "com.acme.pack", "1.0.0", nil, allHooks()))

	ctx := context.Background()
	ext, err := r.Install(ctx, path)
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if err := r.Enable(ctx, "com.acme.pack"); err != nil {
		t.Fatalf("Enable error: %v", err)
	}
	if err := r.Uninstall(ctx, "com.acme.pack"); err != nil {
		t.Fatalf("Uninstall error: %v", err)
	}

	want := []string{PhaseInstall, PhaseEnable, PhaseDisable, PhaseUninstall}
	if len(runner.phases) != len(want) {
		t.Fatalf("phases = %v, want %v", runner.phases, want)
	}
	for i := range want {
		if runner.phases[i] != want[i] {
			t.Fatalf("phases = %v, want %v", runner.phases, want)
		}
	}

	if _, err := r.Get("com.acme.pack"); !errors.Is(err, ErrNotFound) {
		t.Error("extension still registered after uninstall")
	}
	if _, err := os.Stat(ext.InstallPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("install directory still present after uninstall")
	}
}

func TestInstall_HookFailureLeavesNothing(t *testing.T) {
	runner := &recordingRunner{fail: map[string]error{PhaseInstall: errors.New("sandbox refused")}}
	r := newTestRegistry(t, runner)
	path := buildArchive(t, packManifest(t, "com.acme.pack", "1.0.0", nil, allHooks()))

	_, err := r.Install(context.Background(), path)
	var he *HookError
	if !errors.As(err, &he) {
		t.Fatalf("err = %v, want HookError", err)
	}
	if he.Phase != PhaseInstall {
		t.Errorf("Phase = %s, want install", he.Phase)
	}
	if _, getErr := r.Get("com.acme.pack"); !errors.Is(getErr, ErrNotFound) {
		t.Error("failed install left a registered extension behind")
	}
	if len(r.List()) != 0 {
		t.Error("List is not empty after failed install")
	}
}

func TestEnable_HookFailureKeepsState(t *testing.T) {
	runner := &recordingRunner{fail: map[string]error{PhaseEnable: errors.New("boom")}}
	r := newTestRegistry(t, runner)
	path := buildArchive(t, packManifest(t, "com.acme.pack", "1.0.0", nil, allHooks()))

	if _, err := r.Install(context.Background(), path); err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if err := r.Enable(context.Background(), "com.acme.pack"); err == nil {
		t.Fatal("expected enable hook failure to surface")
	}
	ext, _ := r.Get("com.acme.pack")
	if ext.Status != StatusInstalled {
		t.Errorf("Status = %s, want installed after failed enable", ext.Status)
	}
}

func TestReportFault_Degraded(t *testing.T) {
	r := newTestRegistry(t, &recordingRunner{})
	path := buildArchive(t, packManifest(t, "com.acme.pack", "1.0.0", nil, nil))

	ctx := context.Background()
	if _, err := r.Install(ctx, path); err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if err := r.Enable(ctx, "com.acme.pack"); err != nil {
		t.Fatalf("Enable error: %v", err)
	}

	if err := r.ReportFault("com.acme.pack", errors.New("render crash")); err != nil {
		t.Fatalf("ReportFault error: %v", err)
	}
	ext, _ := r.Get("com.acme.pack")
	if ext.Status != StatusDegraded {
		t.Errorf("Status = %s, want degraded", ext.Status)
	}
	if ext.Error == "" {
		t.Error("fault message not recorded")
	}

	// Enabling again recovers and clears the fault.
	if err := r.Enable(ctx, "com.acme.pack"); err != nil {
		t.Fatalf("Enable after fault error: %v", err)
	}
	ext, _ = r.Get("com.acme.pack")
	if ext.Status != StatusEnabled || ext.Error != "" {
		t.Errorf("recovery failed: status=%s error=%q", ext.Status, ext.Error)
	}
}

func TestPersistence(t *testing.T) {
	root := t.TempDir()
	logger := quietLogger()
	ctx := context.Background()

	r1, err := New(Options{HostVersion: hostVersion, Root: root, Runner: &recordingRunner{}, Logger: logger})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	path := buildArchive(t, packManifest(t, "com.acme.pack", "1.2.0", nil, nil))
	if _, err := r1.Install(ctx, path); err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if err := r1.Enable(ctx, "com.acme.pack"); err != nil {
		t.Fatalf("Enable error: %v", err)
	}

	// A fresh registry over the same root sees the same state.
	r2, err := New(Options{HostVersion: hostVersion, Root: root, Runner: &recordingRunner{}, Logger: logger})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	ext, err := r2.Get("com.acme.pack")
	if err != nil {
		t.Fatalf("Get after reload error: %v", err)
	}
	if ext.Status != StatusEnabled {
		t.Errorf("Status after reload = %s, want enabled", ext.Status)
	}
	if ext.Manifest == nil || ext.Manifest.Metadata.Version != "1.2.0" {
		t.Error("manifest not reloaded from install directory")
	}
}
