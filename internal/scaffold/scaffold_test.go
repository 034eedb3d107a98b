package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumen-design/ldip/internal/archive"
	"github.com/lumen-design/ldip/internal/manifest"
)

func TestGenerateTemplatePack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mathpack")

	id, err := Generate(Options{
		Type:   manifest.TypeTemplatePack,
		Name:   "Math Pack",
		Domain: "com.acme",
		Dir:    dir,
	}, "Lumen Design", "ldip")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if id != "com.acme.math-pack" {
		t.Errorf("Generate() id = %q, want %q", id, "com.acme.math-pack")
	}

	m, err := manifest.ParseFile(filepath.Join(dir, archive.ManifestPath))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if m.Metadata.Version != "0.1.0" {
		t.Errorf("default version = %q, want 0.1.0", m.Metadata.Version)
	}
	if ok, err := manifest.VerifyIntegrity(m); err != nil || !ok {
		t.Errorf("generated manifest failed integrity check: ok=%v err=%v", ok, err)
	}

	if _, err := os.Stat(filepath.Join(dir, "templates", "starter.json")); err != nil {
		t.Errorf("missing starter template: %v", err)
	}

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	if err != nil {
		t.Fatalf("reading README: %v", err)
	}
	if !strings.Contains(string(readme), "Math Pack") {
		t.Errorf("README does not mention extension name:\n%s", readme)
	}
}

func TestGeneratePacksRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "theme")
	if _, err := Generate(Options{
		Type:   manifest.TypeTheme,
		Name:   "Dark Theme",
		Domain: "com.acme",
		Dir:    dir,
	}, "Lumen Design", "ldip"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	data, err := archive.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	pkg, err := archive.Build(data)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, err := archive.Validate(pkg); err != nil {
		t.Errorf("Validate() on scaffolded package: %v", err)
	}
}

func TestGenerateRejectsNonEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Generate(Options{
		Type:   manifest.TypeTool,
		Name:   "Tool",
		Domain: "com.acme",
		Dir:    dir,
	}, "Lumen Design", "ldip")
	if err == nil {
		t.Fatal("Generate() into non-empty dir succeeded, want error")
	}
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	_, err := Generate(Options{
		Type:   "plugin",
		Name:   "X",
		Domain: "com.acme",
		Dir:    filepath.Join(t.TempDir(), "x"),
	}, "Lumen Design", "ldip")
	if err == nil {
		t.Fatal("Generate() with unknown type succeeded, want error")
	}
}
