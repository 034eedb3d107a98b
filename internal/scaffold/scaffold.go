// Package scaffold generates starter extension projects that pack cleanly
// into distributable archives.
package scaffold

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/lumen-design/ldip/internal/archive"
	"github.com/lumen-design/ldip/internal/manifest"
)

// Options configures a new extension project.
type Options struct {
	// Type is one of the extension type constants (template-pack, tool, theme).
	Type string
	// Name is the human-readable extension name.
	Name string
	// Domain is the vendor domain used to derive the extension ID.
	Domain string
	// Version defaults to 0.1.0.
	Version string
	// MinAppVersion defaults to 1.0.0.
	MinAppVersion string
	// Dir is the directory to generate into. Created if missing; must be
	// empty or absent.
	Dir string
}

const readmeTemplate = `# {{.Name}}

A {{.Type}} extension for {{.Host}}.

## Building

Run ` + "`{{.CLI}} pack {{.DirName}}`" + ` to produce a distributable archive.

## Manifest

The extension manifest lives at ` + "`manifest.json`" + `. Edit the metadata
and permissions there, then re-pack.
`

// Generate creates a starter project for the given options and returns the
// generated extension ID.
func Generate(opts Options, hostName, cliName string) (string, error) {
	if opts.Name == "" {
		return "", fmt.Errorf("extension name is required")
	}
	if opts.Domain == "" {
		return "", fmt.Errorf("vendor domain is required")
	}
	if opts.Version == "" {
		opts.Version = "0.1.0"
	}
	if opts.MinAppVersion == "" {
		opts.MinAppVersion = "1.0.0"
	}

	if err := checkTargetDir(opts.Dir); err != nil {
		return "", err
	}

	m, err := newManifest(opts)
	if err != nil {
		return "", err
	}

	data := &archive.PackageData{Manifest: m}
	if opts.Type == manifest.TypeTemplatePack {
		body, _ := json.Marshal(map[string]any{
			"canvas": map[string]int{"width": 1920, "height": 1080},
			"layers": []any{},
		})
		data.Templates = []archive.Template{{
			ID:          "starter",
			Name:        "Starter Template",
			Description: "Replace this with your first template.",
			Body:        body,
		}}
	}
	readme, err := renderReadme(opts, hostName, cliName)
	if err != nil {
		return "", err
	}
	data.Docs = map[string][]byte{"README.md": readme}

	if err := archive.WriteDir(opts.Dir, data); err != nil {
		return "", err
	}
	return m.Metadata.ID, nil
}

func newManifest(opts Options) (*manifest.ExtensionManifest, error) {
	switch opts.Type {
	case manifest.TypeTemplatePack:
		return manifest.NewTemplatePackManifest(opts.Domain, opts.Name, opts.Version, opts.MinAppVersion)
	case manifest.TypeTool:
		return manifest.NewToolManifest(opts.Domain, opts.Name, opts.Version, opts.MinAppVersion)
	case manifest.TypeTheme:
		return manifest.NewThemeManifest(opts.Domain, opts.Name, opts.Version, opts.MinAppVersion)
	default:
		return nil, fmt.Errorf("unsupported extension type %q (want %s, %s, or %s)",
			opts.Type, manifest.TypeTemplatePack, manifest.TypeTool, manifest.TypeTheme)
	}
}

// checkTargetDir refuses to scaffold over existing files.
func checkTargetDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("target directory is required")
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking target directory: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("target directory %s is not empty", dir)
	}
	return nil
}

func renderReadme(opts Options, hostName, cliName string) ([]byte, error) {
	tmpl, err := template.New("readme").Parse(readmeTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing readme template: %w", err)
	}
	var sb strings.Builder
	err = tmpl.Execute(&sb, map[string]string{
		"Name":    opts.Name,
		"Type":    opts.Type,
		"Host":    hostName,
		"CLI":     cliName,
		"DirName": filepath.Base(opts.Dir),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering readme: %w", err)
	}
	return []byte(sb.String()), nil
}
