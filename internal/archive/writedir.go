package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lumen-design/ldip/internal/manifest"
)

// WriteDir lays package data out under dir, mirroring the archive layout.
// Used both by `unpack` and by the registry when installing.
func WriteDir(dir string, data *PackageData) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if err := manifest.WriteFile(filepath.Join(dir, ManifestPath), data.Manifest); err != nil {
		return err
	}

	if len(data.Templates) > 0 {
		tdir := filepath.Join(dir, "templates")
		if err := os.MkdirAll(tdir, 0755); err != nil {
			return fmt.Errorf("creating templates directory: %w", err)
		}
		for _, t := range data.Templates {
			body, err := json.MarshalIndent(&t, "", "  ")
			if err != nil {
				return fmt.Errorf("serializing template %s: %w", t.ID, err)
			}
			if err := os.WriteFile(filepath.Join(tdir, t.ID+".json"), body, 0644); err != nil {
				return fmt.Errorf("writing template %s: %w", t.ID, err)
			}
		}
	}

	if len(data.Scripts) > 0 {
		sdir := filepath.Join(dir, "scripts")
		if err := os.MkdirAll(sdir, 0755); err != nil {
			return fmt.Errorf("creating scripts directory: %w", err)
		}
		for name, content := range data.Scripts {
			if err := os.WriteFile(filepath.Join(sdir, name), content, 0644); err != nil {
				return fmt.Errorf("writing script %s: %w", name, err)
			}
		}
	}

	if len(data.Schemas) > 0 {
		sdir := filepath.Join(dir, "schemas")
		if err := os.MkdirAll(sdir, 0755); err != nil {
			return fmt.Errorf("creating schemas directory: %w", err)
		}
		for name, content := range data.Schemas {
			if err := os.WriteFile(filepath.Join(sdir, name+".json"), content, 0644); err != nil {
				return fmt.Errorf("writing schema %s: %w", name, err)
			}
		}
	}

	for name, content := range data.Docs {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	return nil
}

// ReadDir is the inverse of WriteDir: it assembles package data from a
// directory laid out like an unpacked archive. Templates are discovered by
// directory listing since unpacked trees carry no index.
func ReadDir(dir string) (*PackageData, error) {
	m, err := manifest.ParseFile(filepath.Join(dir, ManifestPath))
	if err != nil {
		return nil, err
	}
	data := &PackageData{Manifest: m}

	tdir := filepath.Join(dir, "templates")
	entries, err := os.ReadDir(tdir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" || entry.Name() == "index.json" {
				continue
			}
			content, err := os.ReadFile(filepath.Join(tdir, entry.Name()))
			if err != nil {
				return nil, fmt.Errorf("reading template %s: %w", entry.Name(), err)
			}
			var t Template
			if err := json.Unmarshal(content, &t); err != nil {
				return nil, fmt.Errorf("parsing template %s: %w", entry.Name(), err)
			}
			data.Templates = append(data.Templates, t)
		}
	}

	sdir := filepath.Join(dir, "scripts")
	if entries, err := os.ReadDir(sdir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			content, err := os.ReadFile(filepath.Join(sdir, entry.Name()))
			if err != nil {
				return nil, fmt.Errorf("reading script %s: %w", entry.Name(), err)
			}
			if data.Scripts == nil {
				data.Scripts = make(map[string][]byte)
			}
			data.Scripts[entry.Name()] = content
		}
	}

	schemaDir := filepath.Join(dir, "schemas")
	if entries, err := os.ReadDir(schemaDir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
				continue
			}
			content, err := os.ReadFile(filepath.Join(schemaDir, entry.Name()))
			if err != nil {
				return nil, fmt.Errorf("reading schema %s: %w", entry.Name(), err)
			}
			if data.Schemas == nil {
				data.Schemas = make(map[string]json.RawMessage)
			}
			name := entry.Name()[:len(entry.Name())-len(".json")]
			data.Schemas[name] = json.RawMessage(content)
		}
	}

	for _, doc := range docNames {
		content, err := os.ReadFile(filepath.Join(dir, doc))
		if err != nil {
			continue
		}
		if data.Docs == nil {
			data.Docs = make(map[string][]byte)
		}
		data.Docs[doc] = content
	}

	return data, nil
}
