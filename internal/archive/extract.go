package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lumen-design/ldip/internal/manifest"
)

// Extract reads a .ldip archive back into package data. The template index
// drives which template members are read; files under templates/ that the
// index does not name are ignored.
func Extract(archive []byte) (*PackageData, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[f.Name] = f
	}

	manifestFile, ok := members[ManifestPath]
	if !ok {
		return nil, ErrMissingManifest
	}
	manifestBytes, err := readMember(manifestFile)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Parse(manifestBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing archived manifest: %w", err)
	}

	data := &PackageData{Manifest: m}

	if indexFile, ok := members[TemplateIndexPath]; ok {
		templates, err := readTemplates(indexFile, members)
		if err != nil {
			return nil, err
		}
		data.Templates = templates
	}

	for name, f := range members {
		switch {
		case strings.HasPrefix(name, ScriptDir) && name != ScriptDir:
			content, err := readMember(f)
			if err != nil {
				return nil, err
			}
			if data.Scripts == nil {
				data.Scripts = make(map[string][]byte)
			}
			data.Scripts[strings.TrimPrefix(name, ScriptDir)] = content
		case strings.HasPrefix(name, SchemaDir) && strings.HasSuffix(name, ".json"):
			content, err := readMember(f)
			if err != nil {
				return nil, err
			}
			if data.Schemas == nil {
				data.Schemas = make(map[string]json.RawMessage)
			}
			key := strings.TrimSuffix(strings.TrimPrefix(name, SchemaDir), ".json")
			data.Schemas[key] = json.RawMessage(content)
		case isDocName(name):
			content, err := readMember(f)
			if err != nil {
				return nil, err
			}
			if data.Docs == nil {
				data.Docs = make(map[string][]byte)
			}
			data.Docs[name] = content
		}
	}

	return data, nil
}

// readTemplates loads the template files the index names, in index order.
func readTemplates(indexFile *zip.File, members map[string]*zip.File) ([]Template, error) {
	indexBytes, err := readMember(indexFile)
	if err != nil {
		return nil, err
	}
	var index templateIndex
	if err := json.Unmarshal(indexBytes, &index); err != nil {
		return nil, fmt.Errorf("parsing template index: %w", err)
	}

	var templates []Template
	for _, entry := range index.Entries {
		f, ok := members[TemplateDir+entry.File]
		if !ok {
			return nil, fmt.Errorf("template index names %s but the archive has no such member", entry.File)
		}
		content, err := readMember(f)
		if err != nil {
			return nil, err
		}
		var t Template
		if err := json.Unmarshal(content, &t); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", entry.File, err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening archive member %s: %w", f.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading archive member %s: %w", f.Name, err)
	}
	return content, nil
}

func isDocName(name string) bool {
	for _, doc := range docNames {
		if name == doc {
			return true
		}
	}
	return false
}
