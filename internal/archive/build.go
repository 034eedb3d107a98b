package archive

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Build serializes package data into a .ldip archive. Member order is
// deterministic — manifest first, then the template index, templates sorted
// by ID, scripts and schemas sorted by name, then docs — so identical input
// produces an identical archive.
func Build(data *PackageData) ([]byte, error) {
	if data == nil || data.Manifest == nil {
		return nil, fmt.Errorf("package data has no manifest")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	manifestBytes, err := json.MarshalIndent(data.Manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing manifest: %w", err)
	}
	if err := writeMember(zw, ManifestPath, manifestBytes); err != nil {
		return nil, err
	}

	if len(data.Templates) > 0 {
		if err := writeTemplates(zw, data.Templates); err != nil {
			return nil, err
		}
	}

	if err := writeSorted(zw, ScriptDir, data.Scripts); err != nil {
		return nil, err
	}

	if len(data.Schemas) > 0 {
		names := sortedKeys(data.Schemas)
		for _, name := range names {
			if err := writeMember(zw, SchemaDir+name+".json", data.Schemas[name]); err != nil {
				return nil, err
			}
		}
	}

	for _, name := range docNames {
		if content, ok := data.Docs[name]; ok {
			if err := writeMember(zw, name, content); err != nil {
				return nil, err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// writeTemplates writes templates/index.json followed by one member per
// template, sorted by ID.
func writeTemplates(zw *zip.Writer, templates []Template) error {
	sorted := make([]Template, len(templates))
	copy(sorted, templates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	index := templateIndex{Version: templateIndexVersion}
	for _, t := range sorted {
		index.Entries = append(index.Entries, templateIndexEntry{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			File:        t.ID + ".json",
		})
	}

	indexBytes, err := json.MarshalIndent(&index, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing template index: %w", err)
	}
	if err := writeMember(zw, TemplateIndexPath, indexBytes); err != nil {
		return err
	}

	for _, t := range sorted {
		body, err := json.MarshalIndent(&t, "", "  ")
		if err != nil {
			return fmt.Errorf("serializing template %s: %w", t.ID, err)
		}
		if err := writeMember(zw, TemplateDir+t.ID+".json", body); err != nil {
			return err
		}
	}
	return nil
}

func writeSorted(zw *zip.Writer, dir string, members map[string][]byte) error {
	for _, name := range sortedKeys(members) {
		if err := writeMember(zw, dir+name, members[name]); err != nil {
			return err
		}
	}
	return nil
}

func writeMember(zw *zip.Writer, name string, content []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating archive member %s: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("writing archive member %s: %w", name, err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
