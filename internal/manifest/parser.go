package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Parse decodes manifest bytes. JSON is the canonical wire form; YAML is
// accepted as an authoring convenience and normalized to the same structure.
func Parse(data []byte) (*ExtensionManifest, error) {
	var m ExtensionManifest
	if jsonErr := json.Unmarshal(data, &m); jsonErr == nil {
		return &m, nil
	}
	if yamlErr := yaml.Unmarshal(data, &m); yamlErr != nil {
		return nil, fmt.Errorf("parsing manifest: %w", yamlErr)
	}
	return &m, nil
}

// ParseFile reads and decodes a manifest file. The extension decides the
// decoder: .yaml/.yml go through YAML, everything else through JSON.
func ParseFile(path string) (*ExtensionManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m ExtensionManifest
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing YAML manifest %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing JSON manifest %s: %w", path, err)
		}
	}
	return &m, nil
}

// Marshal serializes a manifest to its canonical indented JSON form.
func Marshal(m *ExtensionManifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile writes a manifest as canonical JSON to path.
func WriteFile(path string, m *ExtensionManifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}
