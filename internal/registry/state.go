package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lumen-design/ldip/internal/archive"
	"github.com/lumen-design/ldip/internal/manifest"
)

// stateFileName holds the persisted registry table inside the root dir.
const stateFileName = "registry.json"

// registryState is the on-disk form of the registry table. Manifests are not
// duplicated here; they are re-read from each extension's install directory.
type registryState struct {
	Version    string       `json:"version"`
	Extensions []*Extension `json:"extensions"`
}

const stateVersion = "1"

func (r *Registry) statePath() string {
	return filepath.Join(r.root, stateFileName)
}

// loadState restores the registry table written by a previous process.
// Entries whose install directory or manifest has gone missing are dropped
// with a warning rather than failing the whole load.
func (r *Registry) loadState() error {
	data, err := os.ReadFile(r.statePath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading registry state: %w", err)
	}

	var state registryState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("parsing registry state: %w", err)
	}

	for _, ext := range state.Extensions {
		m, err := manifest.ParseFile(filepath.Join(ext.InstallPath, archive.ManifestPath))
		if err != nil {
			r.logger.Warn("dropping registry entry with unreadable manifest", "id", ext.ID, "err", err)
			continue
		}
		ext.Manifest = m
		r.extensions[ext.ID] = ext
	}
	return nil
}

// saveState writes the registry table atomically (write temp, rename).
func (r *Registry) saveState() error {
	if err := os.MkdirAll(r.root, 0755); err != nil {
		return fmt.Errorf("creating registry root: %w", err)
	}

	state := registryState{Version: stateVersion}
	for _, ext := range r.extensions {
		state.Extensions = append(state.Extensions, ext)
	}

	data, err := json.MarshalIndent(&state, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing registry state: %w", err)
	}

	tmp := r.statePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing registry state: %w", err)
	}
	if err := os.Rename(tmp, r.statePath()); err != nil {
		return fmt.Errorf("replacing registry state: %w", err)
	}
	return nil
}
