package archive

import (
	"encoding/json"
	"errors"

	"github.com/lumen-design/ldip/internal/manifest"
)

// Member paths inside the archive.
const (
	ManifestPath      = "manifest.json"
	TemplateIndexPath = "templates/index.json"
	TemplateDir       = "templates/"
	ScriptDir         = "scripts/"
	SchemaDir         = "schemas/"
)

// docNames are the optional documentation members, in archive order.
var docNames = []string{"README.md", "CHANGELOG.md", "LICENSE"}

// templateIndexVersion is written into templates/index.json.
const templateIndexVersion = "1.0"

// Sentinel errors for the extraction and validation paths.
var (
	ErrMissingManifest = errors.New("archive has no manifest.json")
	ErrIntegrity       = errors.New("manifest checksum mismatch: archive content has been altered")
	ErrBadSignature    = errors.New("manifest signature verification failed")
)

// PackageData is the transient in-memory representation of an archive's
// contents, produced when building or extracting. It has no lifecycle of
// its own beyond the operation.
type PackageData struct {
	Manifest  *manifest.ExtensionManifest
	Templates []Template
	Scripts   map[string][]byte
	Schemas   map[string]json.RawMessage
	Docs      map[string][]byte
}

// Template is one template document carried by a template pack.
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Body        json.RawMessage `json:"body"`
}

// templateIndex is the templates/index.json structure. Its entries are the
// source of truth for which template members exist; stray files under
// templates/ are ignored on extraction.
type templateIndex struct {
	Version string               `json:"version"`
	Entries []templateIndexEntry `json:"entries"`
}

type templateIndexEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	File        string `json:"file"`
}

// SizeInfo reports archive sizes.
type SizeInfo struct {
	Compressed   int64 // archive byte length
	Uncompressed int64 // sum of decompressed member lengths
}
