package manifest

import "time"

// CurrentManifestVersion is stamped into generated manifests. The field is a
// forward-compatibility tag and is not otherwise interpreted.
const CurrentManifestVersion = "1.0"

// SchemaURL identifies the manifest schema for editors and tooling.
const SchemaURL = "https://schemas.lumen.design/extension-manifest/v1.json"

// ExtensionManifest is the declarative descriptor of an extension. Once the
// integrity block is stamped the record is immutable: any change to the body
// invalidates the stored checksum.
type ExtensionManifest struct {
	Schema          string            `json:"$schema,omitempty" yaml:"$schema,omitempty"`
	ManifestVersion string            `json:"manifest_version" yaml:"manifest_version"`
	Metadata        Metadata          `json:"metadata" yaml:"metadata"`
	Requirements    Requirements      `json:"requirements" yaml:"requirements"`
	Resources       *Resources        `json:"resources,omitempty" yaml:"resources,omitempty"`
	Permissions     Permissions       `json:"permissions" yaml:"permissions"`
	Lifecycle       *Lifecycle        `json:"lifecycle,omitempty" yaml:"lifecycle,omitempty"`
	Monitoring      *Monitoring       `json:"monitoring,omitempty" yaml:"monitoring,omitempty"`
	Extended        *ExtendedMetadata `json:"metadata_extended,omitempty" yaml:"metadata_extended,omitempty"`
	Integrity       *Integrity        `json:"integrity,omitempty" yaml:"integrity,omitempty"`
}

// Metadata identifies and classifies an extension.
type Metadata struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Version     string   `json:"version" yaml:"version"`
	Type        string   `json:"type" yaml:"type"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string   `json:"author,omitempty" yaml:"author,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Requirements declares host compatibility and dependencies on other extensions.
type Requirements struct {
	MinAppVersion string       `json:"min_app_version" yaml:"min_app_version"`
	MaxAppVersion string       `json:"max_app_version,omitempty" yaml:"max_app_version,omitempty"`
	Platforms     []string     `json:"platforms,omitempty" yaml:"platforms,omitempty"`
	Dependencies  []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Dependency declares a version-constrained dependency on another extension.
type Dependency struct {
	ID           string `json:"id" yaml:"id"`
	VersionRange string `json:"version_range" yaml:"version_range"`
	Optional     bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Resources points at cloud-hosted asset manifests, relative to BaseURL.
type Resources struct {
	BaseURL   string            `json:"base_url" yaml:"base_url"`
	Manifests map[string]string `json:"manifests,omitempty" yaml:"manifests,omitempty"`
}

// Permissions partitions the capabilities an extension asks for.
// Required and Optional are drawn from the closed permission vocabulary;
// RestrictedAPIs stays a free-form list for forward extensibility.
type Permissions struct {
	Required       []string `json:"required" yaml:"required"`
	Optional       []string `json:"optional,omitempty" yaml:"optional,omitempty"`
	RestrictedAPIs []string `json:"restricted_apis,omitempty" yaml:"restricted_apis,omitempty"`
}

// Lifecycle names the hook scripts to run per phase. The core only decides
// when a hook runs; execution belongs to an external sandbox.
type Lifecycle struct {
	Install   *Hook `json:"install,omitempty" yaml:"install,omitempty"`
	Enable    *Hook `json:"enable,omitempty" yaml:"enable,omitempty"`
	Disable   *Hook `json:"disable,omitempty" yaml:"disable,omitempty"`
	Uninstall *Hook `json:"uninstall,omitempty" yaml:"uninstall,omitempty"`
}

// Hook references a lifecycle script by name with an execution timeout.
type Hook struct {
	Script    string `json:"script" yaml:"script"`
	TimeoutMS int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// Monitoring holds opt-in observability flags. All default to off.
type Monitoring struct {
	ErrorReporting     bool `json:"error_reporting" yaml:"error_reporting"`
	UsageMetrics       bool `json:"usage_metrics" yaml:"usage_metrics"`
	PerformanceTracing bool `json:"performance_tracing" yaml:"performance_tracing"`
}

// ExtendedMetadata records generation provenance.
type ExtendedMetadata struct {
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
	BuildInfo *BuildInfo `json:"build_info,omitempty" yaml:"build_info,omitempty"`
}

// BuildInfo identifies the toolchain run that produced the manifest.
type BuildInfo struct {
	BuildHash      string `json:"build_hash" yaml:"build_hash"`
	BuilderVersion string `json:"builder_version,omitempty" yaml:"builder_version,omitempty"`
}

// Integrity carries the tamper-evidence checksum and optional signature.
// The checksum covers the manifest serialized without this block.
type Integrity struct {
	Checksum     string `json:"checksum" yaml:"checksum"`
	Algorithm    string `json:"algorithm" yaml:"algorithm"`
	Signature    string `json:"signature,omitempty" yaml:"signature,omitempty"`
	SignatureAlg string `json:"signature_algorithm,omitempty" yaml:"signature_algorithm,omitempty"`
}

// Extension type constants for the metadata.type discriminator.
const (
	TypeTemplatePack = "template-pack"
	TypeTool         = "tool"
	TypeTheme        = "theme"
	TypeIntegration  = "integration"
	TypeResourcePack = "resource-pack"
)

// ValidTypes contains all valid extension type values.
var ValidTypes = []string{
	TypeTemplatePack,
	TypeTool,
	TypeTheme,
	TypeIntegration,
	TypeResourcePack,
}

// Permission vocabulary. Required and optional permissions must come from
// this closed set.
const (
	PermDocumentRead      = "document-read"
	PermDocumentWrite     = "document-write"
	PermTemplateCreate    = "template-create"
	PermTemplateRead      = "template-read"
	PermLayerCreate       = "layer-create"
	PermResourceRead      = "resource-read"
	PermNetworkAccess     = "network-access"
	PermCloudStorageRead  = "cloud-storage-read"
	PermCloudStorageWrite = "cloud-storage-write"
	PermFileSystemRead    = "file-system-read"
	PermFileSystemWrite   = "file-system-write"
	PermExternalAuth      = "external-auth"
	PermCodeExecution     = "code-execution"
	PermNativeModule      = "native-module"
)

// ValidPermissions contains every permission the host recognizes.
var ValidPermissions = []string{
	PermDocumentRead,
	PermDocumentWrite,
	PermTemplateCreate,
	PermTemplateRead,
	PermLayerCreate,
	PermResourceRead,
	PermNetworkAccess,
	PermCloudStorageRead,
	PermCloudStorageWrite,
	PermFileSystemRead,
	PermFileSystemWrite,
	PermExternalAuth,
	PermCodeExecution,
	PermNativeModule,
}

// RestrictedPermissions require explicit user consent before an extension
// holding them may be enabled.
var RestrictedPermissions = []string{
	PermCodeExecution,
	PermNativeModule,
	PermFileSystemWrite,
}
