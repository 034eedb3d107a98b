package manifest

// Per-type factories pre-fill category, tags, and permission defaults.
// They are policy presets over CreateManifest, not separate algorithms.

// NewTemplatePackManifest creates a template-pack manifest with read/create
// template permissions and resource access.
func NewTemplatePackManifest(domain, name, version, minAppVersion string) (*ExtensionManifest, error) {
	return CreateManifest(Options{
		Metadata: Metadata{
			ID:       GenerateManifestID(domain, name),
			Name:     name,
			Version:  version,
			Type:     TypeTemplatePack,
			Category: "templates",
			Tags:     []string{"templates"},
		},
		Requirements: Requirements{MinAppVersion: minAppVersion},
		Permissions: Permissions{
			Required: []string{PermTemplateRead, PermTemplateCreate, PermResourceRead},
		},
	})
}

// NewToolManifest creates a tool manifest with document access defaults.
func NewToolManifest(domain, name, version, minAppVersion string) (*ExtensionManifest, error) {
	return CreateManifest(Options{
		Metadata: Metadata{
			ID:       GenerateManifestID(domain, name),
			Name:     name,
			Version:  version,
			Type:     TypeTool,
			Category: "tools",
			Tags:     []string{"tool"},
		},
		Requirements: Requirements{MinAppVersion: minAppVersion},
		Permissions: Permissions{
			Required: []string{PermDocumentRead, PermDocumentWrite},
			Optional: []string{PermLayerCreate},
		},
	})
}

// NewThemeManifest creates a theme manifest. Themes only read documents and
// resources; they never ask for write access.
func NewThemeManifest(domain, name, version, minAppVersion string) (*ExtensionManifest, error) {
	return CreateManifest(Options{
		Metadata: Metadata{
			ID:       GenerateManifestID(domain, name),
			Name:     name,
			Version:  version,
			Type:     TypeTheme,
			Category: "appearance",
			Tags:     []string{"theme"},
		},
		Requirements: Requirements{MinAppVersion: minAppVersion},
		Permissions: Permissions{
			Required: []string{PermDocumentRead, PermResourceRead},
		},
	})
}
