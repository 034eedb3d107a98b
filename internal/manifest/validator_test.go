package manifest

import (
	"strings"
	"testing"
)

const testHostVersion = "2.0.0"

func validManifest(t *testing.T) *ExtensionManifest {
	t.Helper()
	m, err := CreateManifest(Options{
		Metadata: Metadata{
			ID:      "com.example.pack",
			Name:    "Example Pack",
			Version: "1.2.0",
			Type:    TypeTemplatePack,
		},
		Requirements: Requirements{MinAppVersion: "1.0.0"},
		Permissions:  Permissions{Required: []string{PermTemplateRead}},
	})
	if err != nil {
		t.Fatalf("CreateManifest error: %v", err)
	}
	return m
}

func TestIsValidExtensionID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"com.example.pack", true},
		{"com.example", true},
		{"io.lumen.dark-theme", true},
		{"a.b", true},
		{"Com.Example.Test", false},
		{"com..example.test", false},
		{"com", false},
		{".com.example", false},
		{"com.example.", false},
		{"com.exam ple", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := IsValidExtensionID(tt.id); got != tt.valid {
				t.Errorf("IsValidExtensionID(%q) = %v, want %v", tt.id, got, tt.valid)
			}
		})
	}
}

func TestValidateManifest_Valid(t *testing.T) {
	m := validManifest(t)
	result, err := ValidateManifest(m, testHostVersion)
	if err != nil {
		t.Fatalf("ValidateManifest error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid, got errors: %+v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", result.Warnings)
	}
}

func TestValidateManifest_SchemaErrors(t *testing.T) {
	m := validManifest(t)
	m.Metadata.Type = "browser-plugin" // not in the enum
	m.Metadata.Name = ""

	result, err := ValidateManifest(m, testHostVersion)
	if err != nil {
		t.Fatalf("ValidateManifest error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result")
	}

	var sawType bool
	for _, issue := range result.Errors {
		if strings.HasPrefix(issue.Path, "/metadata") && issue.Keyword != "" {
			sawType = true
		}
	}
	if !sawType {
		t.Errorf("expected a schema issue under /metadata, got %+v", result.Errors)
	}
}

func TestValidateManifest_BadID(t *testing.T) {
	m := validManifest(t)
	m.Metadata.ID = "NotAnID"

	result, err := ValidateManifest(m, testHostVersion)
	if err != nil {
		t.Fatalf("ValidateManifest error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result for bad ID")
	}

	found := false
	for _, issue := range result.Errors {
		if issue.Path == "/metadata/id" {
			found = true
		}
	}
	if !found {
		t.Errorf("no issue reported at /metadata/id: %+v", result.Errors)
	}
}

func TestValidateManifest_BadVersion(t *testing.T) {
	m := validManifest(t)
	m.Metadata.Version = "1.0.0.0"

	result, err := ValidateManifest(m, testHostVersion)
	if err != nil {
		t.Fatalf("ValidateManifest error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result for 4-part version")
	}
}

func TestValidateManifest_HostIncompatible(t *testing.T) {
	m := validManifest(t)
	m.Requirements.MinAppVersion = "3.0.0"

	result, err := ValidateManifest(m, testHostVersion)
	if err != nil {
		t.Fatalf("ValidateManifest error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result when host is below min_app_version")
	}
}

func TestValidateManifest_MaxAppVersionRange(t *testing.T) {
	m := validManifest(t)
	m.Requirements.MaxAppVersion = "1.x.x" // host 2.0.0 falls outside

	result, err := ValidateManifest(m, testHostVersion)
	if err != nil {
		t.Fatalf("ValidateManifest error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result when host is outside max_app_version range")
	}
}

func TestValidateManifest_LifecycleHooks(t *testing.T) {
	m := validManifest(t)
	m.Lifecycle = &Lifecycle{
		Install: &Hook{Script: "setup.js", TimeoutMS: 5000},
		Enable:  &Hook{Script: "activate.js"},
	}

	result, err := ValidateManifest(m, testHostVersion)
	if err != nil {
		t.Fatalf("ValidateManifest error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("manifest with lifecycle hooks failed validation: %+v", result.Errors)
	}
}

func TestValidateManifest_HookWithoutScript(t *testing.T) {
	m := validManifest(t)
	m.Lifecycle = &Lifecycle{Install: &Hook{TimeoutMS: 5000}}

	result, err := ValidateManifest(m, testHostVersion)
	if err != nil {
		t.Fatalf("ValidateManifest error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result for a hook with no script")
	}

	found := false
	for _, issue := range result.Errors {
		if strings.HasPrefix(issue.Path, "/lifecycle") {
			found = true
		}
	}
	if !found {
		t.Errorf("no issue reported under /lifecycle: %+v", result.Errors)
	}
}

func TestValidateManifest_NoPermissions(t *testing.T) {
	m, err := CreateManifest(Options{
		Metadata: Metadata{
			ID:      "com.example.plain",
			Name:    "Plain Pack",
			Version: "1.0.0",
			Type:    TypeTheme,
		},
		Requirements: Requirements{MinAppVersion: "1.0.0"},
	})
	if err != nil {
		t.Fatalf("CreateManifest error: %v", err)
	}

	result, err := ValidateManifest(m, testHostVersion)
	if err != nil {
		t.Fatalf("ValidateManifest error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("permissionless manifest failed validation: %+v", result.Errors)
	}
}

func TestValidateManifest_RestrictedPermissionsWarn(t *testing.T) {
	m := validManifest(t)
	m.Permissions.Required = []string{PermTemplateRead, PermCodeExecution, PermFileSystemWrite}

	result, err := ValidateManifest(m, testHostVersion)
	if err != nil {
		t.Fatalf("ValidateManifest error: %v", err)
	}
	// Restricted permissions are advisory, never hard errors.
	if !result.Valid {
		t.Fatalf("restricted permissions must not fail validation: %+v", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("warnings = %d, want 2: %+v", len(result.Warnings), result.Warnings)
	}
}

func TestValidateManifest_UnknownPermissionIsSchemaError(t *testing.T) {
	m := validManifest(t)
	m.Permissions.Required = []string{"telepathy"}

	result, err := ValidateManifest(m, testHostVersion)
	if err != nil {
		t.Fatalf("ValidateManifest error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result for a permission outside the vocabulary")
	}
}
