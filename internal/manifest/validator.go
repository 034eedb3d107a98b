package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/lumen-design/ldip/internal/version"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/manifest.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// extensionIDPattern matches reverse-domain IDs: two or more dot-separated
// segments of lowercase alphanumerics and hyphens.
var extensionIDPattern = regexp.MustCompile(`^[a-z0-9-]+(\.[a-z0-9-]+)+$`)

// ValidationIssue is a single problem found in a manifest.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/metadata/version")
	Message string // Human-readable message
	Keyword string // Schema keyword that failed, empty for semantic issues
}

// ValidationResult is the combined outcome of all validation layers.
// Errors are hard failures; Warnings are advisory (restricted permissions
// gate user consent, not technical validity).
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

// IsValidExtensionID reports whether id is a well-formed reverse-domain
// extension ID.
func IsValidExtensionID(id string) bool {
	return extensionIDPattern.MatchString(id)
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("manifest.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("manifest.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// ValidateManifest runs all three validation layers against the manifest:
// structural (JSON schema), semantic (ID format, version format, host
// compatibility), and permission classification. The error return is for
// schema compilation or serialization failures only; validation problems are
// reported in the result.
func ValidateManifest(m *ExtensionManifest, hostVersion string) (*ValidationResult, error) {
	result := &ValidationResult{}

	schemaIssues, err := validateSchema(m)
	if err != nil {
		return nil, err
	}
	result.Errors = append(result.Errors, schemaIssues...)

	result.Errors = append(result.Errors, validateSemantics(m, hostVersion)...)
	result.Warnings = append(result.Warnings, classifyPermissions(m)...)

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// validateSchema checks the manifest's serialized form against the embedded
// JSON schema and returns structural issues with instance paths.
func validateSchema(m *ExtensionManifest) ([]ValidationIssue, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("serializing manifest: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil, nil
	}

	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}
	return extractIssues(validationErr), nil
}

// validateSemantics runs the checks the schema cannot express: strict ID and
// version grammar, and compatibility with the running host version.
func validateSemantics(m *ExtensionManifest, hostVersion string) []ValidationIssue {
	var issues []ValidationIssue

	if !IsValidExtensionID(m.Metadata.ID) {
		issues = append(issues, ValidationIssue{
			Path:    "/metadata/id",
			Message: fmt.Sprintf("%q is not a valid reverse-domain extension ID", m.Metadata.ID),
		})
	}

	if !version.IsValidSemVer(m.Metadata.Version) {
		issues = append(issues, ValidationIssue{
			Path:    "/metadata/version",
			Message: fmt.Sprintf("%q is not a valid semantic version", m.Metadata.Version),
		})
	}

	min := m.Requirements.MinAppVersion
	if !version.IsValidSemVer(min) {
		issues = append(issues, ValidationIssue{
			Path:    "/requirements/min_app_version",
			Message: fmt.Sprintf("%q is not a valid semantic version", min),
		})
		return issues
	}

	compatible, err := version.IsCompatible(hostVersion, min, m.Requirements.MaxAppVersion)
	if err != nil {
		issues = append(issues, ValidationIssue{
			Path:    "/requirements",
			Message: fmt.Sprintf("checking host compatibility: %v", err),
		})
	} else if !compatible {
		issues = append(issues, ValidationIssue{
			Path:    "/requirements",
			Message: fmt.Sprintf("extension requires host %s–%s, running host is %s", min, orAny(m.Requirements.MaxAppVersion), hostVersion),
		})
	}

	return issues
}

func orAny(max string) string {
	if max == "" {
		return "any"
	}
	return max
}

// classifyPermissions partitions required permissions against the restricted
// set. Overlap is advisory: it blocks user consent, not installation.
func classifyPermissions(m *ExtensionManifest) []ValidationIssue {
	restricted := make(map[string]bool, len(RestrictedPermissions))
	for _, p := range RestrictedPermissions {
		restricted[p] = true
	}

	var warnings []ValidationIssue
	for _, p := range m.Permissions.Required {
		if restricted[p] {
			warnings = append(warnings, ValidationIssue{
				Path:    "/permissions/required",
				Message: fmt.Sprintf("permission %q is restricted and requires explicit user consent", p),
			})
		}
	}
	return warnings
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectValidationIssues(ve, &issues)

	if len(issues) == 0 {
		return []ValidationIssue{{Message: ve.Error()}}
	}
	return deduplicateIssues(issues)
}

// collectValidationIssues recursively walks the error tree to find leaf
// errors with specific property information.
func collectValidationIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) == 0 {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		if len(ve.InstanceLocation) == 0 {
			path = ""
		}

		keyword := ""
		if ve.ErrorKind != nil {
			kwPath := ve.ErrorKind.KeywordPath()
			if len(kwPath) > 0 {
				keyword = kwPath[len(kwPath)-1]
			}
		}

		msg := ""
		if ve.ErrorKind != nil {
			msg = ve.ErrorKind.LocalizedString(printer)
		}

		// Skip generic container errors that aren't informative.
		if keyword == "oneOf" || keyword == "allOf" || keyword == "$ref" || keyword == "" {
			return
		}

		*issues = append(*issues, ValidationIssue{
			Path:    path,
			Message: msg,
			Keyword: keyword,
		})
		return
	}

	for _, cause := range ve.Causes {
		collectValidationIssues(cause, issues)
	}
}

// deduplicateIssues removes duplicate issues (same path + keyword + message).
func deduplicateIssues(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[string]bool)
	var result []ValidationIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}
