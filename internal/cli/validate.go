package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lumen-design/ldip/internal/archive"
	"github.com/lumen-design/ldip/internal/branding"
	"github.com/lumen-design/ldip/internal/config"
	"github.com/lumen-design/ldip/internal/manifest"
	"github.com/spf13/cobra"
)

var validateHostVersion string

func init() {
	validateCmd.Flags().StringVar(&validateHostVersion, "host-version", "", "Host application version to validate against (defaults to configured host_version)")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <archive-or-manifest>",
	Short: "Validate an extension archive or manifest file",
	Long: `Validate a packaged archive (tamper check plus manifest validation) or a
bare manifest file (manifest validation only). Errors block installation;
warnings, such as restricted permission requests, do not.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		hostVersion := validateHostVersion
		if hostVersion == "" {
			hostVersion = config.HostVersion()
		}

		m, err := loadManifestFrom(path)
		if err != nil {
			return err
		}

		result, err := manifest.ValidateManifest(m, hostVersion)
		if err != nil {
			return fmt.Errorf("validating manifest: %w", err)
		}

		for _, issue := range result.Errors {
			fmt.Printf("error: %s: %s\n", issue.Path, issue.Message)
		}
		for _, issue := range result.Warnings {
			fmt.Printf("warning: %s: %s\n", issue.Path, issue.Message)
		}

		if !result.Valid {
			return fmt.Errorf("%s is invalid (%d errors)", path, len(result.Errors))
		}
		fmt.Printf("%s is valid (%d warnings)\n", path, len(result.Warnings))
		return nil
	},
}

// loadManifestFrom reads a manifest either from a packaged archive (running
// the tamper check on the way) or directly from a manifest file.
func loadManifestFrom(path string) (*manifest.ExtensionManifest, error) {
	if filepath.Ext(path) != branding.PackageExt() {
		return manifest.ParseFile(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	data, err := archive.Validate(raw)
	if errors.Is(err, archive.ErrIntegrity) {
		return nil, fmt.Errorf("%s failed the tamper check: manifest checksum mismatch", path)
	}
	if err != nil {
		return nil, fmt.Errorf("validating archive: %w", err)
	}
	return data.Manifest, nil
}
