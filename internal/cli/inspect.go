package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lumen-design/ldip/internal/archive"
	"github.com/spf13/cobra"
)

var inspectJSON bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print the full manifest as JSON")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Show metadata and contents of an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}
		data, err := archive.Validate(raw)
		if err != nil {
			return fmt.Errorf("validating archive: %w", err)
		}

		if inspectJSON {
			out, err := json.MarshalIndent(data.Manifest, "", "  ")
			if err != nil {
				return fmt.Errorf("serializing manifest: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		m := data.Manifest
		info, err := archive.Size(raw)
		if err != nil {
			return err
		}

		fmt.Printf("ID:          %s\n", m.Metadata.ID)
		fmt.Printf("Name:        %s\n", m.Metadata.Name)
		fmt.Printf("Version:     %s\n", m.Metadata.Version)
		fmt.Printf("Type:        %s\n", m.Metadata.Type)
		if m.Metadata.Description != "" {
			fmt.Printf("Description: %s\n", m.Metadata.Description)
		}
		fmt.Printf("Min app:     %s\n", m.Requirements.MinAppVersion)
		if m.Requirements.MaxAppVersion != "" {
			fmt.Printf("Max app:     %s\n", m.Requirements.MaxAppVersion)
		}
		if len(m.Permissions.Required) > 0 {
			fmt.Printf("Permissions: %s\n", strings.Join(m.Permissions.Required, ", "))
		}
		if len(m.Requirements.Dependencies) > 0 {
			fmt.Println("Dependencies:")
			for _, dep := range m.Requirements.Dependencies {
				optional := ""
				if dep.Optional {
					optional = " (optional)"
				}
				fmt.Printf("  %s %s%s\n", dep.ID, dep.VersionRange, optional)
			}
		}
		fmt.Printf("Contents:    %d templates, %d scripts, %d schemas\n",
			len(data.Templates), len(data.Scripts), len(data.Schemas))
		fmt.Printf("Size:        %d bytes compressed, %d uncompressed\n",
			info.Compressed, info.Uncompressed)
		if m.Integrity != nil && m.Integrity.Signature != "" {
			fmt.Printf("Signed:      yes (%s)\n", m.Integrity.SignatureAlg)
		}
		return nil
	},
}
