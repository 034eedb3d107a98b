package cli

import (
	"fmt"

	"github.com/lumen-design/ldip/internal/branding"
	"github.com/lumen-design/ldip/internal/manifest"
	"github.com/lumen-design/ldip/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	createType    string
	createDomain  string
	createVersion string
	createMinApp  string
)

func init() {
	createCmd.Flags().StringVarP(&createType, "type", "t", manifest.TypeTemplatePack, "Extension type (template-pack, tool, theme)")
	createCmd.Flags().StringVarP(&createDomain, "domain", "d", "", "Vendor domain used to derive the extension ID (e.g. com.acme)")
	createCmd.Flags().StringVar(&createVersion, "version", "0.1.0", "Initial extension version")
	createCmd.Flags().StringVar(&createMinApp, "min-app", "1.0.0", "Minimum host application version")
	createCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create <name> <dir>",
	Short: "Scaffold a new extension project",
	Long: `Create a starter extension project with a stamped manifest, ready to
edit and pack.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, dir := args[0], args[1]

		id, err := scaffold.Generate(scaffold.Options{
			Type:          createType,
			Name:          name,
			Domain:        createDomain,
			Version:       createVersion,
			MinAppVersion: createMinApp,
			Dir:           dir,
		}, branding.DisplayName(), branding.CLIName())
		if err != nil {
			return fmt.Errorf("scaffolding extension: %w", err)
		}

		fmt.Printf("Created %s extension %s in %s\n", createType, id, dir)
		return nil
	},
}
