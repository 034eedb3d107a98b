package cli

import (
	"errors"
	"fmt"

	"github.com/lumen-design/ldip/internal/config"
	"github.com/lumen-design/ldip/internal/registry"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(installCmd)
}

// openRegistry builds a registry over the configured extensions directory.
func openRegistry() (*registry.Registry, error) {
	reg, err := registry.New(registry.Options{
		HostVersion: config.HostVersion(),
		Root:        config.ExtensionsDir(),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening extension registry: %w", err)
	}
	return reg, nil
}

var installCmd = &cobra.Command{
	Use:   "install <archive>",
	Short: "Install an extension from a packaged archive",
	Long: `Validate and install an extension archive. The archive is tamper-checked,
the manifest validated against the configured host version, and required
dependencies resolved before any files are written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}

		ext, err := reg.Install(cmd.Context(), args[0])
		if err != nil {
			var verr *registry.ValidationError
			if errors.As(err, &verr) {
				for _, issue := range verr.Result.Errors {
					fmt.Printf("error: %s: %s\n", issue.Path, issue.Message)
				}
			}
			var derr *registry.DependencyError
			if errors.As(err, &derr) {
				for _, id := range derr.Missing {
					fmt.Printf("missing dependency: %s\n", id)
				}
				for _, msg := range derr.Incompatible {
					fmt.Printf("incompatible dependency: %s\n", msg)
				}
			}
			return err
		}

		fmt.Printf("Installed %s v%s (status: %s)\n",
			ext.ID, ext.Manifest.Metadata.Version, ext.Status)
		fmt.Printf("Run `%s enable %s` to activate it.\n", rootCmd.Use, ext.ID)
		return nil
	},
}
