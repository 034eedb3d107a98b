package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/lumen-design/ldip/internal/archive"
	"github.com/lumen-design/ldip/internal/branding"
	"github.com/spf13/cobra"
)

var unpackOutput string

func init() {
	unpackCmd.Flags().StringVarP(&unpackOutput, "output", "o", "", "Output directory (defaults to the archive name without extension)")
	rootCmd.AddCommand(unpackCmd)
}

var unpackCmd = &cobra.Command{
	Use:   "unpack <archive>",
	Short: "Extract an archive into an editable directory",
	Long: `Extract a packaged extension back into a project directory. The archive
is tamper-checked first; a manifest whose checksum does not match is refused.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}
		data, err := archive.Validate(raw)
		if err != nil {
			return fmt.Errorf("validating archive: %w", err)
		}

		output := unpackOutput
		if output == "" {
			output = strings.TrimSuffix(path, branding.PackageExt())
			if output == path {
				output = path + ".unpacked"
			}
		}
		if err := archive.WriteDir(output, data); err != nil {
			return err
		}

		fmt.Printf("Unpacked %s v%s into %s\n",
			data.Manifest.Metadata.ID, data.Manifest.Metadata.Version, output)
		return nil
	},
}
