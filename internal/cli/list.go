package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed extensions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}

		extensions := reg.List()
		if len(extensions) == 0 {
			fmt.Println("No extensions installed.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tVERSION\tTYPE\tSTATUS")
		for _, ext := range extensions {
			status := string(ext.Status)
			if ext.Error != "" {
				status += " (" + ext.Error + ")"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				ext.ID, ext.Manifest.Metadata.Version, ext.Manifest.Metadata.Type, status)
		}
		return w.Flush()
	},
}
