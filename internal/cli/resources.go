package cli

import (
	"fmt"
	"os"

	"github.com/lumen-design/ldip/internal/cloud"
	"github.com/lumen-design/ldip/internal/config"
	"github.com/spf13/cobra"
)

var (
	resourcesNoCache  bool
	resourcesFallback string
	resourcesOutput   string
)

func init() {
	resourcesFetchCmd.Flags().BoolVar(&resourcesNoCache, "no-cache", false, "Bypass the resource cache")
	resourcesFetchCmd.Flags().StringVar(&resourcesFallback, "fallback", string(cloud.FallbackNone), "Fallback policy on failure (placeholder, cache, none)")
	resourcesFetchCmd.Flags().StringVarP(&resourcesOutput, "output", "o", "", "Write the payload to a file instead of stdout")
	resourcesCmd.AddCommand(resourcesFetchCmd)
	resourcesCmd.AddCommand(resourcesPrefetchCmd)
	resourcesCmd.AddCommand(resourcesManifestCmd)
	rootCmd.AddCommand(resourcesCmd)
}

// newCloudManager wires the resource manager from configured cloud settings.
func newCloudManager() *cloud.Manager {
	return cloud.NewManager(cloud.Options{
		CacheTTL:         config.CloudCacheTTL(),
		FailureThreshold: config.CloudFailureThreshold(),
		ResetTimeout:     config.CloudResetTimeout(),
		FetchTimeout:     config.CloudFetchTimeout(),
		Logger:           logger,
	})
}

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Fetch and inspect cloud-hosted extension resources",
}

var resourcesFetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a single resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newCloudManager()
		payload, err := m.LoadResource(cmd.Context(), args[0], cloud.LoadOptions{
			NoCache:  resourcesNoCache,
			Fallback: cloud.FallbackPolicy(resourcesFallback),
		})
		if err != nil {
			return err
		}

		if resourcesOutput != "" {
			if err := os.WriteFile(resourcesOutput, payload, 0644); err != nil {
				return fmt.Errorf("writing resource: %w", err)
			}
			fmt.Printf("Wrote %d bytes to %s\n", len(payload), resourcesOutput)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(payload)
		return err
	},
}

var resourcesPrefetchCmd = &cobra.Command{
	Use:   "prefetch <url>...",
	Short: "Warm the cache for a batch of resources",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newCloudManager()
		m.PrefetchResources(cmd.Context(), args)
		fmt.Printf("Prefetched %d resources\n", len(args))
		return nil
	},
}

var resourcesManifestCmd = &cobra.Command{
	Use:   "manifest <base-url>",
	Short: "Fetch and summarize a remote resource manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newCloudManager()
		rm, err := m.LoadResourceManifest(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Resources: %d\n", len(rm.Resources))
		for _, ref := range rm.Resources {
			fmt.Printf("  %s  %s\n", ref.ID, ref.URL)
		}
		return nil
	},
}
