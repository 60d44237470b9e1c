// Command folioctl is the admin CLI for folio: schema migration, demo data
// and content authoring.
package main

import (
	"fmt"
	"os"

	"folio/internal/config"
	"folio/internal/observability"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "folioctl",
		Short:         "Administer a folio deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(migrateCmd(), seedCmd(), contentCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "folioctl version %s\n", version)
		},
	})
	return cmd
}

// loadConfig reads the same configuration the server uses and points the
// shared logger at its environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	observability.Configure(cfg.Env)
	return cfg, nil
}
