package main

import (
	"context"
	"fmt"

	"folio/internal/bootstrap"
	"folio/internal/database"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := database.Migrate(rt.DB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables\n", len(database.PersistentModels()))
			return nil
		},
	}
}
