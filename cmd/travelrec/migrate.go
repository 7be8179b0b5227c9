package main

import (
	"github.com/spf13/cobra"

	"github.com/popalexr/Travel-Recommendation/internal/adapters/cli"
	"github.com/popalexr/Travel-Recommendation/internal/store"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cli.NewOutput()
			out.PrintHeader("travelrec migrate")

			ctx := cmd.Context()
			db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
			if err != nil {
				out.PrintError("%v", err)
				return err
			}
			defer db.Close()

			applied, err := db.Migrate(ctx)
			if err != nil {
				out.PrintError("%v", err)
				return err
			}
			if applied == 0 {
				out.PrintSuccess("Schema is up to date (version %d)", store.LatestVersion())
				return nil
			}
			out.PrintDone("Applied %d migrations, schema version %d", applied, store.LatestVersion())
			return nil
		},
	}
}
