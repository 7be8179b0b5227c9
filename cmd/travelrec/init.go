package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/popalexr/Travel-Recommendation/internal/adapters/cli"
	"github.com/popalexr/Travel-Recommendation/internal/initcmd"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a config file, .env and data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")

			out := cli.NewOutput()
			if err := initcmd.Run(abs, force, out); err != nil {
				out.PrintError("%v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "overwrite existing files")
	return cmd
}
