// Command travelrec runs the Travel Recommendation server and its
// maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/popalexr/Travel-Recommendation/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "travelrec",
		Short: "Travel recommendation chat server",
		Long: `travelrec serves the travel recommendation web app: accounts, the
LLM-backed chat, document uploads and the Inertia front-end.

Examples:
  travelrec init ./mytrip
  travelrec serve --dev
  travelrec pages gen`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", config.DefaultPath, "path to the YAML config file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newPagesCmd())
	root.AddCommand(newUserCmd())
	root.AddCommand(newSecretCmd())
	return root
}

// loadConfig reads the file named by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
