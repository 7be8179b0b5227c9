package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/popalexr/Travel-Recommendation/internal/adapters/cli"
	"github.com/popalexr/Travel-Recommendation/internal/config"
)

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Store API keys and the JWT secret in the OS keyring",
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "set <name>",
		Short:     "Store one secret (" + strings.Join(config.SecretNames, ", ") + ")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.SecretNames,
		RunE: func(_ *cobra.Command, args []string) error {
			value, err := readSecret(args[0] + ": ")
			if err != nil {
				return err
			}
			out := cli.NewOutput()
			if err := config.StoreSecret(args[0], value); err != nil {
				out.PrintError("%v", err)
				return err
			}
			out.PrintSuccess("Stored %s in the OS keyring", args[0])
			return nil
		},
	})
	return cmd
}
