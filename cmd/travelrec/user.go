package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/popalexr/Travel-Recommendation/internal/account"
	"github.com/popalexr/Travel-Recommendation/internal/adapters/cli"
	"github.com/popalexr/Travel-Recommendation/internal/store"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	create := &cobra.Command{
		Use:   "create <email>",
		Short: "Create an account; the password is read from the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runUserCreate,
	}
	create.Flags().String("first-name", "", "first name")
	create.Flags().String("last-name", "", "last name")
	cmd.AddCommand(create)
	return cmd
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cli.NewOutput()
	out.PrintHeader("travelrec user create")

	password, err := readSecret("Password: ")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.Migrate(ctx); err != nil {
		return err
	}

	creds := account.Credentials{Email: args[0], Password: password}
	if v, _ := cmd.Flags().GetString("first-name"); v != "" {
		creds.FirstName = &v
	}
	if v, _ := cmd.Flags().GetString("last-name"); v != "" {
		creds.LastName = &v
	}

	profile, err := account.NewService(store.NewUsers(db)).Register(ctx, creds)
	if err != nil {
		var verr *account.ValidationError
		if errors.As(err, &verr) {
			for field, msg := range verr.Fields {
				out.PrintError("%s: %s", field, msg)
			}
		} else {
			out.PrintError("%v", err)
		}
		return err
	}
	out.PrintDone("Created user %d (%s)", profile.ID, profile.Email)
	return nil
}

// readSecret prompts without echo on a terminal and reads one line otherwise.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		var line string
		if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
			return "", fmt.Errorf("read from stdin: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
