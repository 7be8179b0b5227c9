package main

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/popalexr/Travel-Recommendation/internal/adapters/cli"
	"github.com/popalexr/Travel-Recommendation/internal/adapters/fs"
	"github.com/popalexr/Travel-Recommendation/internal/initcmd"
	"github.com/popalexr/Travel-Recommendation/internal/store"
	"github.com/popalexr/Travel-Recommendation/internal/usecase"
)

var errDoctorFailed = errors.New("doctor found problems")

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [dir]",
		Short: "Check the config, database and generated page registry",
		Long: `Check the project for common problems:

  - recreates frontend/dist when it is missing (go:embed needs it)
  - validates the config and lists risky settings
  - checks the database connection and schema version
  - checks that the page registry matches the Vue sources`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	out := cli.NewOutput()
	if err := initcmd.RepairDistDir(abs, out); err != nil {
		out.PrintError("%v", err)
		return err
	}

	failed := false

	cfg, err := loadConfig(cmd)
	if err != nil {
		out.PrintError("%v", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		out.PrintError("Config: %v", err)
		return errDoctorFailed
	}
	out.PrintSuccess("Config is valid")
	for _, w := range cfg.Warnings() {
		out.PrintWarning("%s", w)
	}

	ctx := cmd.Context()
	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		out.PrintError("Database: %v", err)
		failed = true
	} else {
		defer db.Close()
		version, err := db.SchemaVersion(ctx)
		switch {
		case err != nil:
			out.PrintError("Database: %v", err)
			failed = true
		case version < store.LatestVersion():
			out.PrintWarning("Schema version %d, latest is %d; run `travelrec migrate`", version, store.LatestVersion())
		default:
			out.PrintSuccess("Database schema version %d", version)
		}
	}

	pages := usecase.NewPagesService(fs.NewOSFileSystem(), cli.NewWriterOutput(cmd.ErrOrStderr()))
	res := pages.Generate(usecase.GenInput{
		FrontendDir: filepath.Join(abs, cfg.Frontend.Dir),
		OutputFile:  filepath.Join(abs, registryFile),
		Check:       true,
	})
	switch {
	case errors.Is(res.Error, usecase.ErrRegistryStale):
		out.PrintWarning("Page registry is stale; run `travelrec pages gen`")
	case res.Error != nil:
		out.PrintError("Pages: %v", res.Error)
		failed = true
	default:
		out.PrintSuccess("Page registry is up to date (%d pages)", len(res.Pages))
	}

	if failed {
		return errDoctorFailed
	}
	out.PrintDone("No problems found")
	return nil
}
