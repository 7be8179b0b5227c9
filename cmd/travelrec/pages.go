package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/popalexr/Travel-Recommendation/internal/adapters/cli"
	"github.com/popalexr/Travel-Recommendation/internal/adapters/fs"
	"github.com/popalexr/Travel-Recommendation/internal/assets"
	"github.com/popalexr/Travel-Recommendation/internal/config"
	"github.com/popalexr/Travel-Recommendation/internal/pages"
	"github.com/popalexr/Travel-Recommendation/internal/usecase"
)

const registryFile = "internal/pages/registry_gen.go"

func newPagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Generate and inspect the Inertia page registry",
	}

	gen := &cobra.Command{
		Use:   "gen",
		Short: "Regenerate " + registryFile + " from the Vue pages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPagesGen(cmd, false)
		},
	}
	gen.Flags().String("output", registryFile, "generated Go file")

	check := &cobra.Command{
		Use:   "check [page...]",
		Short: "Resolve the named pages, or verify the registry is up to date",
		Long: `With page names, resolve each one and fail on unknown pages.
Without arguments, fail when ` + registryFile + ` does not match the Vue sources.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runPagesGen(cmd, true)
			}
			return runPagesResolve(cmd, args)
		},
	}
	check.Flags().String("output", registryFile, "generated Go file")

	list := &cobra.Command{
		Use:   "list",
		Short: "Show every registered page and the layout it resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPagesResolve(cmd, nil)
		},
	}

	cmd.AddCommand(gen, check, list)
	return cmd
}

func runPagesGen(cmd *cobra.Command, check bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	svc := usecase.NewPagesService(fs.NewOSFileSystem(), cli.NewOutput())
	res := svc.Generate(usecase.GenInput{
		FrontendDir: cfg.Frontend.Dir,
		OutputFile:  output,
		Check:       check,
	})
	return res.Error
}

func runPagesResolve(cmd *cobra.Command, names []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cli.NewOutput()

	manifest := distManifest(cfg, out)
	registry := pages.Generated(manifest)

	svc := usecase.NewPagesService(fs.NewOSFileSystem(), out)
	res := svc.Resolve(cmd.Context(), usecase.ResolveInput{
		Resolver: pages.NewResolver(registry, pages.FallbackLayout(manifest), pages.WithManifest(manifest)),
		Registry: registry,
		Names:    names,
	})
	return res.Error
}

// distManifest reads the Vite manifest from the build output on disk. Without
// one the loaders fall back to the output naming rules.
func distManifest(cfg *config.Config, out *cli.Output) *assets.Store {
	store := assets.NewStore(os.DirFS(cfg.Frontend.DistDir))
	if err := store.Reload(); err != nil {
		out.PrintWarning("%v", err)
	}
	return store
}
