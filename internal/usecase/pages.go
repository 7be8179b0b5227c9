package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/popalexr/Travel-Recommendation/internal/adapters/cli"
	"github.com/popalexr/Travel-Recommendation/internal/build"
	"github.com/popalexr/Travel-Recommendation/internal/pages"
)

// ErrRegistryStale is returned by a check run when the generated registry
// differs from the page sources.
var ErrRegistryStale = errors.New("page registry is out of date")

type GenInput struct {
	FrontendDir string
	OutputFile  string
	Package     string
	// Check compares instead of writing.
	Check bool
}

type GenOutput struct {
	Pages   []build.PageInfo
	Changed bool
	Success bool
	Error   error
}

type PagesService struct {
	fs  FileSystem
	cli CLIOutput
}

func NewPagesService(fs FileSystem, cli CLIOutput) *PagesService {
	return &PagesService{fs: fs, cli: cli}
}

// Generate scans the page sources and writes the registry when it changed.
func (s *PagesService) Generate(input GenInput) GenOutput {
	s.cli.PrintHeader("travelrec pages gen")

	pkg := input.Package
	if pkg == "" {
		pkg = "pages"
	}
	report := cli.NewReport(s.cli, input.OutputFile)
	defer report.Render()

	step := report.StartStep("Scan " + filepath.Join(input.FrontendDir, build.PagesDir))
	found, warnings, err := build.ScanPages(s.fs.DirFS(input.FrontendDir))
	report.EndStep(step, err)
	if err != nil {
		return GenOutput{Error: fmt.Errorf("failed to scan pages: %w", err)}
	}
	report.SetPageCount(len(found))
	for _, w := range warnings {
		report.AddWarning(w.Page, w.Message)
	}

	step = report.StartStep("Generate registry")
	src, err := build.Generate(pkg, found)
	report.EndStep(step, err)
	if err != nil {
		return GenOutput{Pages: found, Error: err}
	}

	current, err := s.fs.ReadFile(input.OutputFile)
	changed := err != nil || !bytes.Equal(current, src)

	if input.Check {
		if changed {
			report.AddError(input.OutputFile, ErrRegistryStale.Error(), "run `travelrec pages gen`")
			return GenOutput{Pages: found, Changed: true, Error: ErrRegistryStale}
		}
		return GenOutput{Pages: found, Success: true}
	}
	if !changed {
		return GenOutput{Pages: found, Success: true}
	}

	step = report.StartStep("Write " + input.OutputFile)
	err = s.write(input.OutputFile, src)
	report.EndStep(step, err)
	if err != nil {
		return GenOutput{Pages: found, Changed: true, Error: err}
	}
	return GenOutput{Pages: found, Changed: true, Success: true}
}

func (s *PagesService) write(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := s.fs.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

type ResolveInput struct {
	Resolver *pages.Resolver
	Registry pages.Registry
	// Names defaults to every registered page.
	Names []string
}

type ResolveOutput struct {
	Resolved []pages.ResolvedPage
	Unknown  []string
	Success  bool
	Error    error
}

// Resolve resolves each page and prints the layout it ends up with.
func (s *PagesService) Resolve(ctx context.Context, input ResolveInput) ResolveOutput {
	s.cli.PrintHeader("travelrec pages")

	names := input.Names
	if len(names) == 0 {
		names = input.Registry.Names()
	}

	var (
		out  ResolveOutput
		errs []error
	)
	for _, name := range names {
		resolved, err := input.Resolver.Resolve(ctx, name)
		if errors.Is(err, pages.ErrUnknownPage) {
			out.Unknown = append(out.Unknown, name)
			s.cli.PrintError("%v", err)
			errs = append(errs, err)
			continue
		}
		if err != nil {
			s.cli.PrintError("%s: %v", name, err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		out.Resolved = append(out.Resolved, resolved)
		s.cli.PrintSuccess("%s %s", name, s.cli.Gray(fmt.Sprintf("→ %s (%s)", resolved.Layout.Name, resolved.Source)))
	}

	out.Error = errors.Join(errs...)
	out.Success = out.Error == nil
	s.cli.PrintDone("\n%d resolved, %d failed", len(out.Resolved), len(errs))
	return out
}
