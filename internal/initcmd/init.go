// Package initcmd writes the starter configuration of a travelrec checkout
// and repairs the directories the build expects.
package initcmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/popalexr/Travel-Recommendation/internal/adapters/cli"
	"github.com/popalexr/Travel-Recommendation/internal/templates"
)

// Run writes the project templates into projectDir. Existing files are kept
// unless force is set.
func Run(projectDir string, force bool, out *cli.Output) error {
	out.PrintHeader("travelrec init")

	project, err := templates.Project()
	if err != nil {
		return err
	}
	data, err := templates.NewTemplateData(projectDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	created, skipped := 0, 0
	err = fs.WalkDir(project, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			targetDir := filepath.Join(projectDir, path)
			if err := os.MkdirAll(targetDir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", targetDir, err)
			}
			return nil
		}

		name, isTemplate := templates.ProcessFilename(path)
		targetPath := filepath.Join(projectDir, name)
		if _, err := os.Stat(targetPath); err == nil && !force {
			out.PrintWarning("%s exists, skipped (use --force to overwrite)", targetPath)
			skipped++
			return nil
		}

		content, err := fs.ReadFile(project, path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}
		processed, err := templates.ProcessContent(path, content, isTemplate, data)
		if err != nil {
			return err
		}
		if err := os.WriteFile(targetPath, processed, 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", targetPath, err)
		}

		if isTemplate {
			out.PrintFile(targetPath + " (generated)")
		} else {
			out.PrintFile(targetPath)
		}
		created++
		return nil
	})
	if err != nil {
		return err
	}

	if err := ensureDistDir(projectDir, out); err != nil {
		return err
	}

	out.PrintDone("\nCreated %d files, skipped %d", created, skipped)
	out.PrintStep("Next steps:")
	out.PrintStep("  cp .env.example .env")
	out.PrintStep("  travelrec migrate")
	out.PrintStep("  travelrec serve")
	return nil
}

// RepairDistDir recreates frontend/dist, which must exist for go:embed.
func RepairDistDir(projectDir string, out *cli.Output) error {
	out.PrintHeader("travelrec doctor")
	return ensureDistDir(projectDir, out)
}

const gitkeepContent = "# This file ensures frontend/dist exists for go:embed\n"

func ensureDistDir(projectDir string, out *cli.Output) error {
	distDir := filepath.Join(projectDir, "frontend", "dist")
	gitkeepPath := filepath.Join(distDir, ".gitkeep")

	if err := os.MkdirAll(distDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", distDir, err)
	}

	if _, err := os.Stat(gitkeepPath); os.IsNotExist(err) {
		if err := os.WriteFile(gitkeepPath, []byte(gitkeepContent), 0644); err != nil {
			return fmt.Errorf("failed to create .gitkeep: %w", err)
		}
		out.PrintSuccess("Created %s", gitkeepPath)
	}
	return nil
}
