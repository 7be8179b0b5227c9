// Package usecase implements the travelrec developer commands on top of the
// file system and output ports.
package usecase

import (
	"github.com/popalexr/Travel-Recommendation/internal/adapters/cli"
	"github.com/popalexr/Travel-Recommendation/internal/adapters/fs"
)

type CLIOutput interface {
	cli.Target
	PrintHeader(msg string)
	PrintStep(msg string, args ...any)
	PrintSuccess(msg string, args ...any)
	PrintWarning(msg string, args ...any)
	PrintError(msg string, args ...any)
	PrintFile(path string)
	PrintDone(msg string, args ...any)
}

type FileSystem = fs.FileSystem
