// Package pages resolves Inertia page identifiers against the module registry
// generated from the front-end Pages directory.
package pages

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/popalexr/Travel-Recommendation/internal/core"
)

var ErrUnknownPage = errors.New("unknown inertia page")

// UnknownPageError carries the identifier that had no registry entry.
type UnknownPageError struct {
	Name string
}

func (e *UnknownPageError) Error() string {
	return fmt.Sprintf("Unknown Inertia page: %s", e.Name)
}

func (e *UnknownPageError) Is(target error) bool {
	return target == ErrUnknownPage
}

// Component is a built view: its source file and the assets the browser needs
// to mount it.
type Component struct {
	Name    string
	Source  string
	Script  string
	CSS     []string
	Imports []string
	Layout  *Component
}

// Module is what a loader hands back: the default export and an optional
// named layout export.
type Module struct {
	Default Component
	Layout  *Component
}

type Loader func(ctx context.Context) (Module, error)

// Registry maps "./Pages/<name>.vue" keys to loaders. It is produced by the
// page generator and never modified at run time.
type Registry map[string]Loader

func Key(name string) string {
	return core.PageKey(name)
}

// Names lists the page identifiers in the registry, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for key := range r {
		if name, ok := core.PageNameForPath(key); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
