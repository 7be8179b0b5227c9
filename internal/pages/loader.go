package pages

import (
	"context"

	"github.com/popalexr/Travel-Recommendation/internal/core"
)

// FallbackLayoutSource is the shared layout used when a page brings none.
const FallbackLayoutSource = "src/Layouts/AppLayout.vue"

// ManifestSource hands out the current Vite manifest. A nil manifest means the
// output naming rules are used instead.
type ManifestSource interface {
	Manifest() *core.Manifest
}

type loaderOptions struct {
	exportLayout   string
	declaredLayout string
}

type LoaderOption func(*loaderOptions)

// WithLayoutExport records an `export const layout = X` next to the default export.
func WithLayoutExport(source string) LoaderOption {
	return func(o *loaderOptions) {
		o.exportLayout = source
	}
}

// WithDeclaredLayout records a `layout` option declared on the component itself.
func WithDeclaredLayout(source string) LoaderOption {
	return func(o *loaderOptions) {
		o.declaredLayout = source
	}
}

// ManifestLoader builds a loader for the page compiled from source. The
// manifest is read on every call so a rebuilt front end is picked up.
func ManifestLoader(src ManifestSource, source string, opts ...LoaderOption) Loader {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(ctx context.Context) (Module, error) {
		if err := ctx.Err(); err != nil {
			return Module{}, err
		}

		var man *core.Manifest
		if src != nil {
			man = src.Manifest()
		}

		mod := Module{Default: component(man, source)}
		if o.declaredLayout != "" {
			declared := component(man, o.declaredLayout)
			mod.Default.Layout = &declared
		}
		if o.exportLayout != "" {
			exported := component(man, o.exportLayout)
			mod.Layout = &exported
		}
		return mod, nil
	}
}

// FallbackLayout loads the shared application layout.
func FallbackLayout(src ManifestSource) Loader {
	return ManifestLoader(src, FallbackLayoutSource)
}

func component(man *core.Manifest, source string) Component {
	assets := core.GetAssets(man, source)
	name := core.ChunkName(source)
	if page, ok := core.PageNameForPath(source); ok {
		name = page
	}
	return Component{
		Name:    name,
		Source:  source,
		Script:  assets.Script,
		CSS:     assets.CSS,
		Imports: assets.Preloads,
	}
}
