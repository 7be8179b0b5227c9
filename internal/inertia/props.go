package inertia

import (
	"context"
	"maps"
)

// Props are the page props. Values may be PropFunc or LazyProp to defer
// their evaluation to render time.
type Props map[string]any

// PropFunc is evaluated on every render that includes its key.
type PropFunc func(ctx context.Context) (any, error)

// LazyProp is only evaluated when a partial reload asks for it by name.
type LazyProp func(ctx context.Context) (any, error)

// Lazy marks fn as a lazy prop.
func Lazy(fn func(ctx context.Context) (any, error)) LazyProp {
	return LazyProp(fn)
}

// SharedFunc supplies props shared by every page of a request, such as the
// signed-in user.
type SharedFunc func(ctx context.Context) Props

func merge(shared, page Props) Props {
	out := make(Props, len(shared)+len(page))
	maps.Copy(out, shared)
	maps.Copy(out, page)
	return out
}
