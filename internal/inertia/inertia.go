// Package inertia speaks the Inertia.js protocol: full HTML visits get the
// root view with the page object embedded, XHR visits get the page object as
// JSON.
package inertia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/popalexr/Travel-Recommendation/internal/core"
	"github.com/popalexr/Travel-Recommendation/internal/devreload"
	"github.com/popalexr/Travel-Recommendation/internal/pages"
)

const (
	HeaderInertia          = "X-Inertia"
	HeaderVersion          = "X-Inertia-Version"
	HeaderLocation         = "X-Inertia-Location"
	HeaderPartialComponent = "X-Inertia-Partial-Component"
	HeaderPartialData      = "X-Inertia-Partial-Data"
	HeaderPartialExcept    = "X-Inertia-Partial-Except"
)

// Page is the object handed to the client app.
type Page struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props"`
	URL       string         `json:"url"`
	Version   string         `json:"version"`
}

// AssetSource provides the current asset version and entry chunk.
type AssetSource interface {
	Version() string
	Entry() core.Assets
}

type Renderer struct {
	resolver *pages.Resolver
	assets   AssetSource
	title    string
	dev      bool
	shared   []SharedFunc
	logger   *zap.Logger
}

type Option func(*Renderer)

func WithTitle(title string) Option {
	return func(r *Renderer) { r.title = title }
}

// WithDev shows error details and injects the reload client.
func WithDev(dev bool) Option {
	return func(r *Renderer) { r.dev = dev }
}

func WithShared(fn SharedFunc) Option {
	return func(r *Renderer) { r.shared = append(r.shared, fn) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(resolver *pages.Resolver, assets AssetSource, opts ...Option) *Renderer {
	r := &Renderer{
		resolver: resolver,
		assets:   assets,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func IsInertia(req *http.Request) bool {
	return req.Header.Get(HeaderInertia) == "true"
}

// Render answers req with the named page. Failures are rendered as an error
// page and returned for logging.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, component string, props Props) error {
	version := r.assets.Version()
	w.Header().Add("Vary", HeaderInertia)

	action := core.DecidePageAction(core.PageRequest{
		IsInertia:     IsInertia(req),
		Method:        req.Method,
		ClientVersion: req.Header.Get(HeaderVersion),
		ServerVersion: version,
	})
	if action == core.ActionVersionConflict {
		w.Header().Set(HeaderLocation, req.URL.RequestURI())
		w.WriteHeader(http.StatusConflict)
		return nil
	}

	resolved, err := r.resolver.Resolve(req.Context(), component)
	if err != nil {
		r.Error(w, http.StatusInternalServerError, err)
		return err
	}

	values, err := r.evaluate(req, component, props)
	if err != nil {
		r.Error(w, http.StatusInternalServerError, err)
		return err
	}

	page := Page{
		Component: resolved.Name,
		Props:     values,
		URL:       req.URL.RequestURI(),
		Version:   version,
	}

	if action == core.ActionRenderJSON {
		w.Header().Set(HeaderInertia, "true")
		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(page)
	}

	html, err := r.rootView(page, resolved)
	if err != nil {
		r.Error(w, http.StatusInternalServerError, err)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = w.Write([]byte(html))
	return err
}

// evaluate merges shared props, applies partial reload filters and resolves
// deferred values.
func (r *Renderer) evaluate(req *http.Request, component string, props Props) (map[string]any, error) {
	ctx := req.Context()
	var shared Props
	for _, fn := range r.shared {
		shared = merge(shared, fn(ctx))
	}
	all := merge(shared, props)

	partial := core.DecidePartial(core.PartialRequest{
		Component:        component,
		PartialComponent: req.Header.Get(HeaderPartialComponent),
		PartialData:      req.Header.Get(HeaderPartialData),
		PartialExcept:    req.Header.Get(HeaderPartialExcept),
	})

	out := make(map[string]any, len(all))
	for key, value := range all {
		if !partial.Includes(key) {
			continue
		}
		v, err := resolveProp(ctx, value, partial.Partial && partial.Only[key])
		if errors.Is(err, errSkip) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("prop %q: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}

var errSkip = errors.New("skip lazy prop")

func resolveProp(ctx context.Context, value any, requested bool) (any, error) {
	switch fn := value.(type) {
	case LazyProp:
		if !requested {
			return nil, errSkip
		}
		return fn(ctx)
	case PropFunc:
		return fn(ctx)
	case func(context.Context) (any, error):
		return fn(ctx)
	}
	return value, nil
}

func (r *Renderer) rootView(page Page, resolved pages.ResolvedPage) (string, error) {
	entry := r.assets.Entry()

	css := slices.Clone(entry.CSS)
	preloads := slices.Clone(entry.Preloads)
	for _, c := range []pages.Component{resolved.Page, resolved.Layout} {
		css = appendUnique(css, c.CSS...)
		preloads = appendUnique(preloads, c.Script)
		preloads = appendUnique(preloads, c.Imports...)
	}

	html, err := core.RenderRootView(core.RootView{
		Title:    r.title,
		Page:     page,
		Script:   entry.Script,
		CSS:      css,
		Preloads: preloads,
	})
	if err != nil {
		return "", err
	}
	if r.dev {
		html = devreload.InjectScript(html)
	}
	return html, nil
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		if item != "" && !slices.Contains(list, item) {
			list = append(list, item)
		}
	}
	return list
}

// Error writes the HTML error page. The error text is only shown in dev mode.
func (r *Renderer) Error(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		r.logger.Error("render failed", zap.Int("status", status), zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	var detail string
	if err != nil {
		detail = err.Error()
	}
	_ = core.NewErrorPage(r.title, status, detail, r.dev).Render(w)
}

// Location sends the client to url with a full page visit.
func Location(w http.ResponseWriter, req *http.Request, url string) {
	if IsInertia(req) {
		w.Header().Set(HeaderLocation, url)
		w.WriteHeader(http.StatusConflict)
		return
	}
	http.Redirect(w, req, url, http.StatusFound)
}

// Redirect answers with a 302, or 303 after PUT, PATCH and DELETE so the
// client follows up with GET.
func Redirect(w http.ResponseWriter, req *http.Request, url string) {
	http.Redirect(w, req, url, core.RedirectStatus(req.Method, http.StatusFound))
}
