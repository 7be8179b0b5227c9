package pages

import (
	"context"
	"fmt"
	"sync"
)

type LayoutSource int

const (
	// LayoutFromExport: the module's named layout export.
	LayoutFromExport LayoutSource = iota
	// LayoutFromComponent: the component already carried a layout, declared by
	// itself or assigned by an earlier resolution.
	LayoutFromComponent
	// LayoutFromFallback: the shared application layout.
	LayoutFromFallback
)

func (s LayoutSource) String() string {
	switch s {
	case LayoutFromExport:
		return "export"
	case LayoutFromComponent:
		return "component"
	case LayoutFromFallback:
		return "fallback"
	}
	return "unknown"
}

// ResolvedPage is the outcome of one resolution. Module is the record exactly
// as the loader returned it; Page is the default export with Layout filled in.
type ResolvedPage struct {
	Name   string
	Key    string
	Module Module
	Page   Component
	Layout Component
	Source LayoutSource
}

type Resolver struct {
	registry Registry
	fallback Loader
	manifest ManifestSource

	mu       sync.Mutex
	assigned map[string]Component
}

type ResolverOption func(*Resolver)

// WithManifest rebuilds remembered layouts from the current manifest, so a
// rebuilt front end is served without loading the fallback again.
func WithManifest(src ManifestSource) ResolverOption {
	return func(r *Resolver) { r.manifest = src }
}

func NewResolver(registry Registry, fallback Loader, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry: registry,
		fallback: fallback,
		assigned: make(map[string]Component),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve loads the page named name and works out its layout. Concurrent calls
// for the same name are not merged; each one runs its own load.
func (r *Resolver) Resolve(ctx context.Context, name string) (ResolvedPage, error) {
	key := Key(name)
	load, ok := r.registry[key]
	if !ok || load == nil {
		return ResolvedPage{}, &UnknownPageError{Name: name}
	}

	mod, err := load(ctx)
	if err != nil {
		return ResolvedPage{}, fmt.Errorf("load page %q: %w", name, err)
	}

	page := mod.Default
	if page.Layout == nil {
		if prev, ok := r.assignedLayout(key); ok {
			page.Layout = &prev
		}
	}

	var (
		layout Component
		source LayoutSource
	)
	switch {
	case mod.Layout != nil:
		layout, source = *mod.Layout, LayoutFromExport
	case page.Layout != nil:
		layout, source = *page.Layout, LayoutFromComponent
	default:
		if r.fallback == nil {
			return ResolvedPage{}, fmt.Errorf("page %q has no layout and no fallback layout is configured", name)
		}
		fallback, err := r.fallback(ctx)
		if err != nil {
			return ResolvedPage{}, fmt.Errorf("load fallback layout for %q: %w", name, err)
		}
		layout, source = fallback.Default, LayoutFromFallback
	}

	r.remember(key, layout)
	page.Layout = &layout

	return ResolvedPage{
		Name:   name,
		Key:    key,
		Module: mod,
		Page:   page,
		Layout: layout,
		Source: source,
	}, nil
}

func (r *Resolver) Has(name string) bool {
	_, ok := r.registry[Key(name)]
	return ok
}

func (r *Resolver) assignedLayout(key string) (Component, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.assigned[key]
	if !ok || r.manifest == nil || c.Source == "" {
		return c, ok
	}
	fresh := component(r.manifest.Manifest(), c.Source)
	fresh.Name = c.Name
	return fresh, true
}

func (r *Resolver) remember(key string, layout Component) {
	r.mu.Lock()
	r.assigned[key] = layout
	r.mu.Unlock()
}
