package pages

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/popalexr/Travel-Recommendation/internal/core"
)

type staticManifest struct{ man *core.Manifest }

func (s staticManifest) Manifest() *core.Manifest { return s.man }

func TestManifestLoaderWithoutManifest(t *testing.T) {
	mod, err := ManifestLoader(nil, "src/Pages/Dashboard.vue")(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := Component{Name: "Dashboard", Source: "src/Pages/Dashboard.vue", Script: "/assets/Dashboard.js"}
	if diff := cmp.Diff(want, mod.Default); diff != "" {
		t.Errorf("component mismatch (-want +got):\n%s", diff)
	}
	if mod.Layout != nil {
		t.Errorf("Expected no layout export, got %+v", mod.Layout)
	}
}

func TestManifestLoaderUsesManifest(t *testing.T) {
	man := &core.Manifest{Chunks: map[string]core.ManifestChunk{
		"src/Pages/Auth.vue": {
			File:    "assets/Auth-abc.js",
			Src:     "src/Pages/Auth.vue",
			Imports: []string{"_shared.js"},
			CSS:     []string{"assets/Auth-abc.css"},
		},
		"_shared.js": {File: "assets/shared-123.js"},
		"src/Layouts/GuestLayout.vue": {
			File: "assets/GuestLayout-9f.js",
			Src:  "src/Layouts/GuestLayout.vue",
		},
	}}

	load := ManifestLoader(staticManifest{man}, "src/Pages/Auth.vue", WithLayoutExport("src/Layouts/GuestLayout.vue"))
	mod, err := load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := Component{
		Name:    "Auth",
		Source:  "src/Pages/Auth.vue",
		Script:  "/assets/Auth-abc.js",
		CSS:     []string{"/assets/Auth-abc.css"},
		Imports: []string{"/assets/shared-123.js"},
	}
	if diff := cmp.Diff(want, mod.Default); diff != "" {
		t.Errorf("component mismatch (-want +got):\n%s", diff)
	}
	if mod.Layout == nil || mod.Layout.Name != "GuestLayout" || mod.Layout.Script != "/assets/GuestLayout-9f.js" {
		t.Errorf("Unexpected layout export: %+v", mod.Layout)
	}
}

func TestManifestLoaderDeclaredLayout(t *testing.T) {
	mod, err := ManifestLoader(nil, "src/Pages/Welcome.vue", WithDeclaredLayout("src/Layouts/GuestLayout.vue"))(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if mod.Layout != nil {
		t.Error("Declared layout must not show up as an export")
	}
	if mod.Default.Layout == nil || mod.Default.Layout.Name != "GuestLayout" {
		t.Errorf("Expected declared GuestLayout, got %+v", mod.Default.Layout)
	}
}

func TestManifestLoaderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ManifestLoader(nil, "src/Pages/Welcome.vue")(ctx); err == nil {
		t.Error("Expected error for canceled context")
	}
}

func TestGeneratedRegistryResolves(t *testing.T) {
	r := NewResolver(Generated(nil), FallbackLayout(nil))

	tests := []struct {
		page       string
		wantLayout string
		wantSource LayoutSource
	}{
		{"Welcome", "GuestLayout", LayoutFromComponent},
		{"Auth", "GuestLayout", LayoutFromExport},
		{"Dashboard", "AppLayout", LayoutFromFallback},
		{"Settings", "AppLayout", LayoutFromFallback},
	}

	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.page)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got.Layout.Name != tt.wantLayout || got.Source != tt.wantSource {
				t.Errorf("Expected %s from %s, got %s from %s", tt.wantLayout, tt.wantSource, got.Layout.Name, got.Source)
			}
		})
	}
}

type swappableManifest struct {
	man *core.Manifest
}

func (s *swappableManifest) Manifest() *core.Manifest { return s.man }

func layoutManifest(css string) *core.Manifest {
	return &core.Manifest{Chunks: map[string]core.ManifestChunk{
		"src/Pages/Dashboard.vue": {File: "assets/Dashboard.js", Src: "src/Pages/Dashboard.vue"},
		FallbackLayoutSource: {
			File: "assets/AppLayout.js",
			Src:  FallbackLayoutSource,
			CSS:  []string{css},
		},
	}}
}

func TestResolveRefreshesRememberedLayoutAfterRebuild(t *testing.T) {
	src := &swappableManifest{man: layoutManifest("assets/v1.css")}
	fallback := &countingLoader{}
	fallbackLoad := FallbackLayout(src)
	countedFallback := func(ctx context.Context) (Module, error) {
		fallback.calls.Add(1)
		return fallbackLoad(ctx)
	}

	r := NewResolver(Registry{Key("Dashboard"): ManifestLoader(src, "src/Pages/Dashboard.vue")},
		countedFallback, WithManifest(src))

	first, err := r.Resolve(context.Background(), "Dashboard")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if first.Source != LayoutFromFallback {
		t.Errorf("Expected fallback layout, got %v", first.Source)
	}
	if diff := cmp.Diff([]string{"/assets/v1.css"}, first.Layout.CSS); diff != "" {
		t.Errorf("first layout css mismatch (-want +got):\n%s", diff)
	}

	src.man = layoutManifest("assets/v2.css")

	second, err := r.Resolve(context.Background(), "Dashboard")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.Source != LayoutFromComponent {
		t.Errorf("Expected remembered layout, got %v", second.Source)
	}
	if second.Layout.Name != "AppLayout" {
		t.Errorf("Expected AppLayout, got %q", second.Layout.Name)
	}
	if diff := cmp.Diff([]string{"/assets/v2.css"}, second.Layout.CSS); diff != "" {
		t.Errorf("layout css after rebuild mismatch (-want +got):\n%s", diff)
	}
	if second.Page.Layout == nil || second.Page.Layout.CSS[0] != "/assets/v2.css" {
		t.Errorf("Expected page layout to carry the rebuilt css, got %+v", second.Page.Layout)
	}
	if got := fallback.calls.Load(); got != 1 {
		t.Errorf("Expected fallback loaded once, got %d", got)
	}
}
