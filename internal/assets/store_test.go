package assets

import (
	"testing"
	"testing/fstest"
)

const manifestJSON = `{
  "src/main.js": {"file": "assets/main.js", "src": "src/main.js", "isEntry": true, "css": ["assets/main.css"], "imports": ["_vendor.js"]},
  "_vendor.js": {"file": "assets/vendor.js"},
  "src/Pages/Dashboard.vue": {"file": "assets/Dashboard.js", "src": "src/Pages/Dashboard.vue", "isDynamicEntry": true}
}`

func TestStoreReload(t *testing.T) {
	fsys := fstest.MapFS{
		ManifestPath: &fstest.MapFile{Data: []byte(manifestJSON)},
	}
	s := NewStore(fsys)

	if s.Loaded() {
		t.Fatal("Expected store to be empty before Reload")
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if !s.Loaded() {
		t.Fatal("Expected manifest to be loaded")
	}
	if s.Version() == "" {
		t.Error("Expected a version hash")
	}

	entry := s.Entry()
	if entry.Script != "/assets/main.js" {
		t.Errorf("Expected entry script /assets/main.js, got %s", entry.Script)
	}
	if len(entry.CSS) != 1 || entry.CSS[0] != "/assets/main.css" {
		t.Errorf("Unexpected entry CSS: %v", entry.CSS)
	}
	if len(entry.Preloads) != 1 || entry.Preloads[0] != "/assets/vendor.js" {
		t.Errorf("Unexpected preloads: %v", entry.Preloads)
	}
}

func TestStoreVersionFollowsManifest(t *testing.T) {
	fsys := fstest.MapFS{
		ManifestPath: &fstest.MapFile{Data: []byte(manifestJSON)},
	}
	s := NewStore(fsys)
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	before := s.Version()

	fsys[ManifestPath] = &fstest.MapFile{Data: []byte(`{"src/main.js": {"file": "assets/main.js", "isEntry": true}}`)}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if s.Version() == before {
		t.Errorf("Expected version to change after rebuild, still %s", before)
	}
}

func TestStoreMissingManifest(t *testing.T) {
	s := NewStore(fstest.MapFS{}, WithVersion("v1"))
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if s.Loaded() {
		t.Error("Expected no manifest")
	}
	if s.Version() != "v1" {
		t.Errorf("Expected pinned version v1, got %s", s.Version())
	}
	if got := s.Entry().Script; got != "/assets/main.js" {
		t.Errorf("Expected fallback entry /assets/main.js, got %s", got)
	}
}

func TestStoreKeepsManifestOnParseError(t *testing.T) {
	fsys := fstest.MapFS{
		ManifestPath: &fstest.MapFile{Data: []byte(manifestJSON)},
	}
	s := NewStore(fsys)
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	fsys[ManifestPath] = &fstest.MapFile{Data: []byte(`{broken`)}
	if err := s.Reload(); err == nil {
		t.Fatal("Expected parse error")
	}
	if !s.Loaded() {
		t.Error("Expected previous manifest to survive a bad rebuild")
	}
}

func TestStorePinnedVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"dist/manifest.json": &fstest.MapFile{Data: []byte(manifestJSON)},
	}
	s := NewStore(fsys, WithManifestPath("dist/manifest.json"), WithVersion("release-7"))
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if !s.Loaded() {
		t.Fatal("Expected manifest at custom path")
	}
	if s.Version() != "release-7" {
		t.Errorf("Expected release-7, got %s", s.Version())
	}
}
