package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/popalexr/Travel-Recommendation/internal/core"
)

// ManifestPath is where Vite writes its manifest inside the build output.
const ManifestPath = ".vite/manifest.json"

// Store holds the current Vite manifest and the asset version derived from it.
// A missing manifest is not an error: lookups then use the fixed output names.
type Store struct {
	fsys     fs.FS
	path     string
	override string

	mu      sync.RWMutex
	man     *core.Manifest
	version string
}

type Option func(*Store)

// WithVersion pins the asset version instead of hashing the manifest.
func WithVersion(version string) Option {
	return func(s *Store) {
		s.override = version
	}
}

func WithManifestPath(path string) Option {
	return func(s *Store) {
		s.path = path
	}
}

func NewStore(fsys fs.FS, opts ...Option) *Store {
	s := &Store{fsys: fsys, path: ManifestPath}
	for _, opt := range opts {
		opt(s)
	}
	s.version = s.override
	return s
}

// Reload reads the manifest again. On a parse error the previous manifest is kept.
func (s *Store) Reload() error {
	if s.fsys == nil {
		return nil
	}

	data, err := fs.ReadFile(s.fsys, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.mu.Lock()
		s.man = nil
		s.version = s.override
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read manifest %s: %w", s.path, err)
	}

	man, err := core.ParseManifest(data)
	if err != nil {
		return fmt.Errorf("parse manifest %s: %w", s.path, err)
	}

	version := s.override
	if version == "" {
		version = core.HashContent(data)
	}

	s.mu.Lock()
	s.man = man
	s.version = version
	s.mu.Unlock()
	return nil
}

func (s *Store) Manifest() *core.Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.man
}

// Version is the asset version sent to Inertia clients.
func (s *Store) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Entry returns the assets of the client entry point.
func (s *Store) Entry() core.Assets {
	return core.EntryAssets(s.Manifest())
}

// Loaded reports whether a manifest is present.
func (s *Store) Loaded() bool {
	return s.Manifest() != nil
}
