package http

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/popalexr/Travel-Recommendation/internal/core"
)

// AssetHandler serves the built front-end from fsys. Fingerprinted files
// under assets/ are cached for a year outside dev mode.
type AssetHandler struct {
	fsys  fs.FS
	isDev bool
}

func NewAssetHandler(fsys fs.FS, isDev bool) *AssetHandler {
	return &AssetHandler{fsys: fsys, isDev: isDev}
}

func (h *AssetHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if !h.serve(w, req) {
		http.NotFound(w, req)
	}
}

// Fallback serves the file at the request path when one exists and hands
// the request to next otherwise.
func (h *AssetHandler) Fallback(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			next.ServeHTTP(w, req)
			return
		}
		if !h.serve(w, req) {
			next.ServeHTTP(w, req)
		}
	})
}

func (h *AssetHandler) serve(w http.ResponseWriter, req *http.Request) bool {
	if h.fsys == nil {
		return false
	}
	name, ok := core.CleanAssetPath(req.URL.Path)
	if !ok {
		return false
	}

	file, err := h.fsys.Open(name)
	if err != nil {
		return false
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	w.Header().Set("Content-Type", core.GetContentType(name))
	switch {
	case h.isDev:
		w.Header().Set("Cache-Control", "no-cache")
	case strings.HasPrefix(name, "assets/"):
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}

	if rs, ok := file.(io.ReadSeeker); ok {
		http.ServeContent(w, req, info.Name(), info.ModTime(), rs)
		return true
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return false
	}
	http.ServeContent(w, req, info.Name(), info.ModTime(), bytes.NewReader(data))
	return true
}
