package core

import (
	"mime"
	"path"
	"strings"
)

// Build output types are pinned; system MIME tables disagree on them.
var buildOutputTypes = map[string]string{
	".js":    "text/javascript; charset=utf-8",
	".mjs":   "text/javascript; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".map":   "application/json",
	".json":  "application/json",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".ico":   "image/x-icon",
}

// GetContentType names the type of a served or uploaded file by extension.
func GetContentType(name string) string {
	ext := strings.ToLower(path.Ext(toSlash(name)))
	if ct, ok := buildOutputTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// IsUploadType reports whether a client-declared content type can be analysed.
func IsUploadType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/pdf"
}
