package core

import (
	"path"
	"strings"
)

// CleanAssetPath turns a request path into a slash-separated path relative to
// the asset root. It refuses anything that would leave the root.
func CleanAssetPath(requestPath string) (string, bool) {
	p := strings.TrimPrefix(requestPath, "/")
	if p == "" || strings.Contains(p, "\\") {
		return "", false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", false
		}
	}
	p = path.Clean(p)
	if p == "." || strings.HasPrefix(p, "/") {
		return "", false
	}
	return p, true
}
