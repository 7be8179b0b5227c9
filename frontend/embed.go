// Package frontend embeds the Vite build output served in production.
package frontend

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var dist embed.FS

// Dist returns the build output rooted at dist/.
func Dist() (fs.FS, error) {
	return fs.Sub(dist, "dist")
}
