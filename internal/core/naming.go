package core

import (
	"path"
	"strings"
)

const (
	AssetsDir      = "assets"
	EntryFileName  = AssetsDir + "/main.js"
	SourceRoot     = "src"
	PagesKeyPrefix = "./Pages/"
	PagesKeySuffix = ".vue"
	aliasPrefix    = "@/"
)

// PageKey maps a page identifier to its registry key.
func PageKey(name string) string {
	return PagesKeyPrefix + name + PagesKeySuffix
}

// PageNameForPath is the inverse of PageKey for a source path relative to the
// source root, e.g. "Pages/Dashboard/Index.vue" -> "Dashboard/Index".
func PageNameForPath(rel string) (string, bool) {
	rel = strings.TrimPrefix(toSlash(rel), "./")
	rel = strings.TrimPrefix(rel, SourceRoot+"/")
	name, ok := strings.CutPrefix(rel, strings.TrimPrefix(PagesKeyPrefix, "./"))
	if !ok {
		return "", false
	}
	name, ok = strings.CutSuffix(name, PagesKeySuffix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

func ChunkName(source string) string {
	base := path.Base(toSlash(source))
	return strings.TrimSuffix(base, path.Ext(base))
}

func ChunkFileName(source string) string {
	return AssetsDir + "/" + ChunkName(source) + ".js"
}

// AssetFileName places a non-script asset in the output directory. The first
// original file name wins; it keeps its path below the source root without a
// leading "assets/". Anything outside the root falls back to name+ext.
func AssetFileName(srcDir string, originals []string, name string) string {
	if len(originals) > 0 && originals[0] != "" {
		if rel, ok := relativeTo(srcDir, originals[0]); ok {
			rel = strings.TrimPrefix(rel, AssetsDir+"/")
			return AssetsDir + "/" + rel
		}
	}

	return AssetsDir + "/" + path.Base(toSlash(name))
}

// ResolveAlias expands the "@" import alias to the source root.
func ResolveAlias(importPath string) string {
	if rest, ok := strings.CutPrefix(importPath, aliasPrefix); ok {
		return SourceRoot + "/" + rest
	}
	if importPath == "@" {
		return SourceRoot
	}
	return importPath
}

func relativeTo(root, file string) (string, bool) {
	root = path.Clean(toSlash(root))
	file = path.Clean(toSlash(file))

	if root == "." {
		if strings.HasPrefix(file, "/") || file == ".." || strings.HasPrefix(file, "../") {
			return "", false
		}
		return file, file != "."
	}

	rel, ok := strings.CutPrefix(file, root+"/")
	if !ok || rel == "" {
		return "", false
	}
	return rel, true
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
