package core

import (
	"encoding/json"
	"strings"
)

// ManifestChunk is one record of Vite's build manifest (.vite/manifest.json).
type ManifestChunk struct {
	File           string   `json:"file"`
	Name           string   `json:"name,omitempty"`
	Src            string   `json:"src,omitempty"`
	IsEntry        bool     `json:"isEntry,omitempty"`
	IsDynamicEntry bool     `json:"isDynamicEntry,omitempty"`
	Imports        []string `json:"imports,omitempty"`
	DynamicImports []string `json:"dynamicImports,omitempty"`
	CSS            []string `json:"css,omitempty"`
	Assets         []string `json:"assets,omitempty"`
}

type Manifest struct {
	Chunks map[string]ManifestChunk
}

func ParseManifest(data []byte) (*Manifest, error) {
	chunks := map[string]ManifestChunk{}
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, err
	}
	return &Manifest{Chunks: chunks}, nil
}

// Assets are the public URLs a chunk needs on the page.
type Assets struct {
	Script   string
	CSS      []string
	Preloads []string
}

// GetAssets looks up the chunk built from src. Missing manifests or entries fall
// back to the fixed output naming rules.
func GetAssets(man *Manifest, src string) Assets {
	if man != nil {
		if chunk, ok := man.Chunks[src]; ok && chunk.File != "" {
			return collectAssets(man, chunk)
		}
	}

	switch {
	case src == "" || strings.HasSuffix(src, "main.js"):
		return Assets{Script: "/" + EntryFileName, CSS: []string{"/" + AssetsDir + "/main.css"}}
	case strings.HasSuffix(src, ".css"):
		return Assets{CSS: []string{"/" + AssetFileName(SourceRoot, []string{src}, src)}}
	}
	return Assets{Script: "/" + ChunkFileName(src)}
}

// EntryAssets returns the assets of the single entry chunk.
func EntryAssets(man *Manifest) Assets {
	if man != nil {
		for _, chunk := range man.Chunks {
			if chunk.IsEntry {
				return collectAssets(man, chunk)
			}
		}
	}
	return GetAssets(nil, "")
}

func collectAssets(man *Manifest, chunk ManifestChunk) Assets {
	out := Assets{Script: "/" + chunk.File}
	seen := map[string]bool{chunk.File: true}
	seenCSS := map[string]bool{}

	var walk func(c ManifestChunk)
	walk = func(c ManifestChunk) {
		for _, css := range c.CSS {
			if !seenCSS[css] {
				seenCSS[css] = true
				out.CSS = append(out.CSS, "/"+css)
			}
		}
		for _, key := range c.Imports {
			imported, ok := man.Chunks[key]
			if !ok || seen[imported.File] {
				continue
			}
			seen[imported.File] = true
			out.Preloads = append(out.Preloads, "/"+imported.File)
			walk(imported)
		}
	}
	walk(chunk)

	return out
}
