// Package build scans the Vue page sources and generates the Go page registry
// the resolver is built from.
package build

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/popalexr/Travel-Recommendation/internal/core"
)

// PagesDir is where page components live, relative to the front-end root.
const PagesDir = core.SourceRoot + "/Pages"

// PageInfo is what the generator needs to know about one page component.
type PageInfo struct {
	Name   string
	Source string
	// LayoutExport is the source of a `export const layout = X` binding.
	LayoutExport string
	// DeclaredLayout is the source of a `layout:` option on the component.
	DeclaredLayout string
}

// Warning reports a page whose layout could not be resolved.
type Warning struct {
	Page    string
	Message string
}

var (
	scriptBlock   = regexp.MustCompile(`(?s)<script\b[^>]*>(.*?)</script>`)
	defaultImport = regexp.MustCompile(`import\s+([A-Za-z_$][\w$]*)\s+from\s+['"]([^'"]+)['"]`)
	layoutExport  = regexp.MustCompile(`export\s+(?:const|let|var)\s+layout\s*=\s*([A-Za-z_$][\w$]*)`)
	optionsStart  = regexp.MustCompile(`export\s+default\s*(?:defineComponent\s*\(\s*)?\{|defineOptions\s*\(\s*\{`)
	layoutOption  = regexp.MustCompile(`\blayout\s*:\s*([A-Za-z_$][\w$]*)`)
)

// ScanPages finds every page under PagesDir in fsys, sorted by name.
func ScanPages(fsys fs.FS) ([]PageInfo, []Warning, error) {
	var (
		pages    []PageInfo
		warnings []Warning
	)

	err := fs.WalkDir(fsys, PagesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != core.PagesKeySuffix {
			return nil
		}

		name, ok := core.PageNameForPath(p)
		if !ok {
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}

		info, warns := scanPage(name, p, string(content))
		pages = append(pages, info)
		warnings = append(warnings, warns...)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan %s: %w", PagesDir, err)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Name < pages[j].Name })
	return pages, warnings, nil
}

func scanPage(name, source, content string) (PageInfo, []Warning) {
	info := PageInfo{Name: name, Source: source}

	var script strings.Builder
	for _, m := range scriptBlock.FindAllStringSubmatch(content, -1) {
		script.WriteString(m[1])
		script.WriteByte('\n')
	}
	code := script.String()

	imports := map[string]string{}
	for _, m := range defaultImport.FindAllStringSubmatch(code, -1) {
		imports[m[1]] = m[2]
	}

	var warnings []Warning
	resolve := func(ident, kind string) string {
		spec, ok := imports[ident]
		if !ok {
			warnings = append(warnings, Warning{Page: name, Message: fmt.Sprintf("%s %s is not a default import", kind, ident)})
			return ""
		}
		return resolveImport(source, spec)
	}

	if m := layoutExport.FindStringSubmatch(code); m != nil {
		info.LayoutExport = resolve(m[1], "layout export")
	}
	if loc := optionsStart.FindStringIndex(code); loc != nil {
		if m := layoutOption.FindStringSubmatch(optionsBody(code[loc[1]:])); m != nil {
			info.DeclaredLayout = resolve(m[1], "layout option")
		}
	}
	return info, warnings
}

// optionsBody returns the text up to the brace closing the options object.
func optionsBody(s string) string {
	depth := 1
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i]
			}
		}
	}
	return s
}

// resolveImport turns an import specifier into a source path relative to the
// front-end root. Bare package imports are returned unchanged.
func resolveImport(from, spec string) string {
	var p string
	switch {
	case strings.HasPrefix(spec, "@"):
		p = core.ResolveAlias(spec)
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"):
		p = path.Join(path.Dir(from), spec)
	default:
		return spec
	}
	if path.Ext(p) == "" {
		p += core.PagesKeySuffix
	}
	return p
}
