package build

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"
	"text/template"

	"github.com/popalexr/Travel-Recommendation/internal/core"
)

// GeneratedBy names the command in the generated file header.
const GeneratedBy = "travelrec pages gen"

var registryTemplate = template.Must(template.New("registry").Funcs(template.FuncMap{
	"key":   func(name string) string { return strconv.Quote(core.PageKey(name)) },
	"quote": strconv.Quote,
}).Parse(`// Code generated by "{{.GeneratedBy}}"; DO NOT EDIT.

package {{.Package}}

// Generated returns the registry built from frontend/src/Pages.
func Generated(src ManifestSource) Registry {
	return Registry{
{{- range .Pages}}
		{{key .Name}}: ManifestLoader(src, {{quote .Source}}
		{{- if .LayoutExport}}, WithLayoutExport({{quote .LayoutExport}}){{end}}
		{{- if .DeclaredLayout}}, WithDeclaredLayout({{quote .DeclaredLayout}}){{end}}),
{{- end}}
	}
}
`))

// Generate renders the registry source for pages as gofmt'ed Go.
func Generate(pkg string, pages []PageInfo) ([]byte, error) {
	var buf bytes.Buffer
	err := registryTemplate.Execute(&buf, struct {
		GeneratedBy string
		Package     string
		Pages       []PageInfo
	}{GeneratedBy, pkg, pages})
	if err != nil {
		return nil, fmt.Errorf("render registry: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format registry: %w", err)
	}
	return src, nil
}
