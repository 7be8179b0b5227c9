// Package templates holds the files written by `travelrec init`.
package templates

import (
	"bytes"
	"crypto/rand"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed all:project
var projectFS embed.FS

func Project() (fs.FS, error) {
	return fs.Sub(projectFS, "project")
}

type TemplateData struct {
	Name      string
	Title     string
	JWTSecret string
}

// NewTemplateData derives the names from the project directory and draws a
// fresh JWT secret.
func NewTemplateData(projectDir string) (TemplateData, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return TemplateData{}, fmt.Errorf("generate jwt secret: %w", err)
	}
	name := DeriveName(projectDir)
	return TemplateData{
		Name:      name,
		Title:     DeriveTitle(name),
		JWTSecret: hex.EncodeToString(secret),
	}, nil
}

func ProcessFilename(filename string) (string, bool) {
	if before, ok := strings.CutSuffix(filename, ".tmpl"); ok {
		return before, true
	}
	return filename, false
}

func ProcessContent(name string, content []byte, isTemplate bool, data TemplateData) ([]byte, error) {
	if !isTemplate {
		return content, nil
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func DeriveName(projectDir string) string {
	base := filepath.Base(projectDir)
	if base == "." || base == "/" || base == "" {
		return "travelrec"
	}
	return base
}

// DeriveTitle turns "my-trips" into "My Trips".
func DeriveTitle(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "Travel Recommendation"
	}
	return strings.Join(words, " ")
}
