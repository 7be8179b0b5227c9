package core

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
)

// ErrorPage is rendered for requests that cannot produce an Inertia page.
type ErrorPage struct {
	Status  int
	App     string
	Summary string
	// Detail is the underlying error; the template shows it only in dev mode.
	Detail string
	Dev    bool
}

// NewErrorPage fills the heading text for status.
func NewErrorPage(app string, status int, detail string, dev bool) ErrorPage {
	if app == "" {
		app = "Travel Recommendation"
	}
	summary := "Something went wrong while planning your trip. Please try again in a moment."
	switch {
	case status == http.StatusNotFound:
		summary = "This page does not exist. It may have been moved, or the link is wrong."
	case status < http.StatusInternalServerError:
		summary = "The request could not be completed."
	}
	return ErrorPage{Status: status, App: app, Summary: summary, Detail: detail, Dev: dev}
}

func (p ErrorPage) Heading() string {
	return fmt.Sprintf("%d %s", p.Status, http.StatusText(p.Status))
}

var errorPageTemplate = template.Must(template.New("error-page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Heading}} · {{.App}}</title>
<style>
main { font: 16px/1.5 system-ui, sans-serif; max-width: 40rem; margin: 4rem auto; padding: 0 1rem; color: #1f2937; }
.status { color: #0f766e; font-size: .875rem; letter-spacing: .05em; text-transform: uppercase; }
code { display: block; white-space: pre-wrap; background: #f1f5f9; padding: 1rem; border-radius: .5rem; }
</style>
</head>
<body>
<main>
<p class="status">{{.App}}</p>
<h1>{{.Heading}}</h1>
<p>{{.Summary}}</p>
{{- if and .Dev .Detail}}
<code>{{.Detail}}</code>
{{- end}}
<p><a href="/">Back to the start page</a></p>
</main>
</body>
</html>
`))

// Render writes the page as HTML; Detail is escaped.
func (p ErrorPage) Render(w io.Writer) error {
	return errorPageTemplate.Execute(w, p)
}
